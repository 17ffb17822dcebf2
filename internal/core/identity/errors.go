package identity

import "errors"

var (
	ErrInvalidRole = errors.New("identity: invalid role")
)
