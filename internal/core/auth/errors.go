package auth

import "errors"

var (
	ErrInvalidName    = errors.New("auth: invalid name")
	ErrInvalidEmail   = errors.New("auth: invalid email")
	ErrInvalidRole    = errors.New("auth: invalid role")
	ErrDuplicateEmail = errors.New("auth: email already exists")
	ErrEmailNotFound  = errors.New("auth: email not found")
)
