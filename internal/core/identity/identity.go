package identity

import "time"

// Role は利用者の役割を表す閉じた列挙です。
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

// Identity は検証済みトークンから復元された認証済み呼び出し元を表します。
// 永続化されず、リクエスト処理の間だけ明示的に引き回されます。
type Identity struct {
	Subject   string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ParseRole は文字列を Role へ変換します。未知の値は ErrInvalidRole になります。
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleEmployee, RoleAdmin:
		return Role(raw), nil
	default:
		return "", ErrInvalidRole
	}
}

// IsValidRole は raw が閉じた役割集合に含まれるかを返します。
func IsValidRole(raw string) bool {
	_, err := ParseRole(raw)
	return err == nil
}

// RoleSet は操作ごとに宣言される許可役割の集合です。
// 空集合は「認証済みであれば誰でも可」を意味します。
type RoleSet map[Role]struct{}

// NewRoleSet は指定された役割から RoleSet を構築します。
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Permits は role が集合に含まれるかを返します。空集合は常に true です。
func (s RoleSet) Permits(role Role) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[role]
	return ok
}
