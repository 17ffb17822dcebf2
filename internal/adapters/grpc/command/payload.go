package command

import (
	"time"

	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/absence"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/auth"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/identity"
)

// DateLayout はワイヤ上の暦日表現です。
const DateLayout = "2006-01-02"

// Identity は呼び出し元アイデンティティのワイヤ表現です。
// すべての absence 系ペイロードに明示的に含まれます。
type Identity struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RegisterPayload は auth.register の要求です。
type RegisterPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginPayload は auth.login の要求です。
type LoginPayload struct {
	Email string `json:"email"`
}

// LoginResult は auth.login の応答です。
type LoginResult struct {
	AccessToken string `json:"accessToken"`
}

// User は利用者レコードのワイヤ表現です。
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CreateAbsenceDTO は申請作成の操作固有フィールドです。
type CreateAbsenceDTO struct {
	Reason    string `json:"reason"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// CreateAbsencePayload は absence.create の要求です。
type CreateAbsencePayload struct {
	DTO      CreateAbsenceDTO `json:"dto"`
	Identity Identity         `json:"identity"`
}

// ListAbsencesPayload は absence.list の要求です。
type ListAbsencesPayload struct {
	Identity Identity `json:"identity"`
	Page     int      `json:"page"`
	Limit    int      `json:"limit"`
}

// DecideAbsencePayload は absence.approve / absence.reject の要求です。
type DecideAbsencePayload struct {
	ID       string   `json:"id"`
	Identity Identity `json:"identity"`
}

// Absence は休暇申請レコードのワイヤ表現です。
type Absence struct {
	ID         string `json:"id"`
	Reason     string `json:"reason"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Status     string `json:"status"`
	EmployeeID string `json:"employeeId"`
	CreatedAt  string `json:"createdAt"`
}

// ListAbsencesResult は absence.list の応答です。
type ListAbsencesResult struct {
	Data  []Absence `json:"data"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

// FromIdentity は検証済み Identity をワイヤ表現へ変換します。
func FromIdentity(ident identity.Identity) Identity {
	return Identity{
		Sub:   ident.Subject,
		Email: ident.Email,
		Role:  string(ident.Role),
	}
}

// ToIdentity はワイヤ表現から Identity を復元します。
func (p Identity) ToIdentity() (identity.Identity, error) {
	role, err := identity.ParseRole(p.Role)
	if err != nil {
		return identity.Identity{}, err
	}
	return identity.Identity{Subject: p.Sub, Email: p.Email, Role: role}, nil
}

// FromUser は利用者レコードをワイヤ表現へ変換します。
func FromUser(u *auth.User) User {
	if u == nil {
		return User{}
	}
	return User{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

// FromAbsence は休暇申請レコードをワイヤ表現へ変換します。
func FromAbsence(r *absence.AbsenceRequest) Absence {
	if r == nil {
		return Absence{}
	}
	return Absence{
		ID:         r.ID,
		Reason:     r.Reason,
		StartDate:  r.StartDate.Format(DateLayout),
		EndDate:    r.EndDate.Format(DateLayout),
		Status:     string(r.Status),
		EmployeeID: r.EmployeeID,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

// FromAbsences は複数の休暇申請レコードをワイヤ表現へ変換します。
func FromAbsences(requests []*absence.AbsenceRequest) []Absence {
	result := make([]Absence, 0, len(requests))
	for _, r := range requests {
		result = append(result, FromAbsence(r))
	}
	return result
}

// ParseDate は暦日文字列を UTC の time.Time へ変換します。
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, raw, time.UTC)
}
