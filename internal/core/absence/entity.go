package absence

import "time"

// Status は休暇申請の状態を表す閉じた列挙です。
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// AbsenceRequest は休暇申請レコードです。状態遷移の判定は Status に対する
// 述語関数が担い、レコード自身は振る舞いを持ちません。
type AbsenceRequest struct {
	ID         string
	Reason     string
	StartDate  time.Time
	EndDate    time.Time
	Status     Status
	EmployeeID string
	CreatedAt  time.Time
}

// IsValidStatus は status が閉じた状態集合に含まれるかを返します。
func IsValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal は status が終端状態（APPROVED / REJECTED）かを返します。
// 終端状態からの遷移は許可されません。
func IsTerminal(status Status) bool {
	return status == StatusApproved || status == StatusRejected
}

// IsDecision は status が approve / reject 操作の結果として妥当かを返します。
func IsDecision(status Status) bool {
	return IsTerminal(status)
}
