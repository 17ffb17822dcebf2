package command

import "strings"

// ServiceName はすべてのコマンドを束ねる論理サービス名です。
// コマンドは URL パスではなく安定したコマンド名で宛先付けされます。
const ServiceName = "eams.Commands"

// コマンド名の全集合。各コマンドはちょうど一つのバックエンドが所有します。
const (
	AuthRegister   = "auth.register"
	AuthLogin      = "auth.login"
	AbsenceList    = "absence.list"
	AbsenceCreate  = "absence.create"
	AbsenceApprove = "absence.approve"
	AbsenceReject  = "absence.reject"
)

// FullMethod はコマンド名を gRPC のフルメソッド名へ展開します。
func FullMethod(cmd string) string {
	return "/" + ServiceName + "/" + cmd
}

// IsAuthCommand は cmd の所有者が認証サービスかを返します。
func IsAuthCommand(cmd string) bool {
	return strings.HasPrefix(cmd, "auth.")
}

// IsAbsenceCommand は cmd の所有者が休暇サービスかを返します。
func IsAbsenceCommand(cmd string) bool {
	return strings.HasPrefix(cmd, "absence.")
}
