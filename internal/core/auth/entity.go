package auth

import "github.com/ogurasousui/eams-grpc-clean-arch/internal/core/identity"

// User は認証サービスが所有する利用者レコードです。
// 本コアにプロフィール更新の操作はなく、登録後に変更されることはありません。
type User struct {
	ID    string
	Name  string
	Email string
	Role  identity.Role
}
