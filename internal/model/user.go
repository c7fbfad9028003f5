// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// アカウントの発行・認証は外部の認証コラボレータが担い、
// 本サービスはIDの参照と退会処理のみを行う。
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
