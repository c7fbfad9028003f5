// Package model はドメインモデルを定義する。
package model

import "time"

// Routine はルーチンテンプレートを表す。
// カタログの管理は外部のルーチンコラボレータが担い、本サービスは参照のみ。
type Routine struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// UserRoutine はルーチンをユーザーに期間付きで紐付けたレコードを表す。
// [StartDate, EndDate] は両端を含む日付区間。作成後は変更不可で、
// ユーザーまたはルーチンの削除時にCASCADE削除される。
type UserRoutine struct {
	ID        string
	UserID    string
	RoutineID string
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
}

// UserRoutineCompletion は特定の紐付けルーチンの特定日における完了状態を表す。
// (user_routine_id, date) はユニーク。紐付け作成時に区間内の全日分が
// completed=false で先行作成される。
type UserRoutineCompletion struct {
	ID            string
	UserID        string
	UserRoutineID string
	Date          time.Time
	Completed     bool
	UpdatedAt     time.Time
}

// PersonalSchedule はユーザーの単発予定を表す。
type PersonalSchedule struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Date        time.Time
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MonthlyTitle はユーザーが月に付けるラベルを表す。
// Monthは月初日の日付で保持し、(user_id, month) はユニーク。
type MonthlyTitle struct {
	ID        string
	UserID    string
	Month     time.Time
	Title     string
	UpdatedAt time.Time
}
