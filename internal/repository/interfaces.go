// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/calen/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するuser_routines、user_routine_completions、personal_schedules、
	// monthly_titlesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// RoutineRepository はルーチンカタログの参照インターフェース。
// カタログの管理は外部コラボレータが担うため読み取り専用。
type RoutineRepository interface {
	// FindByID は指定IDのルーチンを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Routine, error)

	// List は全ルーチンを名前昇順で返す。
	List(ctx context.Context) ([]*model.Routine, error)
}

// UserRoutineRepository はルーチン紐付けの永続化インターフェース。
type UserRoutineRepository interface {
	// FindByID は指定IDの紐付けを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.UserRoutine, error)

	// FindOverlapping は同一(user, routine)で期間が[start, end]と重複する
	// 紐付けを1件返す。存在しない場合はnilを返す。
	FindOverlapping(ctx context.Context, userID, routineID string, start, end time.Time) (*model.UserRoutine, error)

	// CreateWithCompletions は紐付けと区間内全日分の完了レコードを
	// 同一トランザクションで作成する。
	CreateWithCompletions(ctx context.Context, attachment *model.UserRoutine, completions []*model.UserRoutineCompletion) error

	// ListActiveWithState は指定日に有効な紐付けをルーチン情報と
	// その日の完了状態付きで返す。完了レコードが無い場合はcompleted=falseとなる。
	ListActiveWithState(ctx context.Context, userID string, date time.Time) ([]RoutineWithState, error)
}

// CompletionRepository は完了レコードの永続化インターフェース。
type CompletionRepository interface {
	// FindByAttachmentAndDate は紐付けIDと日付で完了レコードを取得する。
	// 見つからない場合はnilを返す。
	FindByAttachmentAndDate(ctx context.Context, userRoutineID string, date time.Time) (*model.UserRoutineCompletion, error)

	// UpdateCompleted は指定IDの完了レコードのcompletedを更新する。
	UpdateCompleted(ctx context.Context, id string, completed bool) error

	// ListByDate はユーザーの指定日の完了レコードを全件返す。
	ListByDate(ctx context.Context, userID string, date time.Time) ([]*model.UserRoutineCompletion, error)

	// CountByDateRange は[from, to]の範囲で日付ごとの総数・完了数を返す。
	// レコードが存在しない日付は結果に含まれない。
	CountByDateRange(ctx context.Context, userID string, from, to time.Time) ([]DailyCount, error)
}

// ScheduleRepository は個人予定の永続化インターフェース。
type ScheduleRepository interface {
	// Create は個人予定を作成する。
	Create(ctx context.Context, schedule *model.PersonalSchedule) error

	// FindByID は指定IDの個人予定を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.PersonalSchedule, error)

	// ListByDate はユーザーの指定日の個人予定を作成順で返す。
	ListByDate(ctx context.Context, userID string, date time.Time) ([]*model.PersonalSchedule, error)

	// Update は個人予定のtitle、description、completedを更新する。
	Update(ctx context.Context, schedule *model.PersonalSchedule) error

	// Delete は指定IDの個人予定を削除する。
	Delete(ctx context.Context, id string) error

	// CountByDateRange は[from, to]の範囲で日付ごとの総数・完了数を返す。
	// レコードが存在しない日付は結果に含まれない。
	CountByDateRange(ctx context.Context, userID string, from, to time.Time) ([]DailyCount, error)
}

// MonthlyTitleRepository は月タイトルの永続化インターフェース。
type MonthlyTitleRepository interface {
	// Upsert は(user_id, month)をキーに月タイトルを冪等に作成・更新する。
	Upsert(ctx context.Context, title *model.MonthlyTitle) error

	// FindByMonth はユーザーと月初日で月タイトルを取得する。
	// 見つからない場合はnilを返す。
	FindByMonth(ctx context.Context, userID string, month time.Time) (*model.MonthlyTitle, error)
}

// DailyCount は日付ごとの義務の総数と完了数を表す。
// 完了集計のグループ化クエリの結果行。
type DailyCount struct {
	Date      time.Time
	Total     int
	Completed int
}

// RoutineWithState は紐付けとルーチン情報、特定日の完了状態を結合した構造体。
type RoutineWithState struct {
	model.UserRoutine
	RoutineName        string
	RoutineDescription string
	Completed          bool
}
