// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, calendar, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeInvalidMonth          = "INVALID_MONTH"
	ErrCodeInvalidDate           = "INVALID_DATE"
	ErrCodeInvalidDateRange      = "INVALID_DATE_RANGE"
	ErrCodePastDate              = "PAST_DATE"
	ErrCodeRoutineNotFound       = "ROUTINE_NOT_FOUND"
	ErrCodeAttachmentNotFound    = "ATTACHMENT_NOT_FOUND"
	ErrCodeCompletionNotFound    = "COMPLETION_NOT_FOUND"
	ErrCodeScheduleNotFound      = "SCHEDULE_NOT_FOUND"
	ErrCodeOverlappingAttachment = "OVERLAPPING_ATTACHMENT"
	ErrCodeUserNotFound          = "USER_NOT_FOUND"
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidMonthError は月文字列が解析できない場合のエラーを生成する。
func NewInvalidMonthError(month string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMonth,
		Message:  fmt.Sprintf("無効な月の形式です: %s", month),
		Category: "validation",
		Action:   "月は YYYY-MM 形式で指定してください。",
	}
}

// NewInvalidDateError は日付文字列が解析できない場合のエラーを生成する。
func NewInvalidDateError(date string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付の形式です: %s", date),
		Category: "validation",
		Action:   "日付は YYYY-MM-DD 形式で指定してください。",
	}
}

// NewInvalidDateRangeError は開始日が終了日より後の場合のエラーを生成する。
func NewInvalidDateRangeError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDateRange,
		Message:  "開始日は終了日以前である必要があります。",
		Category: "validation",
		Action:   "開始日と終了日を確認してください。",
	}
}

// NewPastDateError は過去日付が指定された場合のエラーを生成する。
func NewPastDateError() *APIError {
	return &APIError{
		Code:     ErrCodePastDate,
		Message:  "過去の日付にはルーチンを設定できません。",
		Category: "validation",
		Action:   "今日以降の日付を指定してください。",
	}
}

// NewRoutineNotFoundError はルーチン未検出エラーを生成する。
func NewRoutineNotFoundError(routineID string) *APIError {
	return &APIError{
		Code:     ErrCodeRoutineNotFound,
		Message:  fmt.Sprintf("指定されたルーチンが見つかりません: %s", routineID),
		Category: "calendar",
		Action:   "ルーチンIDを確認してください。",
	}
}

// NewAttachmentNotFoundError はルーチン紐付け未検出エラーを生成する。
func NewAttachmentNotFoundError(attachmentID string) *APIError {
	return &APIError{
		Code:     ErrCodeAttachmentNotFound,
		Message:  fmt.Sprintf("指定されたルーチン設定が見つかりません: %s", attachmentID),
		Category: "calendar",
		Action:   "ルーチン設定のIDを確認してください。",
	}
}

// NewCompletionNotFoundError は完了レコード未検出エラーを生成する。
func NewCompletionNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeCompletionNotFound,
		Message:  "指定された日付の完了レコードが見つかりません。",
		Category: "calendar",
		Action:   "ルーチンの設定期間内の日付を指定してください。",
	}
}

// NewScheduleNotFoundError は個人予定未検出エラーを生成する。
func NewScheduleNotFoundError(scheduleID string) *APIError {
	return &APIError{
		Code:     ErrCodeScheduleNotFound,
		Message:  fmt.Sprintf("指定された予定が見つかりません: %s", scheduleID),
		Category: "calendar",
		Action:   "予定IDを確認してください。",
	}
}

// NewOverlappingAttachmentError は期間が重複する紐付けが既に存在する場合のエラーを生成する。
func NewOverlappingAttachmentError() *APIError {
	return &APIError{
		Code:     ErrCodeOverlappingAttachment,
		Message:  "同じルーチンが重複する期間で既に設定されています。",
		Category: "calendar",
		Action:   "既存の設定期間と重ならない期間を指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidRequestError はリクエスト内容が不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}
