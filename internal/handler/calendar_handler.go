package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/calen/internal/calendar"
	"github.com/hitoshi/calen/internal/middleware"
	"github.com/hitoshi/calen/internal/model"
	"github.com/hitoshi/calen/internal/repository"
)

// CalendarServiceInterface はカレンダーハンドラーが必要とするサービスインターフェース。
type CalendarServiceInterface interface {
	// MonthlySummary は指定月の完了日一覧と月タイトルを返す。
	MonthlySummary(ctx context.Context, userID string, month time.Time) (*calendar.MonthlySummary, error)
	// CompletedDays は指定月の完了日（スター日）を昇順で返す。
	CompletedDays(ctx context.Context, userID string, month time.Time) ([]time.Time, error)
	// DailySummary は指定日に有効なルーチンと個人予定を返す。
	DailySummary(ctx context.Context, userID string, date time.Time) (*calendar.DailySummary, error)
	// SetMonthlyTitle は指定月のタイトルを設定する。
	SetMonthlyTitle(ctx context.Context, userID string, month time.Time, title string) (*model.MonthlyTitle, error)
}

// CalendarHandler はカレンダー表示のHTTPハンドラー。
type CalendarHandler struct {
	service CalendarServiceInterface
}

// NewCalendarHandler はCalendarHandlerを生成する。
func NewCalendarHandler(service CalendarServiceInterface) *CalendarHandler {
	return &CalendarHandler{
		service: service,
	}
}

// setMonthlyTitleRequest は月タイトル設定リクエストのボディ。
type setMonthlyTitleRequest struct {
	Title string `json:"title"`
}

// monthlySummaryResponse は月間サマリーのAPIレスポンス。
type monthlySummaryResponse struct {
	Month         string   `json:"month"`
	Title         *string  `json:"title"`
	CompletedDays []string `json:"completed_days"`
}

// starDaysResponse はスター日一覧のAPIレスポンス。
type starDaysResponse struct {
	Month    string   `json:"month"`
	StarDays []string `json:"star_days"`
}

// monthlyTitleResponse は月タイトルのAPIレスポンス。
type monthlyTitleResponse struct {
	Month string `json:"month"`
	Title string `json:"title"`
}

// routineStateResponse は日次サマリー内のルーチンのAPIレスポンス。
type routineStateResponse struct {
	AttachmentID string `json:"attachment_id"`
	RoutineID    string `json:"routine_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Completed    bool   `json:"completed"`
}

// scheduleResponse は個人予定のAPIレスポンス。
type scheduleResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Completed   bool   `json:"completed"`
}

// dailySummaryResponse は日次サマリーのAPIレスポンス。
type dailySummaryResponse struct {
	Date      string                 `json:"date"`
	Routines  []routineStateResponse `json:"routines"`
	Schedules []scheduleResponse     `json:"schedules"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// Monthly は月間サマリーを返す。
// GET /api/calendar/monthly/:month
func (h *CalendarHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	monthParam := chi.URLParam(r, "month")
	month, err := calendar.ParseMonth(monthParam)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidMonthError(monthParam))
		return
	}

	summary, err := h.service.MonthlySummary(r.Context(), userID, month)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := monthlySummaryResponse{
		Month:         summary.Month.Format(calendar.MonthLayout),
		CompletedDays: formatDates(summary.CompletedDays),
	}
	if summary.Title != nil {
		resp.Title = &summary.Title.Title
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// StarDays はスター日（全義務完了日）の一覧を返す。
// GET /api/calendar/monthly/:month/star-days
func (h *CalendarHandler) StarDays(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	monthParam := chi.URLParam(r, "month")
	month, err := calendar.ParseMonth(monthParam)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidMonthError(monthParam))
		return
	}

	days, err := h.service.CompletedDays(r.Context(), userID, month)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(starDaysResponse{
		Month:    month.Format(calendar.MonthLayout),
		StarDays: formatDates(days),
	})
}

// SetMonthlyTitle は月タイトルを設定する。既存タイトルは上書きされる。
// PUT /api/calendar/monthly/:month/title
func (h *CalendarHandler) SetMonthlyTitle(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	monthParam := chi.URLParam(r, "month")
	month, err := calendar.ParseMonth(monthParam)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidMonthError(monthParam))
		return
	}

	var req setMonthlyTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	title, err := h.service.SetMonthlyTitle(r.Context(), userID, month, req.Title)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(monthlyTitleResponse{
		Month: title.Month.Format(calendar.MonthLayout),
		Title: title.Title,
	})
}

// Daily は日次サマリーを返す。
// GET /api/calendar/daily/:date
func (h *CalendarHandler) Daily(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	dateParam := chi.URLParam(r, "date")
	date, err := calendar.ParseDate(dateParam)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(dateParam))
		return
	}

	summary, err := h.service.DailySummary(r.Context(), userID, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := dailySummaryResponse{
		Date:      summary.Date.Format(calendar.DateLayout),
		Routines:  make([]routineStateResponse, 0, len(summary.Routines)),
		Schedules: make([]scheduleResponse, 0, len(summary.Schedules)),
	}
	for _, rs := range summary.Routines {
		resp.Routines = append(resp.Routines, toRoutineStateResponse(rs))
	}
	for _, sch := range summary.Schedules {
		resp.Schedules = append(resp.Schedules, toScheduleResponse(sch))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- ヘルパー関数 ---

// formatDates は日付スライスをYYYY-MM-DD文字列スライスに変換する。
// JSONでnullではなく空配列を返すため、常に非nilのスライスを返す。
func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(calendar.DateLayout))
	}
	return out
}

// toRoutineStateResponse はrepository.RoutineWithStateからAPIレスポンスに変換する。
func toRoutineStateResponse(rs repository.RoutineWithState) routineStateResponse {
	return routineStateResponse{
		AttachmentID: rs.ID,
		RoutineID:    rs.RoutineID,
		Name:         rs.RoutineName,
		Description:  rs.RoutineDescription,
		StartDate:    rs.StartDate.Format(calendar.DateLayout),
		EndDate:      rs.EndDate.Format(calendar.DateLayout),
		Completed:    rs.Completed,
	}
}

// toScheduleResponse はmodel.PersonalScheduleからAPIレスポンスに変換する。
func toScheduleResponse(sch *model.PersonalSchedule) scheduleResponse {
	return scheduleResponse{
		ID:          sch.ID,
		Title:       sch.Title,
		Description: sch.Description,
		Date:        sch.Date.Format(calendar.DateLayout),
		Completed:   sch.Completed,
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidMonth, model.ErrCodeInvalidDate,
		model.ErrCodeInvalidDateRange, model.ErrCodePastDate,
		model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeRoutineNotFound, model.ErrCodeAttachmentNotFound,
		model.ErrCodeCompletionNotFound, model.ErrCodeScheduleNotFound,
		model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeOverlappingAttachment:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
