package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/calen/internal/calendar"
	"github.com/hitoshi/calen/internal/middleware"
	"github.com/hitoshi/calen/internal/model"
	"github.com/hitoshi/calen/internal/schedule"
)

// ScheduleServiceInterface は予定ハンドラーが必要とするサービスインターフェース。
type ScheduleServiceInterface interface {
	// Create は指定日の個人予定を作成する。
	Create(ctx context.Context, userID string, date time.Time, title, description string) (*model.PersonalSchedule, error)
	// Update は個人予定を部分更新する。
	Update(ctx context.Context, userID, scheduleID string, input schedule.UpdateInput) (*model.PersonalSchedule, error)
	// Delete は個人予定を削除する。
	Delete(ctx context.Context, userID, scheduleID string) error
}

// ScheduleHandler は個人予定管理のHTTPハンドラー。
type ScheduleHandler struct {
	service ScheduleServiceInterface
}

// NewScheduleHandler はScheduleHandlerを生成する。
func NewScheduleHandler(service ScheduleServiceInterface) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
	}
}

// createScheduleRequest は予定作成リクエストのボディ。
type createScheduleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// updateScheduleRequest は予定更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updateScheduleRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// Create は指定日の個人予定を作成する。
// POST /api/calendar/daily/:date/schedules
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	sch, err := h.service.Create(r.Context(), userID, date, req.Title, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toScheduleResponse(sch))
}

// Update は個人予定を部分更新する。
// PATCH /api/schedules/:id
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	scheduleID := chi.URLParam(r, "id")

	var req updateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	sch, err := h.service.Update(r.Context(), userID, scheduleID, schedule.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toScheduleResponse(sch))
}

// Delete は個人予定を削除する。
// DELETE /api/schedules/:id
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	scheduleID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, scheduleID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
