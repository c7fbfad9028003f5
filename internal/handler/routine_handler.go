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
)

// RoutineServiceInterface はルーチンハンドラーが必要とするサービスインターフェース。
type RoutineServiceInterface interface {
	// ListCatalog はルーチンカタログの一覧を返す。
	ListCatalog(ctx context.Context) ([]*model.Routine, error)
	// Attach はルーチンをユーザーに期間付きで紐付ける。
	Attach(ctx context.Context, userID, routineID string, start, end time.Time) (*model.UserRoutine, error)
	// SetCompletion は指定日の完了状態を冪等に更新する。
	SetCompletion(ctx context.Context, userID, attachmentID string, date time.Time, completed bool) (*model.UserRoutineCompletion, error)
}

// RoutineHandler はルーチン管理のHTTPハンドラー。
type RoutineHandler struct {
	service RoutineServiceInterface
}

// NewRoutineHandler はRoutineHandlerを生成する。
func NewRoutineHandler(service RoutineServiceInterface) *RoutineHandler {
	return &RoutineHandler{
		service: service,
	}
}

// attachRequest はルーチン紐付けリクエストのボディ。
type attachRequest struct {
	RoutineID string `json:"routine_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// setCompletionRequest は完了状態更新リクエストのボディ。
type setCompletionRequest struct {
	Completed bool `json:"completed"`
}

// routineResponse はルーチンカタログのAPIレスポンス。
type routineResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// attachmentResponse はルーチン紐付けのAPIレスポンス。
type attachmentResponse struct {
	ID        string `json:"id"`
	RoutineID string `json:"routine_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// completionResponse は完了レコードのAPIレスポンス。
type completionResponse struct {
	ID            string `json:"id"`
	UserRoutineID string `json:"user_routine_id"`
	Date          string `json:"date"`
	Completed     bool   `json:"completed"`
}

// ListRoutines はルーチンカタログの一覧を返す。
// GET /api/routines
func (h *RoutineHandler) ListRoutines(w http.ResponseWriter, r *http.Request) {
	routines, err := h.service.ListCatalog(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]routineResponse, 0, len(routines))
	for _, rt := range routines {
		resp = append(resp, routineResponse{
			ID:          rt.ID,
			Name:        rt.Name,
			Description: rt.Description,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Attach はルーチンの紐付けを作成する。
// POST /api/user-routines
func (h *RoutineHandler) Attach(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req attachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.RoutineID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("routine_idは必須です"))
		return
	}

	start, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(req.StartDate))
		return
	}
	end, err := calendar.ParseDate(req.EndDate)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(req.EndDate))
		return
	}

	attachment, err := h.service.Attach(r.Context(), userID, req.RoutineID, start, end)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(attachmentResponse{
		ID:        attachment.ID,
		RoutineID: attachment.RoutineID,
		StartDate: attachment.StartDate.Format(calendar.DateLayout),
		EndDate:   attachment.EndDate.Format(calendar.DateLayout),
	})
}

// SetCompletion は指定日の完了状態を更新する。
// PUT /api/user-routines/:id/completions/:date
func (h *RoutineHandler) SetCompletion(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	attachmentID := chi.URLParam(r, "id")
	dateParam := chi.URLParam(r, "date")

	date, err := calendar.ParseDate(dateParam)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(dateParam))
		return
	}

	var req setCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	row, err := h.service.SetCompletion(r.Context(), userID, attachmentID, date, req.Completed)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(completionResponse{
		ID:            row.ID,
		UserRoutineID: row.UserRoutineID,
		Date:          row.Date.Format(calendar.DateLayout),
		Completed:     row.Completed,
	})
}
