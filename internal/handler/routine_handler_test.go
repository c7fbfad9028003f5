package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/calen/internal/middleware"
	"github.com/hitoshi/calen/internal/model"
)

// mockRoutineService はRoutineServiceInterfaceのモック実装。
type mockRoutineService struct {
	listCatalogFn   func(ctx context.Context) ([]*model.Routine, error)
	attachFn        func(ctx context.Context, userID, routineID string, start, end time.Time) (*model.UserRoutine, error)
	setCompletionFn func(ctx context.Context, userID, attachmentID string, date time.Time, completed bool) (*model.UserRoutineCompletion, error)
}

func (m *mockRoutineService) ListCatalog(ctx context.Context) ([]*model.Routine, error) {
	if m.listCatalogFn != nil {
		return m.listCatalogFn(ctx)
	}
	return nil, nil
}

func (m *mockRoutineService) Attach(ctx context.Context, userID, routineID string, start, end time.Time) (*model.UserRoutine, error) {
	if m.attachFn != nil {
		return m.attachFn(ctx, userID, routineID, start, end)
	}
	return &model.UserRoutine{ID: "att-1", UserID: userID, RoutineID: routineID, StartDate: start, EndDate: end}, nil
}

func (m *mockRoutineService) SetCompletion(ctx context.Context, userID, attachmentID string, date time.Time, completed bool) (*model.UserRoutineCompletion, error) {
	if m.setCompletionFn != nil {
		return m.setCompletionFn(ctx, userID, attachmentID, date, completed)
	}
	return &model.UserRoutineCompletion{ID: "row-1", UserRoutineID: attachmentID, Date: date, Completed: completed}, nil
}

func newRoutineTestRouter(svc RoutineServiceInterface, userID string) http.Handler {
	r := chi.NewRouter()
	if userID != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.ContextWithUserID(req.Context(), userID)))
			})
		})
	}
	h := NewRoutineHandler(svc)
	r.Get("/api/routines", h.ListRoutines)
	r.Post("/api/user-routines", h.Attach)
	r.Put("/api/user-routines/{id}/completions/{date}", h.SetCompletion)
	return r
}

func TestListRoutines_ReturnsCatalog(t *testing.T) {
	svc := &mockRoutineService{
		listCatalogFn: func(ctx context.Context) ([]*model.Routine, error) {
			return []*model.Routine{
				{ID: "r1", Name: "読書", Description: "毎日30分"},
				{ID: "r2", Name: "運動"},
			}, nil
		},
	}
	router := newRoutineTestRouter(svc, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/routines", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスの解析に失敗: %v", err)
	}
	if len(resp) != 2 || resp[0].Name != "読書" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAttach_Created(t *testing.T) {
	var gotStart, gotEnd time.Time
	svc := &mockRoutineService{
		attachFn: func(ctx context.Context, userID, routineID string, start, end time.Time) (*model.UserRoutine, error) {
			gotStart, gotEnd = start, end
			return &model.UserRoutine{ID: "att-1", RoutineID: routineID, StartDate: start, EndDate: end}, nil
		},
	}
	router := newRoutineTestRouter(svc, "user-1")

	body := strings.NewReader(`{"routine_id":"r1","start_date":"2024-08-10","end_date":"2024-08-20"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/user-routines", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if gotStart.Day() != 10 || gotEnd.Day() != 20 {
		t.Errorf("start = %v, end = %v", gotStart, gotEnd)
	}
}

func TestAttach_MissingRoutineID(t *testing.T) {
	router := newRoutineTestRouter(&mockRoutineService{}, "user-1")

	body := strings.NewReader(`{"start_date":"2024-08-10","end_date":"2024-08-20"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/user-routines", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAttach_InvalidDate(t *testing.T) {
	router := newRoutineTestRouter(&mockRoutineService{}, "user-1")

	body := strings.NewReader(`{"routine_id":"r1","start_date":"08/10/2024","end_date":"2024-08-20"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/user-routines", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), model.ErrCodeInvalidDate) {
		t.Errorf("レスポンスにINVALID_DATEが含まれていない: %s", rec.Body.String())
	}
}

func TestAttach_OverlapConflict(t *testing.T) {
	svc := &mockRoutineService{
		attachFn: func(ctx context.Context, userID, routineID string, start, end time.Time) (*model.UserRoutine, error) {
			return nil, model.NewOverlappingAttachmentError()
		},
	}
	router := newRoutineTestRouter(svc, "user-1")

	body := strings.NewReader(`{"routine_id":"r1","start_date":"2024-08-10","end_date":"2024-08-20"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/user-routines", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), model.ErrCodeOverlappingAttachment) {
		t.Errorf("レスポンスにOVERLAPPING_ATTACHMENTが含まれていない: %s", rec.Body.String())
	}
}

func TestSetCompletion_Success(t *testing.T) {
	var gotCompleted bool
	var gotDate time.Time
	svc := &mockRoutineService{
		setCompletionFn: func(ctx context.Context, userID, attachmentID string, date time.Time, completed bool) (*model.UserRoutineCompletion, error) {
			gotCompleted = completed
			gotDate = date
			return &model.UserRoutineCompletion{ID: "row-1", UserRoutineID: attachmentID, Date: date, Completed: completed}, nil
		},
	}
	router := newRoutineTestRouter(svc, "user-1")

	body := strings.NewReader(`{"completed":true}`)
	req := httptest.NewRequest(http.MethodPut, "/api/user-routines/att-1/completions/2024-08-15", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !gotCompleted {
		t.Error("completed=true がサービスに渡されていない")
	}
	if gotDate.Day() != 15 {
		t.Errorf("date = %v, want 2024-08-15", gotDate)
	}
}

func TestSetCompletion_CompletionNotFound(t *testing.T) {
	svc := &mockRoutineService{
		setCompletionFn: func(ctx context.Context, userID, attachmentID string, date time.Time, completed bool) (*model.UserRoutineCompletion, error) {
			return nil, model.NewCompletionNotFoundError()
		},
	}
	router := newRoutineTestRouter(svc, "user-1")

	body := strings.NewReader(`{"completed":true}`)
	req := httptest.NewRequest(http.MethodPut, "/api/user-routines/att-1/completions/2024-09-01", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
