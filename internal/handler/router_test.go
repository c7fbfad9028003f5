package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/calen/internal/middleware"
)

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	withdrawFn func(ctx context.Context, userID string) error
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// mockTokenVerifier はmiddleware.TokenVerifierのモック実装。
type mockTokenVerifier struct {
	userID string
	err    error
}

func (m *mockTokenVerifier) Verify(tokenString string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.userID, nil
}

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

func newTestRouter(verifier *mockTokenVerifier, health *mockHealthChecker) http.Handler {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(100),
		GeneralBurst:    100,
		WriteRate:       rate.Limit(100),
		WriteBurst:      100,
		CleanupInterval: time.Minute,
	})

	var buf bytes.Buffer
	return NewRouter(&RouterDeps{
		TokenVerifier:     verifier,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		Logger:            slog.New(slog.NewJSONHandler(&buf, nil)),

		HealthChecker: health,

		CalendarService: &mockCalendarService{},
		RoutineService:  &mockRoutineService{},
		ScheduleService: &mockScheduleService{},
		UserService:     &mockUserService{},
	})
}

func TestRouter_Health_OK(t *testing.T) {
	router := newTestRouter(&mockTokenVerifier{userID: "user-1"}, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_Health_DBDown(t *testing.T) {
	router := newTestRouter(&mockTokenVerifier{userID: "user-1"}, &mockHealthChecker{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestRouter_APIRequiresAuth(t *testing.T) {
	router := newTestRouter(&mockTokenVerifier{err: errors.New("invalid")}, &mockHealthChecker{})

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/calendar/monthly/2024-08"},
		{http.MethodGet, "/api/calendar/daily/2024-08-15"},
		{http.MethodGet, "/api/routines"},
		{http.MethodPost, "/api/user-routines"},
		{http.MethodDelete, "/api/users/me"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestRouter_AuthenticatedRequestSucceeds(t *testing.T) {
	router := newTestRouter(&mockTokenVerifier{userID: "user-1"}, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/routines", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_Withdraw_NoContent(t *testing.T) {
	router := newTestRouter(&mockTokenVerifier{userID: "user-1"}, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(&mockTokenVerifier{userID: "user-1"}, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodOptions, "/api/routines", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := newTestRouter(&mockTokenVerifier{userID: "user-1"}, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
