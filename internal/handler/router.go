package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/calen/internal/metrics"
	"github.com/hitoshi/calen/internal/middleware"
)

// HealthChecker はDB疎通確認に必要なインターフェース。
// *sql.DB の部分集合として定義する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 監視
	HealthChecker HealthChecker
	Collector     metrics.MetricsCollector
	Gatherer      prometheus.Gatherer

	// カレンダー
	CalendarService CalendarServiceInterface

	// ルーチン
	RoutineService RoutineServiceInterface

	// 個人予定
	ScheduleService ScheduleServiceInterface

	// ユーザー
	UserService UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeaders → Logging → Recovery → AuthMiddleware → RateLimit(General)
//
// /health と /metrics は認証ミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))
	r.Use(middleware.NewRecoveryMiddleware())

	calendarHandler := NewCalendarHandler(deps.CalendarService)
	routineHandler := NewRoutineHandler(deps.RoutineService)
	scheduleHandler := NewScheduleHandler(deps.ScheduleService)
	userHandler := NewUserHandler(deps.UserService)

	// --- 認証不要のルート ---

	// ヘルスチェック（DB疎通込み）
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheusスクレイプエンドポイント
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// カレンダー表示
		r.Route("/api/calendar", func(r chi.Router) {
			r.Route("/monthly/{month}", func(r chi.Router) {
				r.Get("/", calendarHandler.Monthly)
				r.Get("/star-days", calendarHandler.StarDays)
				r.With(deps.RateLimiter.WriteMiddleware()).Put("/title", calendarHandler.SetMonthlyTitle)
			})

			r.Route("/daily/{date}", func(r chi.Router) {
				r.Get("/", calendarHandler.Daily)

				// POST /api/calendar/daily/{date}/schedules - 予定作成（書き込みレート制限を追加）
				r.With(deps.RateLimiter.WriteMiddleware()).Post("/schedules", scheduleHandler.Create)
			})
		})

		// ルーチンカタログ
		r.Get("/api/routines", routineHandler.ListRoutines)

		// ルーチン紐付け管理
		r.Route("/api/user-routines", func(r chi.Router) {
			// POST /api/user-routines - 紐付け作成（書き込みレート制限を追加）
			r.With(deps.RateLimiter.WriteMiddleware()).Post("/", routineHandler.Attach)

			r.Put("/{id}/completions/{date}", routineHandler.SetCompletion)
		})

		// 個人予定管理
		r.Route("/api/schedules/{id}", func(r chi.Router) {
			r.Patch("/", scheduleHandler.Update)
			r.Delete("/", scheduleHandler.Delete)
		})

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}
