// Package calendar は日・月ごとの完了集計のドメインロジックを提供する。
//
// 「スター」＝その日の全ての義務（ルーチンの完了レコードと個人予定）が
// 完了している状態。義務が1つもない日は空虚に真として完了扱いとなる。
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/calen/internal/metrics"
	"github.com/hitoshi/calen/internal/model"
	"github.com/hitoshi/calen/internal/repository"
	"github.com/hitoshi/calen/internal/security"
)

// MonthlySummary は月間サマリーのドメインオブジェクト。
type MonthlySummary struct {
	Month         time.Time
	CompletedDays []time.Time
	Title         *model.MonthlyTitle
}

// DailySummary は日次サマリーのドメインオブジェクト。
type DailySummary struct {
	Date      time.Time
	Routines  []repository.RoutineWithState
	Schedules []*model.PersonalSchedule
}

// Service は完了集計のサービス層。
// 月間・日次サマリーの取得と月タイトルの設定を提供する。全操作でユーザーデータ
// 分離（全クエリにuser_id条件付与）をRepository層で強制する。
type Service struct {
	userRoutineRepo repository.UserRoutineRepository
	completionRepo  repository.CompletionRepository
	scheduleRepo    repository.ScheduleRepository
	titleRepo       repository.MonthlyTitleRepository
	sanitizer       security.ContentSanitizerService
	collector       metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorはnilを許容する（メトリクスを記録しない）。
func NewService(
	userRoutineRepo repository.UserRoutineRepository,
	completionRepo repository.CompletionRepository,
	scheduleRepo repository.ScheduleRepository,
	titleRepo repository.MonthlyTitleRepository,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		userRoutineRepo: userRoutineRepo,
		completionRepo:  completionRepo,
		scheduleRepo:    scheduleRepo,
		titleRepo:       titleRepo,
		sanitizer:       sanitizer,
		collector:       collector,
	}
}

// IsDayComplete は指定日の全ての義務が完了しているかを判定する。
// ルーチンの義務はその日の完了レコード、予定の義務はその日の個人予定。
// どちらの義務も存在しない日は空虚に真として完了扱いとなる。
func (s *Service) IsDayComplete(ctx context.Context, userID string, date time.Time) (bool, error) {
	date = Normalize(date)

	completions, err := s.completionRepo.ListByDate(ctx, userID, date)
	if err != nil {
		return false, fmt.Errorf("完了レコードの取得に失敗しました: %w", err)
	}
	for _, c := range completions {
		if !c.Completed {
			return false, nil
		}
	}

	schedules, err := s.scheduleRepo.ListByDate(ctx, userID, date)
	if err != nil {
		return false, fmt.Errorf("個人予定の取得に失敗しました: %w", err)
	}
	for _, sch := range schedules {
		if !sch.Completed {
			return false, nil
		}
	}

	return true, nil
}

// CompletedDays は指定月の完了日（スター日）を昇順で返す。
// 日別のGROUP BY集計で総数と完了数を比較する集約形式の実装。義務が存在しない
// 日付も完了扱いとなり、IsDayCompleteを各日に適用した結果と常に一致する。
func (s *Service) CompletedDays(ctx context.Context, userID string, month time.Time) ([]time.Time, error) {
	start := time.Now()
	first, last := MonthRange(month)

	routineCounts, err := s.completionRepo.CountByDateRange(ctx, userID, first, last)
	if err != nil {
		return nil, fmt.Errorf("完了レコードの日別集計に失敗しました: %w", err)
	}
	scheduleCounts, err := s.scheduleRepo.CountByDateRange(ctx, userID, first, last)
	if err != nil {
		return nil, fmt.Errorf("個人予定の日別集計に失敗しました: %w", err)
	}

	routineByDate := make(map[string]repository.DailyCount, len(routineCounts))
	for _, dc := range routineCounts {
		routineByDate[DateKey(dc.Date)] = dc
	}
	scheduleByDate := make(map[string]repository.DailyCount, len(scheduleCounts))
	for _, dc := range scheduleCounts {
		scheduleByDate[DateKey(dc.Date)] = dc
	}

	var completed []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := DateKey(d)

		// 集計行が無い種別は空虚に完了扱い
		if dc, ok := routineByDate[key]; ok && dc.Completed != dc.Total {
			continue
		}
		if dc, ok := scheduleByDate[key]; ok && dc.Completed != dc.Total {
			continue
		}

		completed = append(completed, d)
	}

	if s.collector != nil {
		s.collector.RecordAggregationLatency(time.Since(start))
	}

	return completed, nil
}

// MonthlySummary は指定月の完了日一覧と月タイトルを返す。
func (s *Service) MonthlySummary(ctx context.Context, userID string, month time.Time) (*MonthlySummary, error) {
	days, err := s.CompletedDays(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	first, _ := MonthRange(month)
	title, err := s.titleRepo.FindByMonth(ctx, userID, first)
	if err != nil {
		return nil, fmt.Errorf("月タイトルの取得に失敗しました: %w", err)
	}

	return &MonthlySummary{
		Month:         first,
		CompletedDays: days,
		Title:         title,
	}, nil
}

// DailySummary は指定日に有効なルーチン（完了状態付き）と個人予定を返す。
func (s *Service) DailySummary(ctx context.Context, userID string, date time.Time) (*DailySummary, error) {
	date = Normalize(date)

	routines, err := s.userRoutineRepo.ListActiveWithState(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("有効なルーチン一覧の取得に失敗しました: %w", err)
	}

	schedules, err := s.scheduleRepo.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("個人予定一覧の取得に失敗しました: %w", err)
	}

	return &DailySummary{
		Date:      date,
		Routines:  routines,
		Schedules: schedules,
	}, nil
}

// SetMonthlyTitle は指定月のタイトルを設定する。
// (user, month)ごとに1件のみ保持し、既存のタイトルは上書きされる。
func (s *Service) SetMonthlyTitle(ctx context.Context, userID string, month time.Time, title string) (*model.MonthlyTitle, error) {
	title = strings.TrimSpace(s.sanitizer.SanitizeText(title))
	if title == "" {
		return nil, model.NewInvalidRequestError("タイトルは必須です")
	}

	first, _ := MonthRange(month)
	t := &model.MonthlyTitle{
		ID:        uuid.NewString(),
		UserID:    userID,
		Month:     first,
		Title:     title,
		UpdatedAt: time.Now(),
	}

	if err := s.titleRepo.Upsert(ctx, t); err != nil {
		return nil, fmt.Errorf("月タイトルの保存に失敗しました: %w", err)
	}

	return t, nil
}
