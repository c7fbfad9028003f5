// Package routine はルーチン紐付けと完了状態管理のドメインロジックを提供する。
package routine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/calen/internal/calendar"
	"github.com/hitoshi/calen/internal/metrics"
	"github.com/hitoshi/calen/internal/model"
	"github.com/hitoshi/calen/internal/repository"
)

// Service はルーチン紐付けのサービス層。
// 紐付けの作成バリデーションと完了状態の更新を提供する。
type Service struct {
	routineRepo     repository.RoutineRepository
	userRoutineRepo repository.UserRoutineRepository
	completionRepo  repository.CompletionRepository
	collector       metrics.MetricsCollector

	// now は「今日」の判定に使う現在時刻の取得関数。テストで差し替える。
	now func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorはnilを許容する（メトリクスを記録しない）。
func NewService(
	routineRepo repository.RoutineRepository,
	userRoutineRepo repository.UserRoutineRepository,
	completionRepo repository.CompletionRepository,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		routineRepo:     routineRepo,
		userRoutineRepo: userRoutineRepo,
		completionRepo:  completionRepo,
		collector:       collector,
		now:             time.Now,
	}
}

// ListCatalog はルーチンカタログの一覧を返す。
func (s *Service) ListCatalog(ctx context.Context) ([]*model.Routine, error) {
	routines, err := s.routineRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ルーチンカタログの取得に失敗しました: %w", err)
	}
	return routines, nil
}

// Attach はルーチンをユーザーに期間付きで紐付ける。
//
// バリデーション（順に適用）:
//  1. ルーチンが存在すること
//  2. start <= end であること
//  3. 開始日・終了日のどちらも今日より前でないこと
//  4. 同一(user, routine)で期間が重複する既存の紐付けが無いこと
//
// 成功時は紐付けと区間内全日分の完了レコード（completed=false）を
// 同一トランザクションで作成する。
func (s *Service) Attach(ctx context.Context, userID, routineID string, start, end time.Time) (*model.UserRoutine, error) {
	start = calendar.Normalize(start)
	end = calendar.Normalize(end)

	routine, err := s.routineRepo.FindByID(ctx, routineID)
	if err != nil {
		return nil, fmt.Errorf("ルーチンの取得に失敗しました: %w", err)
	}
	if routine == nil {
		return nil, model.NewRoutineNotFoundError(routineID)
	}

	if start.After(end) {
		return nil, model.NewInvalidDateRangeError()
	}

	today := calendar.Normalize(s.now())
	if start.Before(today) || end.Before(today) {
		return nil, model.NewPastDateError()
	}

	existing, err := s.userRoutineRepo.FindOverlapping(ctx, userID, routineID, start, end)
	if err != nil {
		return nil, fmt.Errorf("重複する紐付けの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewOverlappingAttachmentError()
	}

	now := s.now()
	attachment := &model.UserRoutine{
		ID:        uuid.NewString(),
		UserID:    userID,
		RoutineID: routineID,
		StartDate: start,
		EndDate:   end,
		CreatedAt: now,
	}

	var completions []*model.UserRoutineCompletion
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		completions = append(completions, &model.UserRoutineCompletion{
			ID:            uuid.NewString(),
			UserID:        userID,
			UserRoutineID: attachment.ID,
			Date:          d,
			Completed:     false,
			UpdatedAt:     now,
		})
	}

	if err := s.userRoutineRepo.CreateWithCompletions(ctx, attachment, completions); err != nil {
		return nil, fmt.Errorf("ルーチン紐付けの作成に失敗しました: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordAttachmentCreated()
	}

	return attachment, nil
}

// SetCompletion は指定日の完了状態を冪等に更新する。
// 完了レコードは紐付け作成時に先行作成されている前提で、存在しない場合
// （紐付けの期間外など）はCOMPLETION_NOT_FOUNDエラーを返し、書き込みは行わない。
// 他ユーザーの紐付けはATTACHMENT_NOT_FOUNDとして扱う。
func (s *Service) SetCompletion(ctx context.Context, userID, attachmentID string, date time.Time, completed bool) (*model.UserRoutineCompletion, error) {
	date = calendar.Normalize(date)

	attachment, err := s.userRoutineRepo.FindByID(ctx, attachmentID)
	if err != nil {
		return nil, fmt.Errorf("ルーチン紐付けの取得に失敗しました: %w", err)
	}
	if attachment == nil || attachment.UserID != userID {
		return nil, model.NewAttachmentNotFoundError(attachmentID)
	}

	row, err := s.completionRepo.FindByAttachmentAndDate(ctx, attachmentID, date)
	if err != nil {
		return nil, fmt.Errorf("完了レコードの取得に失敗しました: %w", err)
	}
	if row == nil {
		return nil, model.NewCompletionNotFoundError()
	}

	if err := s.completionRepo.UpdateCompleted(ctx, row.ID, completed); err != nil {
		return nil, fmt.Errorf("完了状態の更新に失敗しました: %w", err)
	}
	row.Completed = completed

	if s.collector != nil {
		s.collector.RecordCompletionToggle()
	}

	return row, nil
}
