// Package schedule は個人予定のドメインロジックを提供する。
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/calen/internal/calendar"
	"github.com/hitoshi/calen/internal/model"
	"github.com/hitoshi/calen/internal/repository"
	"github.com/hitoshi/calen/internal/security"
)

// UpdateInput は個人予定の部分更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Service は個人予定のサービス層。
// 作成・部分更新・削除を提供する。所有者以外の予定はSCHEDULE_NOT_FOUNDとして扱う。
type Service struct {
	scheduleRepo repository.ScheduleRepository
	sanitizer    security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(scheduleRepo repository.ScheduleRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		sanitizer:    sanitizer,
	}
}

// Create は指定日の個人予定を作成する。
// タイトルは必須で、タイトル・説明はサニタイズして保存する。
// completedは常にfalseで作成される。
func (s *Service) Create(ctx context.Context, userID string, date time.Time, title, description string) (*model.PersonalSchedule, error) {
	title = strings.TrimSpace(s.sanitizer.SanitizeText(title))
	if title == "" {
		return nil, model.NewInvalidRequestError("タイトルは必須です")
	}
	description = s.sanitizer.SanitizeDescription(description)

	now := time.Now()
	sch := &model.PersonalSchedule{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Date:        calendar.Normalize(date),
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.scheduleRepo.Create(ctx, sch); err != nil {
		return nil, fmt.Errorf("個人予定の作成に失敗しました: %w", err)
	}

	return sch, nil
}

// Update は個人予定を部分更新する。inputのnilフィールドは変更しない。
// 日付の変更はできない。
func (s *Service) Update(ctx context.Context, userID, scheduleID string, input UpdateInput) (*model.PersonalSchedule, error) {
	sch, err := s.findOwned(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(s.sanitizer.SanitizeText(*input.Title))
		if title == "" {
			return nil, model.NewInvalidRequestError("タイトルは必須です")
		}
		sch.Title = title
	}
	if input.Description != nil {
		sch.Description = s.sanitizer.SanitizeDescription(*input.Description)
	}
	if input.Completed != nil {
		sch.Completed = *input.Completed
	}
	sch.UpdatedAt = time.Now()

	if err := s.scheduleRepo.Update(ctx, sch); err != nil {
		return nil, fmt.Errorf("個人予定の更新に失敗しました: %w", err)
	}

	return sch, nil
}

// Delete は個人予定を削除する。
func (s *Service) Delete(ctx context.Context, userID, scheduleID string) error {
	if _, err := s.findOwned(ctx, userID, scheduleID); err != nil {
		return err
	}

	if err := s.scheduleRepo.Delete(ctx, scheduleID); err != nil {
		return fmt.Errorf("個人予定の削除に失敗しました: %w", err)
	}

	return nil
}

// findOwned は予定を取得し所有者を検証する。
// 存在しない場合も他ユーザーの予定の場合も同じSCHEDULE_NOT_FOUNDを返し、
// 予定の存在を外部に漏らさない。
func (s *Service) findOwned(ctx context.Context, userID, scheduleID string) (*model.PersonalSchedule, error) {
	sch, err := s.scheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("個人予定の取得に失敗しました: %w", err)
	}
	if sch == nil || sch.UserID != userID {
		return nil, model.NewScheduleNotFoundError(scheduleID)
	}
	return sch, nil
}
