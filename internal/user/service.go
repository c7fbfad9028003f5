// Package user はユーザーアカウントのドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/calen/internal/model"
	"github.com/hitoshi/calen/internal/repository"
)

// Service はユーザーアカウントのサービス層。
// アカウント作成・認証は外部の認証コラボレータが担うため、本サービスは
// 退会（本人データの全削除）のみを提供する。
type Service struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, logger *slog.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Withdraw はユーザーを退会させる。
// ユーザー本体の削除に伴い、紐付けルーチン・完了レコード・個人予定・月タイトルは
// CASCADE削除される。既に存在しないユーザーはUSER_NOT_FOUNDを返す。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return model.NewUserNotFoundError()
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	s.logger.Info("user withdrawn", "user_id", userID)
	return nil
}
