package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/calen/internal/model"
)

// PostgresMonthlyTitleRepo はPostgreSQLを使用した月タイトルリポジトリ。
type PostgresMonthlyTitleRepo struct {
	db *sql.DB
}

// NewPostgresMonthlyTitleRepo はPostgresMonthlyTitleRepoを生成する。
func NewPostgresMonthlyTitleRepo(db *sql.DB) *PostgresMonthlyTitleRepo {
	return &PostgresMonthlyTitleRepo{db: db}
}

// Upsert は(user_id, month)をキーに月タイトルを冪等に作成・更新する。
func (r *PostgresMonthlyTitleRepo) Upsert(ctx context.Context, title *model.MonthlyTitle) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO monthly_titles (id, user_id, month, title, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, month)
		 DO UPDATE SET title = EXCLUDED.title, updated_at = EXCLUDED.updated_at`,
		title.ID, title.UserID, title.Month, title.Title, title.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("月タイトルの保存に失敗しました: %w", err)
	}
	return nil
}

// FindByMonth はユーザーと月初日で月タイトルを取得する。見つからない場合はnilを返す。
func (r *PostgresMonthlyTitleRepo) FindByMonth(ctx context.Context, userID string, month time.Time) (*model.MonthlyTitle, error) {
	t := &model.MonthlyTitle{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, month, title, updated_at
		 FROM monthly_titles WHERE user_id = $1 AND month = $2`,
		userID, month,
	).Scan(&t.ID, &t.UserID, &t.Month, &t.Title, &t.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("月タイトルの取得に失敗しました: %w", err)
	}

	return t, nil
}

// compile-time interface check
var _ MonthlyTitleRepository = (*PostgresMonthlyTitleRepo)(nil)
