package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/calen/internal/model"
)

// PostgresCompletionRepo はPostgreSQLを使用した完了レコードリポジトリ。
type PostgresCompletionRepo struct {
	db *sql.DB
}

// NewPostgresCompletionRepo はPostgresCompletionRepoを生成する。
func NewPostgresCompletionRepo(db *sql.DB) *PostgresCompletionRepo {
	return &PostgresCompletionRepo{db: db}
}

// FindByAttachmentAndDate は紐付けIDと日付で完了レコードを取得する。
// 見つからない場合はnilを返す。
func (r *PostgresCompletionRepo) FindByAttachmentAndDate(ctx context.Context, userRoutineID string, date time.Time) (*model.UserRoutineCompletion, error) {
	c := &model.UserRoutineCompletion{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, user_routine_id, date, completed, updated_at
		 FROM user_routine_completions
		 WHERE user_routine_id = $1 AND date = $2`,
		userRoutineID, date,
	).Scan(&c.ID, &c.UserID, &c.UserRoutineID, &c.Date, &c.Completed, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("完了レコードの取得に失敗しました: %w", err)
	}

	return c, nil
}

// UpdateCompleted は指定IDの完了レコードのcompletedを更新する。
func (r *PostgresCompletionRepo) UpdateCompleted(ctx context.Context, id string, completed bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_routine_completions SET completed = $2, updated_at = NOW() WHERE id = $1`,
		id, completed,
	)
	if err != nil {
		return fmt.Errorf("完了状態の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("完了レコードが見つかりません: %s", id)
	}
	return nil
}

// ListByDate はユーザーの指定日の完了レコードを全件返す。
func (r *PostgresCompletionRepo) ListByDate(ctx context.Context, userID string, date time.Time) ([]*model.UserRoutineCompletion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, user_routine_id, date, completed, updated_at
		 FROM user_routine_completions
		 WHERE user_id = $1 AND date = $2`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("完了レコード一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var completions []*model.UserRoutineCompletion
	for rows.Next() {
		c := &model.UserRoutineCompletion{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.UserRoutineID, &c.Date, &c.Completed, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("完了レコード行の読み取りに失敗しました: %w", err)
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("完了レコード一覧の走査に失敗しました: %w", err)
	}
	return completions, nil
}

// CountByDateRange は[from, to]の範囲で日付ごとの総数・完了数を返す。
// レコードが存在しない日付は結果に含まれない。
func (r *PostgresCompletionRepo) CountByDateRange(ctx context.Context, userID string, from, to time.Time) ([]DailyCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, COUNT(*), COUNT(*) FILTER (WHERE completed)
		 FROM user_routine_completions
		 WHERE user_id = $1 AND date BETWEEN $2 AND $3
		 GROUP BY date
		 ORDER BY date ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("完了レコードの日別集計に失敗しました: %w", err)
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Date, &dc.Total, &dc.Completed); err != nil {
			return nil, fmt.Errorf("日別集計行の読み取りに失敗しました: %w", err)
		}
		counts = append(counts, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("日別集計の走査に失敗しました: %w", err)
	}
	return counts, nil
}

// compile-time interface check
var _ CompletionRepository = (*PostgresCompletionRepo)(nil)
