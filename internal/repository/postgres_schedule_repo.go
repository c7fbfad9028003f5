package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/calen/internal/model"
)

// PostgresScheduleRepo はPostgreSQLを使用した個人予定リポジトリ。
type PostgresScheduleRepo struct {
	db *sql.DB
}

// NewPostgresScheduleRepo はPostgresScheduleRepoを生成する。
func NewPostgresScheduleRepo(db *sql.DB) *PostgresScheduleRepo {
	return &PostgresScheduleRepo{db: db}
}

// Create は個人予定を作成する。
func (r *PostgresScheduleRepo) Create(ctx context.Context, schedule *model.PersonalSchedule) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO personal_schedules (id, user_id, title, description, date, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schedule.ID, schedule.UserID, schedule.Title, schedule.Description,
		schedule.Date, schedule.Completed, schedule.CreatedAt, schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("個人予定の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの個人予定を取得する。見つからない場合はnilを返す。
func (r *PostgresScheduleRepo) FindByID(ctx context.Context, id string) (*model.PersonalSchedule, error) {
	s := &model.PersonalSchedule{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, date, completed, created_at, updated_at
		 FROM personal_schedules WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.Date, &s.Completed, &s.CreatedAt, &s.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("個人予定の取得に失敗しました: %w", err)
	}

	return s, nil
}

// ListByDate はユーザーの指定日の個人予定を作成順で返す。
func (r *PostgresScheduleRepo) ListByDate(ctx context.Context, userID string, date time.Time) ([]*model.PersonalSchedule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, date, completed, created_at, updated_at
		 FROM personal_schedules
		 WHERE user_id = $1 AND date = $2
		 ORDER BY created_at ASC`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("個人予定一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var schedules []*model.PersonalSchedule
	for rows.Next() {
		s := &model.PersonalSchedule{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.Date, &s.Completed, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("個人予定行の読み取りに失敗しました: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("個人予定一覧の走査に失敗しました: %w", err)
	}
	return schedules, nil
}

// Update は個人予定のtitle、description、completedを更新する。
func (r *PostgresScheduleRepo) Update(ctx context.Context, schedule *model.PersonalSchedule) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE personal_schedules
		 SET title = $2, description = $3, completed = $4, updated_at = NOW()
		 WHERE id = $1`,
		schedule.ID, schedule.Title, schedule.Description, schedule.Completed,
	)
	if err != nil {
		return fmt.Errorf("個人予定の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("個人予定が見つかりません: %s", schedule.ID)
	}
	return nil
}

// Delete は指定IDの個人予定を削除する。
func (r *PostgresScheduleRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM personal_schedules WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("個人予定の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("個人予定が見つかりません: %s", id)
	}
	return nil
}

// CountByDateRange は[from, to]の範囲で日付ごとの総数・完了数を返す。
// レコードが存在しない日付は結果に含まれない。
func (r *PostgresScheduleRepo) CountByDateRange(ctx context.Context, userID string, from, to time.Time) ([]DailyCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, COUNT(*), COUNT(*) FILTER (WHERE completed)
		 FROM personal_schedules
		 WHERE user_id = $1 AND date BETWEEN $2 AND $3
		 GROUP BY date
		 ORDER BY date ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("個人予定の日別集計に失敗しました: %w", err)
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
var _ ScheduleRepository = (*PostgresScheduleRepo)(nil)
