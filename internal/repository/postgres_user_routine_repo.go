package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/calen/internal/model"
)

// PostgresUserRoutineRepo はPostgreSQLを使用したルーチン紐付けリポジトリ。
type PostgresUserRoutineRepo struct {
	db *sql.DB
}

// NewPostgresUserRoutineRepo はPostgresUserRoutineRepoを生成する。
func NewPostgresUserRoutineRepo(db *sql.DB) *PostgresUserRoutineRepo {
	return &PostgresUserRoutineRepo{db: db}
}

// FindByID は指定IDの紐付けを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRoutineRepo) FindByID(ctx context.Context, id string) (*model.UserRoutine, error) {
	ur := &model.UserRoutine{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, routine_id, start_date, end_date, created_at
		 FROM user_routines WHERE id = $1`,
		id,
	).Scan(&ur.ID, &ur.UserID, &ur.RoutineID, &ur.StartDate, &ur.EndDate, &ur.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ルーチン紐付けの取得に失敗しました: %w", err)
	}

	return ur, nil
}

// FindOverlapping は同一(user, routine)で期間が[start, end]と重複する紐付けを
// 1件返す。存在しない場合はnilを返す。
// 区間の重複判定: 既存.start <= 新.end AND 新.start <= 既存.end
func (r *PostgresUserRoutineRepo) FindOverlapping(ctx context.Context, userID, routineID string, start, end time.Time) (*model.UserRoutine, error) {
	ur := &model.UserRoutine{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, routine_id, start_date, end_date, created_at
		 FROM user_routines
		 WHERE user_id = $1 AND routine_id = $2
		   AND start_date <= $4 AND end_date >= $3
		 LIMIT 1`,
		userID, routineID, start, end,
	).Scan(&ur.ID, &ur.UserID, &ur.RoutineID, &ur.StartDate, &ur.EndDate, &ur.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("重複する紐付けの検索に失敗しました: %w", err)
	}

	return ur, nil
}

// CreateWithCompletions は紐付けと区間内全日分の完了レコードを
// 同一トランザクションで作成する。途中で失敗した場合は全てロールバックされる。
func (r *PostgresUserRoutineRepo) CreateWithCompletions(ctx context.Context, attachment *model.UserRoutine, completions []*model.UserRoutineCompletion) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_routines (id, user_id, routine_id, start_date, end_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		attachment.ID, attachment.UserID, attachment.RoutineID,
		attachment.StartDate, attachment.EndDate, attachment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ルーチン紐付けの作成に失敗しました: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO user_routine_completions (id, user_id, user_routine_id, date, completed, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
	)
	if err != nil {
		return fmt.Errorf("完了レコード挿入の準備に失敗しました: %w", err)
	}
	defer stmt.Close()

	for _, c := range completions {
		if _, err := stmt.ExecContext(ctx, c.ID, c.UserID, c.UserRoutineID, c.Date, c.Completed, c.UpdatedAt); err != nil {
			return fmt.Errorf("完了レコードの作成に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

// ListActiveWithState は指定日に有効な紐付けをルーチン情報と
// その日の完了状態付きで返す。完了レコードが無い場合はcompleted=falseとなる。
func (r *PostgresUserRoutineRepo) ListActiveWithState(ctx context.Context, userID string, date time.Time) ([]RoutineWithState, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT
			ur.id, ur.user_id, ur.routine_id, ur.start_date, ur.end_date, ur.created_at,
			rt.name, rt.description,
			COALESCE(c.completed, false)
		 FROM user_routines ur
		 JOIN routines rt ON rt.id = ur.routine_id
		 LEFT JOIN user_routine_completions c
		   ON c.user_routine_id = ur.id AND c.date = $2
		 WHERE ur.user_id = $1 AND ur.start_date <= $2 AND ur.end_date >= $2
		 ORDER BY ur.created_at ASC`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("有効なルーチン一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []RoutineWithState
	for rows.Next() {
		var info RoutineWithState
		if err := rows.Scan(
			&info.ID, &info.UserID, &info.RoutineID, &info.StartDate, &info.EndDate, &info.CreatedAt,
			&info.RoutineName, &info.RoutineDescription,
			&info.Completed,
		); err != nil {
			return nil, fmt.Errorf("ルーチン行（完了状態付き）の読み取りに失敗しました: %w", err)
		}
		results = append(results, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("有効なルーチン一覧の走査に失敗しました: %w", err)
	}
	return results, nil
}

// compile-time interface check
var _ UserRoutineRepository = (*PostgresUserRoutineRepo)(nil)
