package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/calen/internal/model"
)

// PostgresRoutineRepo はPostgreSQLを使用したルーチンカタログリポジトリ。
type PostgresRoutineRepo struct {
	db *sql.DB
}

// NewPostgresRoutineRepo はPostgresRoutineRepoを生成する。
func NewPostgresRoutineRepo(db *sql.DB) *PostgresRoutineRepo {
	return &PostgresRoutineRepo{db: db}
}

// FindByID は指定IDのルーチンを取得する。見つからない場合はnilを返す。
func (r *PostgresRoutineRepo) FindByID(ctx context.Context, id string) (*model.Routine, error) {
	routine := &model.Routine{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM routines WHERE id = $1`,
		id,
	).Scan(&routine.ID, &routine.Name, &routine.Description, &routine.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ルーチンの取得に失敗しました: %w", err)
	}

	return routine, nil
}

// List は全ルーチンを名前昇順で返す。
func (r *PostgresRoutineRepo) List(ctx context.Context) ([]*model.Routine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM routines ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ルーチン一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var routines []*model.Routine
	for rows.Next() {
		routine := &model.Routine{}
		if err := rows.Scan(&routine.ID, &routine.Name, &routine.Description, &routine.CreatedAt); err != nil {
			return nil, fmt.Errorf("ルーチン行の読み取りに失敗しました: %w", err)
		}
		routines = append(routines, routine)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ルーチン一覧の走査に失敗しました: %w", err)
	}
	return routines, nil
}

// compile-time interface check
var _ RoutineRepository = (*PostgresRoutineRepo)(nil)
