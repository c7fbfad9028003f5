// Package materialize は完了レコードの補完ジョブを提供する。
// 当日を期間に含む全ての紐付けルーチンについて、欠けている完了レコードを
// completed=false で作成する日次バッチ。紐付け作成時の先行作成が何らかの理由で
// 欠落した場合の自己修復として機能する。
package materialize

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/calen/internal/calendar"
	"github.com/hitoshi/calen/internal/metrics"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// MaterializeJob は当日分の完了レコードを補完するジョブ。
// 日次実行のバッチジョブとして設計されており、ON CONFLICT DO NOTHINGにより
// 冪等な挿入処理を保証する。既存レコードのcompletedは変更しない。
type MaterializeJob struct {
	db        Executor
	logger    *slog.Logger
	collector metrics.MetricsCollector

	// now は対象日の決定に使う現在時刻の取得関数。テストで差し替える。
	now func() time.Time
}

// NewMaterializeJob は新しいMaterializeJobを生成する。
// collectorはnilを許容する（メトリクスを記録しない）。
func NewMaterializeJob(db Executor, logger *slog.Logger, collector metrics.MetricsCollector) *MaterializeJob {
	return &MaterializeJob{
		db:        db,
		logger:    logger,
		collector: collector,
		now:       time.Now,
	}
}

// Run は当日を期間に含む紐付けルーチンの完了レコードを補完する。
// 既に存在する(user_routine_id, date)はON CONFLICTで無視される。
// 冪等: 補完対象がない場合でもエラーにならない。
func (j *MaterializeJob) Run(ctx context.Context) error {
	start := time.Now()
	today := calendar.Normalize(j.now()).Format(calendar.DateLayout)

	query := `
		INSERT INTO user_routine_completions (id, user_id, user_routine_id, date, completed, updated_at)
		SELECT gen_random_uuid(), ur.user_id, ur.id, $1::date, false, now()
		FROM user_routines ur
		WHERE ur.start_date <= $1::date AND ur.end_date >= $1::date
		ON CONFLICT (user_routine_id, date) DO NOTHING`
	result, err := j.db.ExecContext(ctx, query, today)
	if err != nil {
		j.logger.Error("完了レコード補完ジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.String("date", today),
		)
		return fmt.Errorf("完了レコード補完の実行に失敗: %w", err)
	}

	insertedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("補完件数の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("補完件数の取得に失敗: %w", err)
	}

	if j.collector != nil {
		j.collector.RecordRowsMaterialized(insertedCount)
	}

	duration := time.Since(start)
	j.logger.Info("完了レコード補完ジョブが完了しました",
		slog.Int64("inserted_count", insertedCount),
		slog.String("date", today),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
