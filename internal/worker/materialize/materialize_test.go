package materialize

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type fakeResult struct {
	rowsAffected int64
}

func (r *fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r *fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

// Executor インターフェースに対するモック実装
type mockExecutor struct {
	execCalled bool
	query      string
	args       []interface{}
	result     sql.Result
	err        error
}

func (m *mockExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	m.execCalled = true
	m.query = query
	m.args = args
	return m.result, m.err
}

// mockCollector はRecordRowsMaterializedの呼び出しを記録する。
type mockCollector struct {
	materialized int64
}

func (m *mockCollector) RecordHTTPStatus(statusCode int)                 {}
func (m *mockCollector) RecordAggregationLatency(duration time.Duration) {}
func (m *mockCollector) RecordCompletionToggle()                         {}
func (m *mockCollector) RecordAttachmentCreated()                        {}
func (m *mockCollector) RecordRowsMaterialized(count int64)              { m.materialized += count }

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func newTestJob(mock *mockExecutor, collector *mockCollector, buf *bytes.Buffer) *MaterializeJob {
	job := NewMaterializeJob(mock, newTestLogger(buf), nil)
	if collector != nil {
		job = NewMaterializeJob(mock, newTestLogger(buf), collector)
	}
	// 対象日を2024-08-15に固定
	job.now = func() time.Time {
		return time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC)
	}
	return job
}

func TestMaterializeJob_Run_ExecutesInsertQuery(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockExecutor{result: &fakeResult{rowsAffected: 3}}
	job := newTestJob(mock, nil, &buf)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() がエラーを返した: %v", err)
	}

	if !mock.execCalled {
		t.Fatal("ExecContext が呼び出されなかった")
	}

	if !strings.Contains(mock.query, "INSERT INTO user_routine_completions") {
		t.Errorf("クエリに 'INSERT INTO user_routine_completions' が含まれていない: %s", mock.query)
	}
	if !strings.Contains(mock.query, "ON CONFLICT") {
		t.Errorf("クエリに 'ON CONFLICT' が含まれていない: %s", mock.query)
	}
}

func TestMaterializeJob_Run_PassesTodayAsParameter(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockExecutor{result: &fakeResult{rowsAffected: 0}}
	job := newTestJob(mock, nil, &buf)

	_ = job.Run(context.Background())

	if len(mock.args) < 1 {
		t.Fatal("ExecContext に引数が渡されなかった")
	}
	argStr, ok := mock.args[0].(string)
	if !ok {
		t.Fatalf("第1引数が string ではない: %T", mock.args[0])
	}
	if argStr != "2024-08-15" {
		t.Errorf("日付引数 = %q, want %q", argStr, "2024-08-15")
	}
}

func TestMaterializeJob_Run_RecordsMetrics(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockExecutor{result: &fakeResult{rowsAffected: 7}}
	collector := &mockCollector{}
	job := newTestJob(mock, collector, &buf)

	_ = job.Run(context.Background())

	if collector.materialized != 7 {
		t.Errorf("RecordRowsMaterialized = %d, want 7", collector.materialized)
	}
}

func TestMaterializeJob_Run_Idempotent_ZeroRows(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockExecutor{result: &fakeResult{rowsAffected: 0}}
	job := newTestJob(mock, nil, &buf)

	// 補完対象がない場合でもエラーにならない
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("1回目の Run() がエラーを返した: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("2回目の Run() がエラーを返した: %v", err)
	}
}

func TestMaterializeJob_Run_ReturnsErrorOnDBFailure(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockExecutor{err: sql.ErrConnDone}
	job := newTestJob(mock, nil, &buf)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("DBエラー時に Run() は nil でないエラーを返すべき")
	}

	if !strings.Contains(buf.String(), "ERROR") {
		t.Errorf("エラー時にERRORレベルのログが記録されていない。ログ出力: %s", buf.String())
	}
}

func TestMaterializeJob_Run_LogsInsertedCount(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockExecutor{result: &fakeResult{rowsAffected: 42}}
	job := newTestJob(mock, nil, &buf)

	_ = job.Run(context.Background())

	if !strings.Contains(buf.String(), `"inserted_count":42`) {
		t.Errorf("ログに inserted_count=42 が記録されていない。ログ出力: %s", buf.String())
	}
}
