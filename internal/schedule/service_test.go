package schedule

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/calen/internal/model"
	"github.com/hitoshi/calen/internal/repository"
	"github.com/hitoshi/calen/internal/security"
)

// --- モック ---

type mockScheduleRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.PersonalSchedule, error)

	created *model.PersonalSchedule
	updated *model.PersonalSchedule
	deleted string
}

func (m *mockScheduleRepo) Create(ctx context.Context, schedule *model.PersonalSchedule) error {
	m.created = schedule
	return nil
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id string) (*model.PersonalSchedule, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockScheduleRepo) ListByDate(ctx context.Context, userID string, date time.Time) ([]*model.PersonalSchedule, error) {
	return nil, nil
}

func (m *mockScheduleRepo) Update(ctx context.Context, schedule *model.PersonalSchedule) error {
	m.updated = schedule
	return nil
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

func (m *mockScheduleRepo) CountByDateRange(ctx context.Context, userID string, from, to time.Time) ([]repository.DailyCount, error) {
	return nil, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(repo *mockScheduleRepo) *Service {
	return NewService(repo, security.NewContentSanitizer())
}

func assertAPIErrorCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError が返るべき: %v", err)
	}
	if apiErr.Code != wantCode {
		t.Errorf("Code = %s, want %s", apiErr.Code, wantCode)
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// --- Create ---

func TestCreate_Success(t *testing.T) {
	repo := &mockScheduleRepo{}
	svc := newTestService(repo)

	sch, err := svc.Create(context.Background(), "user-1", day(2024, 8, 15), "歯医者", "14時に予約")
	if err != nil {
		t.Fatalf("Create がエラーを返した: %v", err)
	}

	if repo.created == nil {
		t.Fatal("Create が呼び出されなかった")
	}
	if sch.Title != "歯医者" || sch.Description != "14時に予約" {
		t.Errorf("sch = %+v", sch)
	}
	if sch.Completed {
		t.Error("新規予定は completed=false で作成されるべき")
	}
	if sch.UserID != "user-1" {
		t.Errorf("UserID = %s, want user-1", sch.UserID)
	}
	if !sch.Date.Equal(day(2024, 8, 15)) {
		t.Errorf("Date = %v, want 2024-08-15", sch.Date)
	}
}

func TestCreate_EmptyTitle(t *testing.T) {
	repo := &mockScheduleRepo{}
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), "user-1", day(2024, 8, 15), "  ", "")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidRequest)

	if repo.created != nil {
		t.Error("バリデーション失敗時に書き込みが発生してはならない")
	}
}

func TestCreate_SanitizesTitleAndDescription(t *testing.T) {
	repo := &mockScheduleRepo{}
	svc := newTestService(repo)

	sch, err := svc.Create(context.Background(), "user-1", day(2024, 8, 15),
		`<img src=x onerror=alert(1)>打ち合わせ`,
		`<p>資料を<script>alert(1)</script>準備する</p>`,
	)
	if err != nil {
		t.Fatalf("Create がエラーを返した: %v", err)
	}

	if strings.Contains(sch.Title, "<img") {
		t.Errorf("タイトルにimgタグが残っている: %q", sch.Title)
	}
	if strings.Contains(sch.Description, "<script>") {
		t.Errorf("説明にscriptタグが残っている: %q", sch.Description)
	}
	// 許可タグは説明に残る
	if !strings.Contains(sch.Description, "<p>") {
		t.Errorf("許可タグpが除去されている: %q", sch.Description)
	}
}

// --- Update ---

func TestUpdate_PartialFields(t *testing.T) {
	repo := &mockScheduleRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.PersonalSchedule, error) {
			return &model.PersonalSchedule{
				ID: id, UserID: "user-1",
				Title: "歯医者", Description: "14時に予約", Completed: false,
			}, nil
		},
	}
	svc := newTestService(repo)

	// completedのみ更新。他フィールドは維持される
	sch, err := svc.Update(context.Background(), "user-1", "s1", UpdateInput{
		Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Update がエラーを返した: %v", err)
	}

	if !sch.Completed {
		t.Error("Completed が更新されていない")
	}
	if sch.Title != "歯医者" || sch.Description != "14時に予約" {
		t.Errorf("未指定フィールドが変更された: %+v", sch)
	}
	if repo.updated == nil {
		t.Fatal("Update が呼び出されなかった")
	}
}

func TestUpdate_TitleBecomesEmpty(t *testing.T) {
	repo := &mockScheduleRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.PersonalSchedule, error) {
			return &model.PersonalSchedule{ID: id, UserID: "user-1", Title: "歯医者"}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), "user-1", "s1", UpdateInput{
		Title: strPtr("<b></b>"),
	})
	assertAPIErrorCode(t, err, model.ErrCodeInvalidRequest)

	if repo.updated != nil {
		t.Error("バリデーション失敗時に書き込みが発生してはならない")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &mockScheduleRepo{}
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), "user-1", "missing", UpdateInput{Completed: boolPtr(true)})
	assertAPIErrorCode(t, err, model.ErrCodeScheduleNotFound)
}

func TestUpdate_OtherUsersSchedule(t *testing.T) {
	// 他ユーザーの予定は存在を漏らさずSCHEDULE_NOT_FOUNDとする
	repo := &mockScheduleRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.PersonalSchedule, error) {
			return &model.PersonalSchedule{ID: id, UserID: "someone-else"}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), "user-1", "s1", UpdateInput{Completed: boolPtr(true)})
	assertAPIErrorCode(t, err, model.ErrCodeScheduleNotFound)
}

// --- Delete ---

func TestDelete_Success(t *testing.T) {
	repo := &mockScheduleRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.PersonalSchedule, error) {
			return &model.PersonalSchedule{ID: id, UserID: "user-1"}, nil
		},
	}
	svc := newTestService(repo)

	if err := svc.Delete(context.Background(), "user-1", "s1"); err != nil {
		t.Fatalf("Delete がエラーを返した: %v", err)
	}
	if repo.deleted != "s1" {
		t.Errorf("deleted = %q, want s1", repo.deleted)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockScheduleRepo{}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), "user-1", "missing")
	assertAPIErrorCode(t, err, model.ErrCodeScheduleNotFound)

	if repo.deleted != "" {
		t.Error("未検出時に削除が発生してはならない")
	}
}
