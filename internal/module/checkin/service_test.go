package checkin

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"cohort-checkin/internal/global/crawler"
	"cohort-checkin/internal/global/response"
	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"
	"cohort-checkin/internal/repository/repotest"
	"cohort-checkin/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shanghai = time.FixedZone("CST", 8*3600)

// 2025-01-10 23:30 北京时间，UTC 仍是 1 月 10 日 15:30
var now = time.Date(2025, 1, 10, 23, 30, 0, 0, shanghai)

type fakePosts struct {
	info  *crawler.PostInfo
	err   error
	calls int
}

func (f *fakePosts) FetchPost(_ context.Context, rawURL string) (*crawler.PostInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	info := *f.info
	info.URL = rawURL
	return &info, nil
}

func newTestService(t *testing.T, posts PostFetcher) (*Service, *repotest.Store) {
	t.Helper()
	repo, store := repotest.New()
	store.AddUser(model.User{StudentID: "2024001"})
	start := model.NewDate(2025, 1, 1)
	schedule := model.NewSchedule("2024001", start, "admin", model.ScheduleAdminSet, model.DefaultPolicy)
	require.NoError(t, repo.Schedules.Create(context.Background(), &schedule))
	return &Service{
		repo:   repo,
		now:    func() time.Time { return now },
		policy: model.DefaultPolicy,
		posts:  posts,
	}, store
}

const link = "https://www.xiaohongshu.com/explore/abc"

func TestSubmitDefaultsToToday(t *testing.T) {
	posts := &fakePosts{info: &crawler.PostInfo{Title: "第十天打卡", Source: crawler.SourceMCP}}
	s, _ := newTestService(t, posts)

	record, err := s.Submit(context.Background(), "2024001", SubmitRequest{URL: link})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", record.CheckinDate.String())
	assert.Equal(t, "第十天打卡", record.PostTitle)
	assert.Equal(t, model.CheckinPending, record.Status)
	assert.Equal(t, 1, posts.calls)
}

func TestSubmitUpsertResetsReview(t *testing.T) {
	s, store := newTestService(t, nil)
	ctx := context.Background()

	first, err := s.Submit(ctx, "2024001", SubmitRequest{URL: link, Date: "2025-01-05"})
	require.NoError(t, err)
	_, err = s.AdminReview(ctx, "admin", ReviewRequest{ID: first.ID, Status: model.CheckinInvalid, Note: "链接无效"})
	require.NoError(t, err)

	second, err := s.Submit(ctx, "2024001", SubmitRequest{URL: link + "?v=2", Date: "2025-01-05"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, model.CheckinPending, second.Status)
	assert.Empty(t, second.ReviewNote)
	assert.Nil(t, second.ReviewedAt)
	assert.Len(t, store.Checkins(), 1)
}

func TestSubmitRejections(t *testing.T) {
	s, store := newTestService(t, nil)
	store.AddUser(model.User{StudentID: "2024002"})
	ctx := context.Background()

	_, err := s.Submit(ctx, "2024001", SubmitRequest{URL: "javascript:alert(1)"})
	assert.ErrorIs(t, err, crawler.ErrInvalidURL)
	_, err = s.Submit(ctx, "2024001", SubmitRequest{URL: link, Date: "2025-01-11"})
	assert.ErrorIs(t, err, ErrFutureDate)
	_, err = s.Submit(ctx, "2024001", SubmitRequest{URL: link, Date: "2024-12-31"})
	assert.ErrorIs(t, err, ErrOutsideWindow)
	_, err = s.Submit(ctx, "2024001", SubmitRequest{URL: link, Date: "2025-13-01"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = s.Submit(ctx, "2024002", SubmitRequest{URL: link})
	assert.ErrorIs(t, err, ErrNoSchedule)
	assert.Empty(t, store.Checkins())
}

func TestSubmitIgnoresCrawlerFailure(t *testing.T) {
	s, _ := newTestService(t, &fakePosts{err: errors.New("timeout")})
	record, err := s.Submit(context.Background(), "2024001", SubmitRequest{URL: link})
	require.NoError(t, err)
	assert.Empty(t, record.PostTitle)

	s, _ = newTestService(t, &fakePosts{info: &crawler.PostInfo{Title: "小红书笔记", Fallback: true}})
	record, err = s.Submit(context.Background(), "2024001", SubmitRequest{URL: link})
	require.NoError(t, err)
	assert.Empty(t, record.PostTitle)
}

func TestProgress(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()
	for d := 1; d <= 10; d++ {
		if d == 4 {
			continue
		}
		rec, err := s.Submit(ctx, "2024001", SubmitRequest{URL: link, Date: model.NewDate(2025, 1, d).String()})
		require.NoError(t, err)
		_, err = s.AdminReview(ctx, "admin", ReviewRequest{ID: rec.ID, Status: model.CheckinValid})
		require.NoError(t, err)
	}

	view, err := s.Progress(ctx, "2024001")
	require.NoError(t, err)
	assert.Equal(t, "2025-04-03", view.EndDate)
	assert.Equal(t, 93, view.TotalDays)
	assert.Equal(t, 9, view.CheckedDays)
	assert.Equal(t, 6, view.CurrentStreak)
	assert.Equal(t, 6, view.MaxStreak)
	assert.Equal(t, model.StatusActive, view.Status)
	assert.True(t, view.TodayChecked)
	assert.Equal(t, 81, view.DaysNeeded)
}

func TestProgressCountsOnlyValid(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()

	a, err := s.Submit(ctx, "2024001", SubmitRequest{URL: link, Date: "2025-01-08"})
	require.NoError(t, err)
	_, err = s.Submit(ctx, "2024001", SubmitRequest{URL: link, Date: "2025-01-09"})
	require.NoError(t, err)
	b, err := s.Submit(ctx, "2024001", SubmitRequest{URL: link, Date: "2025-01-10"})
	require.NoError(t, err)
	_, err = s.AdminReview(ctx, "admin", ReviewRequest{ID: a.ID, Status: model.CheckinValid})
	require.NoError(t, err)
	_, err = s.AdminReview(ctx, "admin", ReviewRequest{ID: b.ID, Status: model.CheckinInvalid})
	require.NoError(t, err)

	view, err := s.Progress(ctx, "2024001")
	require.NoError(t, err)
	assert.Equal(t, 1, view.CheckedDays)
	assert.False(t, view.TodayChecked)

	s.countPending = true
	view, err = s.Progress(ctx, "2024001")
	require.NoError(t, err)
	assert.Equal(t, 2, view.CheckedDays)
}

func TestUnreviewedWindowDoesNotQualify(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()
	start := model.NewDate(2025, 1, 1)
	for i := 0; i < 90; i++ {
		rec := &model.CheckinRecord{StudentID: "2024001", CheckinDate: start.AddDays(i), XiaohongshuURL: link}
		require.NoError(t, s.repo.Checkins.Upsert(ctx, rec))
	}
	s.now = func() time.Time { return time.Date(2025, 5, 1, 10, 0, 0, 0, shanghai) }

	view, err := s.Progress(ctx, "2024001")
	require.NoError(t, err)
	assert.Equal(t, 0, view.CheckedDays)
	assert.Equal(t, model.StatusUnqualified, view.Status)
}

func TestAdminReview(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()
	rec, err := s.Submit(ctx, "2024001", SubmitRequest{URL: link})
	require.NoError(t, err)

	_, err = s.AdminReview(ctx, "admin", ReviewRequest{ID: rec.ID, Status: model.CheckinPending})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = s.AdminReview(ctx, "admin", ReviewRequest{ID: 999, Status: model.CheckinValid})
	assert.ErrorIs(t, err, ErrRecordNotFound)

	reviewed, err := s.AdminReview(ctx, "admin", ReviewRequest{ID: rec.ID, Status: model.CheckinValid, Note: "ok"})
	require.NoError(t, err)
	assert.Equal(t, model.CheckinValid, reviewed.Status)
	assert.Equal(t, "admin", reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)

	list, total, err := s.AdminListPending(ctx, "", repository.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestListMine(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()
	for _, d := range []string{"2025-01-02", "2025-01-05", "2025-01-08"} {
		_, err := s.Submit(ctx, "2024001", SubmitRequest{URL: link, Date: d})
		require.NoError(t, err)
	}

	list, total, err := s.ListMine(ctx, "2024001", ListQuery{From: "2025-01-03", To: "2025-01-08"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "2025-01-08", list[0].CheckinDate.String())

	_, _, err = s.ListMine(ctx, "2024001", ListQuery{From: "bad"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestAdminStudentProgress(t *testing.T) {
	s, store := newTestService(t, nil)
	store.AddUser(model.User{StudentID: "2024002"})

	_, err := s.AdminStudentProgress(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrStudentNotFound)
	_, err = s.AdminStudentProgress(context.Background(), "2024002")
	assert.ErrorIs(t, err, ErrNoSchedule)
	view, err := s.AdminStudentProgress(context.Background(), "2024001")
	require.NoError(t, err)
	assert.Equal(t, "2024001", view.StudentID)
}

func TestSubmitHandler(t *testing.T) {
	svc, _ = newTestService(t, nil)

	resp := test.DoRequest(t, Submit, test.Request{Body: SubmitRequest{URL: link}, Payload: test.Student("2024001")})
	test.NoError(t, resp)
	record := test.DecodeData[model.CheckinRecord](t, resp)
	assert.Equal(t, "2025-01-10", record.CheckinDate.String())

	resp = test.DoRequest(t, Submit, test.Request{Body: SubmitRequest{URL: link, Date: "2025-02-01"}, Payload: test.Student("2024001")})
	test.ErrorEqual(t, response.ErrInvalidDate, resp)

	resp = test.DoRequest(t, Submit, test.Request{Body: SubmitRequest{URL: "ftp://x"}, Payload: test.Student("2024001")})
	test.ErrorEqual(t, response.ErrInvalidRequest, resp)
}

func TestProgressHandler(t *testing.T) {
	var store *repotest.Store
	svc, store = newTestService(t, nil)
	store.AddUser(model.User{StudentID: "2024002"})

	resp := test.DoRequest(t, GetProgress, test.Request{Method: http.MethodGet, Payload: test.Student("2024001")})
	test.NoError(t, resp)
	data := test.DecodeData[map[string]any](t, resp)
	assert.Equal(t, model.StatusActive, data["status"])
	assert.EqualValues(t, 93, data["total_days"])

	resp = test.DoRequest(t, AdminStudentProgress, test.Request{
		Method: http.MethodGet,
		Params: gin.Params{{Key: "student_id", Value: "2024002"}},
	})
	test.ErrorEqual(t, response.ErrNoSchedule, resp)
}
