package assignment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cohort-checkin/internal/global/grader"
	"cohort-checkin/internal/global/jwt"
	"cohort-checkin/internal/global/response"
	"cohort-checkin/internal/global/storage"
	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"
	"cohort-checkin/internal/repository/repotest"
	"cohort-checkin/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

type fakeUploader struct {
	names []string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, filename, _ string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	f.names = append(f.names, filename)
	return "https://cdn.example.com/" + filename, nil
}

type fakeGrader struct {
	result *grader.Result
	err    error
	last   grader.Request
	calls  int
}

func (f *fakeGrader) Grade(_ context.Context, req grader.Request) (*grader.Result, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestService(g Grader, up Uploader) *Service {
	repo, _ := repotest.New()
	return &Service{repo: repo, now: func() time.Time { return now }, files: up, grader: g}
}

func createAssignment(t *testing.T, s *Service) *model.Assignment {
	t.Helper()
	a, err := s.CreateAssignment(context.Background(), "admin", AssignmentRequest{
		Title:       "第一周作业",
		Description: "发布一篇自我介绍笔记并截图",
		DueDate:     "2025-02-07",
	})
	require.NoError(t, err)
	return a
}

func TestAssignmentCRUD(t *testing.T) {
	s := newTestService(&fakeGrader{}, nil)
	ctx := context.Background()
	a := createAssignment(t, s)
	assert.Equal(t, "2025-02-07", a.DueDate.String())
	assert.True(t, a.IsActive)

	_, err := s.CreateAssignment(ctx, "admin", AssignmentRequest{Title: "x", Description: "y", DueDate: "2025-2-7"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	closed, empty := false, ""
	updated, err := s.UpdateAssignment(ctx, a.ID, AssignmentUpdate{IsActive: &closed, DueDate: &empty})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Nil(t, updated.DueDate)

	active, err := s.ListAssignments(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := s.ListAssignments(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.DeleteAssignment(ctx, a.ID))
	assert.ErrorIs(t, s.DeleteAssignment(ctx, a.ID), ErrAssignmentNotFound)
	_, err = s.UpdateAssignment(ctx, a.ID, AssignmentUpdate{IsActive: &closed})
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestSubmitPassed(t *testing.T) {
	g := &fakeGrader{result: &grader.Result{Status: model.SubmissionPassed, Feedback: "完成得很好", Model: "gpt-4o-mini"}}
	up := &fakeUploader{}
	s := newTestService(g, up)
	a := createAssignment(t, s)

	sub, err := s.Submit(context.Background(), "2024001", a.ID, "  我的自我介绍  ", []Attachment{
		{Filename: "shot.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")},
		{Filename: "notes.pdf", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")},
	})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionPassed, sub.Status)
	assert.Equal(t, "完成得很好", sub.Feedback)
	assert.Equal(t, "gpt-4o-mini", sub.GraderModel)
	require.NotNil(t, sub.GradedAt)
	assert.Len(t, sub.AttachmentURLs, 2)

	assert.Equal(t, "第一周作业", g.last.Title)
	assert.Equal(t, []string{"https://cdn.example.com/shot.png"}, g.last.AttachmentURLs)
	assert.Contains(t, g.last.Content, "我的自我介绍")
	assert.Contains(t, g.last.Content, "notes.pdf")

	mine, err := s.MySubmissions(context.Background(), "2024001")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, model.SubmissionPassed, mine[0].Status)
}

func TestSubmitGradingFailedThenRegrade(t *testing.T) {
	g := &fakeGrader{err: errors.Join(errors.New("primary: HTTP 500"), errors.New("fallback: timeout"))}
	s := newTestService(g, nil)
	a := createAssignment(t, s)
	ctx := context.Background()

	sub, err := s.Submit(ctx, "2024001", a.ID, "文本作业", nil)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionGradingFailed, sub.Status)
	assert.Contains(t, sub.Feedback, "fallback: timeout")
	assert.Nil(t, sub.GradedAt)

	g.err, g.result = nil, &grader.Result{Status: model.SubmissionFailed, Feedback: "缺少截图", Model: "backup"}
	regraded, err := s.Regrade(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionFailed, regraded.Status)
	assert.Equal(t, "backup", regraded.GraderModel)

	list, total, err := s.ListSubmissions(ctx, a.ID, repository.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, model.SubmissionFailed, list[0].Status)

	_, err = s.Regrade(ctx, 999)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestResubmitOverwrites(t *testing.T) {
	g := &fakeGrader{result: &grader.Result{Status: model.SubmissionFailed, Feedback: "太短"}}
	s := newTestService(g, nil)
	a := createAssignment(t, s)
	ctx := context.Background()

	first, err := s.Submit(ctx, "2024001", a.ID, "短", nil)
	require.NoError(t, err)
	g.result = &grader.Result{Status: model.SubmissionPassed, Feedback: "好"}
	second, err := s.Submit(ctx, "2024001", a.ID, "更长的内容", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, total, err := s.ListSubmissions(ctx, a.ID, repository.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestSubmitRejections(t *testing.T) {
	g := &fakeGrader{result: &grader.Result{Status: model.SubmissionPassed}}
	s := newTestService(g, nil)
	a := createAssignment(t, s)
	ctx := context.Background()

	_, err := s.Submit(ctx, "2024001", 999, "x", nil)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
	_, err = s.Submit(ctx, "2024001", a.ID, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptySubmission)
	_, err = s.Submit(ctx, "2024001", a.ID, "", []Attachment{{Filename: "a.png", Body: strings.NewReader("x")}})
	assert.ErrorIs(t, err, storage.ErrNotConfigured)
	_, err = s.Submit(ctx, "2024001", a.ID, "", []Attachment{{Filename: "a.exe", Body: strings.NewReader("x")}})
	assert.ErrorIs(t, err, ErrFileType)
	_, err = s.Submit(ctx, "2024001", a.ID, "", []Attachment{{Filename: "a.png", Size: maxAttachmentSize + 1}})
	assert.ErrorIs(t, err, ErrFileTooLarge)
	_, err = s.Submit(ctx, "2024001", a.ID, "", make([]Attachment, maxAttachments+1))
	assert.ErrorIs(t, err, ErrTooManyFiles)

	closed := false
	_, err = s.UpdateAssignment(ctx, a.ID, AssignmentUpdate{IsActive: &closed})
	require.NoError(t, err)
	_, err = s.Submit(ctx, "2024001", a.ID, "x", nil)
	assert.ErrorIs(t, err, ErrAssignmentClosed)
	assert.Zero(t, g.calls)
}

func TestSubmitHandlerMultipart(t *testing.T) {
	g := &fakeGrader{result: &grader.Result{Status: model.SubmissionPassed, Feedback: "ok", Model: "m"}}
	up := &fakeUploader{}
	svc = newTestService(g, up)
	a := createAssignment(t, svc)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("content", "见附件"))
	fw, err := mw.CreateFormFile("files", "proof.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/assignments/1/submit", &body)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Set(jwt.PayloadKey, test.Student("2024001"))
	require.EqualValues(t, 1, a.ID)

	Submit(c)

	var resp response.Body
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	test.NoError(t, resp)
	sub := test.DecodeData[model.Submission](t, resp)
	assert.Equal(t, model.SubmissionPassed, sub.Status)
	assert.Equal(t, []string{"proof.jpg"}, up.names)
}

func TestRegradeHandlerBadID(t *testing.T) {
	svc = newTestService(&fakeGrader{}, nil)
	resp := test.DoRequest(t, Regrade, test.Request{Params: gin.Params{{Key: "id", Value: "abc"}}})
	test.ErrorEqual(t, response.ErrInvalidRequest, resp)
}
