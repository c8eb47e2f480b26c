package grader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"cohort-checkin/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	config.Set(&config.Config{})
}

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"content": content}}},
	}
}

func TestGrade_Primary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "primary", body.Model)
		require.Len(t, body.Messages, 2)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion(`{"status":"passed","feedback":"很好"}`))
	}))
	defer srv.Close()

	g := New(config.AI{BaseURL: srv.URL, APIKey: "sk-test", Model: "primary", FallbackModel: "backup"})
	res, err := g.Grade(context.Background(), Request{Title: "第一周", Description: "写一篇笔记", Content: "笔记", AttachmentURLs: []string{"https://img/1.png"}})
	require.NoError(t, err)
	assert.Equal(t, "passed", res.Status)
	assert.Equal(t, "很好", res.Feedback)
	assert.Equal(t, "primary", res.Model)
}

func TestGrade_Fallback(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body chatRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body.Model == "primary" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(completion("```json\n{\"status\":\"FAILED\",\"feedback\":\"字数不够\"}\n```"))
	}))
	defer srv.Close()

	g := New(config.AI{BaseURL: srv.URL, Model: "primary", FallbackModel: "backup"})
	res, err := g.Grade(context.Background(), Request{Content: "短"})
	require.NoError(t, err)
	assert.Equal(t, "failed", res.Status)
	assert.Equal(t, "backup", res.Model)
	assert.EqualValues(t, 2, calls.Load())
}

func TestGrade_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion("我觉得不错"))
	}))
	defer srv.Close()

	g := New(config.AI{BaseURL: srv.URL, Model: "primary", FallbackModel: "backup"})
	_, err := g.Grade(context.Background(), Request{})
	require.ErrorIs(t, err, ErrBadVerdict)
	assert.Contains(t, err.Error(), "primary")
	assert.Contains(t, err.Error(), "backup")
}

func TestGrade_NotConfigured(t *testing.T) {
	_, err := New(config.AI{Model: "primary"}).Grade(context.Background(), Request{})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestParseVerdict(t *testing.T) {
	_, err := ParseVerdict(`{"status":"maybe","feedback":""}`)
	require.ErrorIs(t, err, ErrBadVerdict)

	r, err := ParseVerdict(`结果如下 {"status":"passed","feedback":"ok"}`)
	require.NoError(t, err)
	assert.Equal(t, "passed", r.Status)
}
