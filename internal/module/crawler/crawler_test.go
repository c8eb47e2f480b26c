package crawler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/crawler"
	"cohort-checkin/internal/global/response"
	"cohort-checkin/test"

	"github.com/stretchr/testify/assert"
)

func TestPostFromOpenGraph(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><meta property="og:title" content="第一天打卡"></head></html>`))
	}))
	defer page.Close()
	config.Set(&config.Config{})
	fetcher = crawler.New(config.Crawler{TimeoutSeconds: 5})

	resp := test.DoRequest(t, Post, test.Request{
		Method: http.MethodGet,
		Path:   "/crawler/post?url=" + url.QueryEscape(page.URL+"/explore/1"),
	})
	test.NoError(t, resp)
	info := test.DecodeData[crawler.PostInfo](t, resp)
	assert.Equal(t, "第一天打卡", info.Title)
	assert.Equal(t, crawler.SourceOpenGraph, info.Source)
	assert.False(t, info.Fallback)
}

func TestProfileFallback(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer page.Close()
	config.Set(&config.Config{})
	fetcher = crawler.New(config.Crawler{TimeoutSeconds: 5})

	resp := test.DoRequest(t, Profile, test.Request{
		Method: http.MethodGet,
		Path:   "/crawler/profile?url=" + url.QueryEscape(page.URL+"/user/profile/abc"),
	})
	test.NoError(t, resp)
	info := test.DecodeData[crawler.ProfileInfo](t, resp)
	assert.True(t, info.Fallback)
	assert.Equal(t, crawler.SourcePlaceholder, info.Source)
}

func TestInvalidURL(t *testing.T) {
	config.Set(&config.Config{})
	fetcher = crawler.New(config.Crawler{})

	resp := test.DoRequest(t, Post, test.Request{Method: http.MethodGet, Path: "/crawler/post?url=file%3A%2F%2F%2Fetc%2Fpasswd"})
	test.ErrorEqual(t, response.ErrInvalidRequest, resp)

	resp = test.DoRequest(t, Post, test.Request{Method: http.MethodGet, Path: "/crawler/post"})
	test.ErrorEqual(t, response.ErrInvalidRequest, resp)
}
