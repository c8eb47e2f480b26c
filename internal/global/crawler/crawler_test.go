package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cohort-checkin/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	config.Set(&config.Config{})
}

const notePage = `<html><head>
<title>页面标题</title>
<meta name="description" content="普通描述">
<meta property="og:title" content="我的第 3 天打卡">
<meta property="og:description" content="今天读完了一本书">
<meta property="og:image" content="https://img.example.com/cover.jpg">
</head><body></body></html>`

func TestValidateURL(t *testing.T) {
	_, err := ValidateURL("javascript:alert(1)")
	require.ErrorIs(t, err, ErrInvalidURL)
	_, err = ValidateURL("xhslink.com/abc")
	require.ErrorIs(t, err, ErrInvalidURL)
	u, err := ValidateURL(" https://www.xiaohongshu.com/explore/1 ")
	require.NoError(t, err)
	assert.Equal(t, "https://www.xiaohongshu.com/explore/1", u)
}

func TestFetchPost_MCP(t *testing.T) {
	mcp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer mcp-token", r.Header.Get("Authorization"))
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tools/call", req.Method)

		text, _ := json.Marshal(PostInfo{Title: "MCP 标题", Author: "小明", Likes: 12})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID,
			"result": map[string]any{"content": []map[string]any{{"type": "text", "text": string(text)}}},
		})
	}))
	defer mcp.Close()

	c := New(config.Crawler{BaseURL: mcp.URL, Token: "mcp-token", TimeoutSeconds: 5})
	info, err := c.FetchPost(context.Background(), "https://www.xiaohongshu.com/explore/1")
	require.NoError(t, err)
	assert.Equal(t, SourceMCP, info.Source)
	assert.Equal(t, "MCP 标题", info.Title)
	assert.Equal(t, 12, info.Likes)
	assert.False(t, info.Fallback)
}

func TestFetchPost_OpenGraphFallback(t *testing.T) {
	mcp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"blocked"}}`))
	}))
	defer mcp.Close()
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(notePage))
	}))
	defer page.Close()

	c := New(config.Crawler{BaseURL: mcp.URL})
	info, err := c.FetchPost(context.Background(), page.URL+"/explore/1")
	require.NoError(t, err)
	assert.Equal(t, SourceOpenGraph, info.Source)
	assert.Equal(t, "我的第 3 天打卡", info.Title)
	assert.Equal(t, "今天读完了一本书", info.Description)
	assert.Equal(t, "https://img.example.com/cover.jpg", info.ImageURL)
}

func TestFetchProfile_Placeholder(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer page.Close()

	c := New(config.Crawler{})
	info, err := c.FetchProfile(context.Background(), page.URL+"/user/profile/1")
	require.NoError(t, err)
	assert.True(t, info.Fallback)
	assert.Equal(t, SourcePlaceholder, info.Source)
}

func TestParseOpenGraph_TitleFallback(t *testing.T) {
	og, err := parseOpenGraph(strings.NewReader(`<html><head><title> 只有标题 </title><meta name="description" content="d"></head></html>`))
	require.NoError(t, err)
	assert.Equal(t, "只有标题", og.Title)
	assert.Equal(t, "d", og.Description)
}
