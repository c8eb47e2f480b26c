// Package crawler 获取小红书笔记与主页信息
// 依次尝试 MCP 服务、页面 OpenGraph 标签，都失败时返回占位数据
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/httpclient"

	"github.com/go-resty/resty/v2"
)

var ErrInvalidURL = errors.New("链接必须是 http(s) 地址")

const (
	SourceMCP         = "mcp"
	SourceOpenGraph   = "opengraph"
	SourcePlaceholder = "placeholder"

	toolPostDetail  = "get_note_detail"
	toolUserProfile = "get_user_profile"
)

type PostInfo struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
	ImageURL    string `json:"image_url"`
	Likes       int    `json:"likes"`
	Source      string `json:"source"`
	Fallback    bool   `json:"fallback"`
}

type ProfileInfo struct {
	URL       string `json:"url"`
	Nickname  string `json:"nickname"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	Followers int    `json:"followers"`
	Source    string `json:"source"`
	Fallback  bool   `json:"fallback"`
}

type Crawler struct {
	mcp      *resty.Client
	endpoint string
	web      *resty.Client
}

func New(cfg config.Crawler) *Crawler {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Crawler{
		web: httpclient.New("", min(timeout, 5*time.Second)).
			SetHeader("Accept", "text/html").
			SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)),
	}
	if cfg.BaseURL != "" {
		c.mcp = httpclient.New("", timeout)
		c.endpoint = cfg.BaseURL
		if cfg.Token != "" {
			c.mcp.SetAuthToken(cfg.Token)
		}
	}
	return c
}

// ValidateURL 只接受带 host 的 http/https 链接
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u.String(), nil
}

func (c *Crawler) FetchPost(ctx context.Context, rawURL string) (*PostInfo, error) {
	link, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	if c.mcp != nil {
		var info PostInfo
		if err := c.callTool(ctx, toolPostDetail, link, &info); err == nil {
			info.URL, info.Source = link, SourceMCP
			return &info, nil
		}
	}
	if og, err := c.fetchOpenGraph(ctx, link); err == nil && og.Title != "" {
		return &PostInfo{
			URL:         link,
			Title:       og.Title,
			Description: og.Description,
			ImageURL:    og.Image,
			Source:      SourceOpenGraph,
		}, nil
	}
	return &PostInfo{URL: link, Title: "小红书笔记", Source: SourcePlaceholder, Fallback: true}, nil
}

func (c *Crawler) FetchProfile(ctx context.Context, rawURL string) (*ProfileInfo, error) {
	link, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	if c.mcp != nil {
		var info ProfileInfo
		if err := c.callTool(ctx, toolUserProfile, link, &info); err == nil {
			info.URL, info.Source = link, SourceMCP
			return &info, nil
		}
	}
	if og, err := c.fetchOpenGraph(ctx, link); err == nil && og.Title != "" {
		return &ProfileInfo{
			URL:       link,
			Nickname:  og.Title,
			Bio:       og.Description,
			AvatarURL: og.Image,
			Source:    SourceOpenGraph,
		}, nil
	}
	return &ProfileInfo{URL: link, Nickname: "小红书用户", Source: SourcePlaceholder, Fallback: true}, nil
}
