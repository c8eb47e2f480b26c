package crawler

import (
	"context"
	"errors"

	"cohort-checkin/internal/global/crawler"
	"cohort-checkin/internal/global/response"

	"github.com/gin-gonic/gin"
)

type Fetcher interface {
	FetchPost(ctx context.Context, rawURL string) (*crawler.PostInfo, error)
	FetchProfile(ctx context.Context, rawURL string) (*crawler.ProfileInfo, error)
}

type URLQuery struct {
	URL string `form:"url" binding:"required"`
}

func fail(c *gin.Context, err error) {
	if errors.Is(err, crawler.ErrInvalidURL) {
		response.Fail(c, response.ErrInvalidRequest.WithTips(err.Error()))
		return
	}
	log.Error("抓取失败", "error", err)
	response.Fail(c, response.ErrUpstream.WithOrigin(err))
}

// Post 抓取笔记信息，抓取失败时返回 fallback=true 的占位数据
func Post(c *gin.Context) {
	var q URLQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	info, err := fetcher.FetchPost(c.Request.Context(), q.URL)
	if err != nil {
		fail(c, err)
		return
	}
	if info.Fallback {
		log.Warn("笔记抓取降级为占位数据", "url", q.URL)
	}
	response.Success(c, info)
}

func Profile(c *gin.Context) {
	var q URLQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	info, err := fetcher.FetchProfile(c.Request.Context(), q.URL)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, info)
}
