// Package grader 调用 OpenAI 兼容的 chat completions 接口批改作业
package grader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cohort-checkin/config"
	"cohort-checkin/internal/global/httpclient"
	"cohort-checkin/internal/model"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotConfigured = errors.New("AI 批改服务未配置")
	ErrBadVerdict    = errors.New("AI 返回结果无法解析")
)

const systemPrompt = `你是训练营的作业批改助教。根据作业要求判断学生提交是否合格。
只输出一个 JSON 对象：{"status": "passed" 或 "failed", "feedback": "不超过200字的中文评语"}。`

type Request struct {
	Title          string
	Description    string
	Content        string
	AttachmentURLs []string
}

type Result struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
	Model    string `json:"-"`
}

type Grader struct {
	client *resty.Client
	models []string
}

func New(cfg config.AI) *Grader {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	g := &Grader{client: httpclient.New(strings.TrimRight(cfg.BaseURL, "/"), timeout)}
	if cfg.APIKey != "" {
		g.client.SetAuthToken(cfg.APIKey)
	}
	for _, m := range []string{cfg.Model, cfg.FallbackModel} {
		if m != "" {
			g.models = append(g.models, m)
		}
	}
	if cfg.BaseURL == "" {
		g.models = nil
	}
	return g
}

// Grade 先用主模型，失败后换备用模型，不做其他重试
func (g *Grader) Grade(ctx context.Context, req Request) (*Result, error) {
	if len(g.models) == 0 {
		return nil, ErrNotConfigured
	}
	var errs []error
	for _, m := range g.models {
		res, err := g.call(ctx, m, req)
		if err == nil {
			res.Model = m
			return res, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", m, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func buildMessages(req Request) []chatMessage {
	text := fmt.Sprintf("作业标题：%s\n作业要求：%s\n\n学生提交内容：\n%s", req.Title, req.Description, req.Content)
	parts := []contentPart{{Type: "text", Text: text}}
	for _, u := range req.AttachmentURLs {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: u}})
	}
	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: parts},
	}
}

func (g *Grader) call(ctx context.Context, m string, req Request) (*Result, error) {
	var out chatResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:          m,
			Messages:       buildMessages(req),
			Temperature:    0.2,
			ResponseFormat: map[string]string{"type": "json_object"},
		}).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		if out.Error != nil && out.Error.Message != "" {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode(), out.Error.Message)
		}
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode())
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%w: choices 为空", ErrBadVerdict)
	}
	return ParseVerdict(out.Choices[0].Message.Content)
}

// ParseVerdict 解析模型输出，兼容 ```json 代码块包裹
func ParseVerdict(content string) (*Result, error) {
	s := strings.TrimSpace(content)
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			s = s[i : j+1]
		}
	}
	var r Result
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadVerdict, err)
	}
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if !model.IsGradeResult(r.Status) {
		return nil, fmt.Errorf("%w: status=%q", ErrBadVerdict, r.Status)
	}
	return &r, nil
}
