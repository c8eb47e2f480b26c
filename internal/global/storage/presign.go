package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultPresignTTL = 15 * time.Minute

type PresignRequest struct {
	Filename    string
	ContentType string
	ExpiresIn   time.Duration
}

// PresignResponse 前端用 Method + Headers 直接 PUT 到 UploadURL
type PresignResponse struct {
	UploadURL string            `json:"upload_url"`
	FileKey   string            `json:"file_key"`
	FileURL   string            `json:"file_url"`
	ExpiresAt time.Time         `json:"expires_at"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
}

func (s *Storage) PresignUpload(ctx context.Context, req PresignRequest) (*PresignResponse, error) {
	if req.Filename == "" {
		return nil, errors.New("文件名不能为空")
	}
	if req.ExpiresIn <= 0 {
		req.ExpiresIn = defaultPresignTTL
	}
	if req.ContentType == "" {
		req.ContentType = "application/octet-stream"
	}

	key := s.ObjectKey(req.Filename)
	signed, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(req.ContentType),
	}, s3.WithPresignExpires(req.ExpiresIn))
	if err != nil {
		return nil, fmt.Errorf("生成预签名 URL 失败: %w", err)
	}

	headers := map[string]string{"Content-Type": req.ContentType}
	for k, v := range signed.SignedHeader {
		if len(v) > 0 && k != "Host" {
			headers[k] = v[0]
		}
	}
	return &PresignResponse{
		UploadURL: signed.URL,
		FileKey:   key,
		FileURL:   s.PublicURL(key),
		ExpiresAt: s.now().Add(req.ExpiresIn),
		Method:    signed.Method,
		Headers:   headers,
	}, nil
}
