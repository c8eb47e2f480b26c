// Package storage S3 兼容对象存储（Supabase Storage 的 S3 接口）
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	appconfig "cohort-checkin/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("对象存储未配置")

type Storage struct {
	cfg      appconfig.S3
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
	now      func() time.Time
}

func New(ctx context.Context, cfg appconfig.S3) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("加载 S3 配置失败: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &Storage{
		cfg:      cfg,
		client:   client,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
		now:      time.Now,
	}, nil
}

// ObjectKey prefix/yyyy/mm/uuid.ext，扩展名统一小写
func (s *Storage) ObjectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	key := path.Join(strings.Trim(s.cfg.Prefix, "/"), s.now().Format("2006/01"), uuid.NewString()+ext)
	return strings.TrimLeft(key, "/")
}

// PublicURL 优先使用 base_url（CDN 或 Supabase 公共地址）
func (s *Storage) PublicURL(key string) string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	if base != "" {
		return base + "/" + key
	}
	base = strings.TrimRight(s.cfg.Endpoint, "/")
	if s.cfg.UsePathStyle {
		return base + "/" + s.cfg.Bucket + "/" + key
	}
	return base + "/" + key
}

// Upload 上传文件并返回可访问的 URL
func (s *Storage) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := s.ObjectKey(filename)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("上传 %s 失败: %w", key, err)
	}
	return s.PublicURL(key), nil
}
