package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	appconfig "cohort-checkin/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, cfg appconfig.S3) *Storage {
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), appconfig.S3{})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestObjectKeyAndURL(t *testing.T) {
	s := newTestStorage(t, appconfig.S3{
		Endpoint: "https://proj.supabase.co/storage/v1/s3", Bucket: "homework", Region: "us-east-1",
		AccessKey: "ak", SecretAccessKey: "sk", Prefix: "/uploads/", UsePathStyle: true,
	})

	key := s.ObjectKey("Photo.PNG")
	assert.True(t, strings.HasPrefix(key, "uploads/2025/03/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.Equal(t, "https://proj.supabase.co/storage/v1/s3/homework/"+key, s.PublicURL(key))

	s.cfg.BaseURL = "https://cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com/a.png", s.PublicURL("a.png"))
}

func TestPresignUpload(t *testing.T) {
	s := newTestStorage(t, appconfig.S3{
		Endpoint: "http://127.0.0.1:9000", Bucket: "homework", Region: "us-east-1",
		AccessKey: "ak", SecretAccessKey: "sk", UsePathStyle: true,
	})

	res, err := s.PresignUpload(context.Background(), PresignRequest{Filename: "a.jpg", ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "PUT", res.Method)
	assert.Contains(t, res.UploadURL, "http://127.0.0.1:9000/homework/")
	assert.Contains(t, res.UploadURL, "X-Amz-Signature=")
	assert.Equal(t, "image/jpeg", res.Headers["Content-Type"])

	_, err = s.PresignUpload(context.Background(), PresignRequest{})
	require.Error(t, err)
}
