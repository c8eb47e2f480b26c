package upload

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"cohort-checkin/internal/global/jwt"
	"cohort-checkin/internal/global/response"
	"cohort-checkin/internal/global/storage"

	"github.com/gin-gonic/gin"
)

const (
	maxFileSize   = 10 << 20
	maxPresignTTL = time.Hour
)

var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".pdf": true,
}

type ObjectStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
	PresignUpload(ctx context.Context, req storage.PresignRequest) (*storage.PresignResponse, error)
}

func checkFile(name string, size int64) *response.Error {
	if !allowedExt[strings.ToLower(path.Ext(name))] {
		return response.ErrInvalidRequest.WithTips("仅支持图片或 PDF")
	}
	if size > maxFileSize {
		return response.ErrInvalidRequest.WithTips("文件不能超过 10 MB")
	}
	return nil
}

// Upload multipart 字段 file，返回公开访问地址
func Upload(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	if store == nil {
		response.Fail(c, response.ErrStorage.WithTips(storage.ErrNotConfigured.Error()))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if e := checkFile(fh.Filename, fh.Size); e != nil {
		response.Fail(c, e)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	defer f.Close()

	url, err := store.Upload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		log.Error("上传文件失败", "student_id", payload.StudentID, "filename", fh.Filename, "error", err)
		response.Fail(c, response.ErrStorage.WithOrigin(err))
		return
	}
	log.Info("上传文件", "student_id", payload.StudentID, "url", url, "size", fh.Size)
	response.Success(c, gin.H{"url": url, "filename": fh.Filename, "size": fh.Size})
}

type PresignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
	ExpiresIn   int    `json:"expires_in"` // 秒
}

// Presign 返回预签名 PUT 地址，浏览器直传对象存储
func Presign(c *gin.Context) {
	if store == nil {
		response.Fail(c, response.ErrStorage.WithTips(storage.ErrNotConfigured.Error()))
		return
	}
	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if e := checkFile(req.Filename, 0); e != nil {
		response.Fail(c, e)
		return
	}
	ttl := min(time.Duration(req.ExpiresIn)*time.Second, maxPresignTTL)

	resp, err := store.PresignUpload(c.Request.Context(), storage.PresignRequest{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		ExpiresIn:   ttl,
	})
	if err != nil {
		log.Error("生成预签名地址失败", "filename", req.Filename, "error", err)
		response.Fail(c, response.ErrStorage.WithOrigin(err))
		return
	}
	response.Success(c, resp)
}
