package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cohort-checkin/internal/global/jwt"
	"cohort-checkin/internal/global/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// Request 描述一次 handler 调用
type Request struct {
	Method  string
	Path    string
	Body    any
	Params  gin.Params
	Payload *jwt.Claims // 模拟 middleware.Auth 写入的登录信息
}

// DoRequest 直接调用 handler 并解析统一响应
func DoRequest(t *testing.T, handlerFunc gin.HandlerFunc, req Request) (resp response.Body) {
	w := Serve(t, handlerFunc, req)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return
}

// Serve 返回原始响应，用于文件下载等非 JSON 接口
func Serve(t *testing.T, handlerFunc gin.HandlerFunc, req Request) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	if req.Method == "" {
		req.Method = http.MethodPost
	}
	if req.Path == "" {
		req.Path = "/test"
	}
	c.Request = httptest.NewRequest(req.Method, req.Path, body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = req.Params
	if req.Payload != nil {
		c.Set(jwt.PayloadKey, req.Payload)
	}
	handlerFunc(c)
	return w
}

func Student(studentID string) *jwt.Claims {
	return &jwt.Claims{StudentID: studentID, Role: "student", RoleID: 0}
}

func Admin(studentID string) *jwt.Claims {
	return &jwt.Claims{StudentID: studentID, Role: "admin", RoleID: 1}
}
