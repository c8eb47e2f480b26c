package response

import (
	"errors"
	"fmt"
	"net/http"

	"cohort-checkin/internal/global/sentry"

	"github.com/gin-gonic/gin"
)

var (
	ErrInvalidRequest  = newError(40001, "请求参数错误")
	ErrInvalidPassword = newError(40002, "学号或密码错误")
	ErrInvalidDate     = newError(40003, "日期不合法")
	ErrTokenInvalid    = newError(40101, "登录已失效，请重新登录")
	ErrUnauthorized    = newError(40102, "未登录")
	ErrForbidden       = newError(40301, "没有权限")
	ErrNoEntitlement   = newError(40302, "没有自主排期权限")
	ErrEntitlementUsed = newError(40303, "自主排期权限已使用")
	ErrEntitlementGone = newError(40304, "自主排期权限已过期")
	ErrRegisterClosed  = newError(40305, "暂未开放注册")
	ErrNotFound        = newError(40401, "资源不存在")
	ErrNoSchedule      = newError(40402, "尚未安排打卡周期")
	ErrAlreadyExists   = newError(40901, "资源已存在")
	ErrTooManyRequests = newError(42901, "请求过于频繁，请稍后再试")
	ErrServerInternal  = newError(50001, "服务器内部错误")
	ErrDatabase        = newError(50002, "数据库错误")
	ErrUpstream        = newError(50201, "外部服务调用失败")
	ErrStorage         = newError(50202, "文件上传失败")
)

// Body 统一响应格式
type Body struct {
	Code int32  `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
	// Origin 仅 debug 模式返回
	Origin string `json:"origin,omitempty"`
}

func Success(c *gin.Context, data ...any) {
	b := Body{Code: 0, Msg: "ok"}
	if len(data) > 0 {
		b.Data = data[0]
	}
	c.JSON(http.StatusOK, b)
}

// Fail 写入错误响应，非 *Error 的错误按服务器内部错误处理
func Fail(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = ErrServerInternal.WithOrigin(err)
	}
	_ = c.Error(e)
	c.Set(ErrorContextKey, e)

	b := Body{Code: e.Code, Msg: e.Message}
	if gin.IsDebugging() {
		b.Origin = e.Origin
	}
	if e.HTTPStatus() >= http.StatusInternalServerError {
		sentry.CaptureException(c, e)
	}
	c.AbortWithStatusJSON(e.HTTPStatus(), b)
}

// Recovery 与 middleware.Recovery 配合，把 panic 转成 500 响应
func Recovery(c *gin.Context) {
	if r := recover(); r != nil {
		var err error
		switch v := r.(type) {
		case error:
			err = v
		default:
			err = fmt.Errorf("%v", v)
		}
		Fail(c, ErrServerInternal.WithOrigin(err))
	}
}

// PageData 分页列表
type PageData struct {
	List  any   `json:"list"`
	Total int64 `json:"total"`
}
