package report

import (
	"errors"

	"cohort-checkin/internal/global/jwt"
	"cohort-checkin/internal/global/response"
	"cohort-checkin/tools"

	"github.com/gin-gonic/gin"
)

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrStudentNotFound):
		response.Fail(c, response.ErrNotFound.WithTips(err.Error()))
	case errors.Is(err, ErrNoSchedule):
		response.Fail(c, response.ErrNoSchedule)
	case errors.Is(err, ErrFormat):
		response.Fail(c, response.ErrInvalidRequest.WithTips(err.Error()))
	default:
		log.Error("报表模块内部错误", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
	}
}

func GetOverview(c *gin.Context) {
	o, err := svc.Overview(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, o)
}

// Export format=xlsx|csv 返回文件，format=json 直接返回数据
func Export(c *gin.Context) {
	format := c.DefaultQuery("format", FormatXLSX)
	if format == FormatJSON {
		rows, err := svc.Rows(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		response.Success(c, rows)
		return
	}

	data, contentType, name, err := svc.Export(c.Request.Context(), format)
	if err != nil {
		fail(c, err)
		return
	}
	tools.SendAttachment(c, name, contentType, data)
}

func MyCertificate(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	certificate(c, payload.StudentID)
}

func StudentCertificate(c *gin.Context) {
	certificate(c, c.Param("student_id"))
}

func certificate(c *gin.Context, studentID string) {
	data, name, err := svc.Certificate(c.Request.Context(), studentID)
	if err != nil {
		fail(c, err)
		return
	}
	tools.SendAttachment(c, name, tools.PDFContentType, data)
}

func Diagnose(c *gin.Context) {
	d, err := svc.Diagnostics(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, d)
}
