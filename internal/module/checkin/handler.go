package checkin

import (
	"errors"

	"cohort-checkin/internal/global/crawler"
	"cohort-checkin/internal/global/jwt"
	"cohort-checkin/internal/global/response"
	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"

	"github.com/gin-gonic/gin"
)

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		response.Fail(c, response.ErrInvalidDate.WithTips(err.Error()))
	case errors.Is(err, ErrFutureDate), errors.Is(err, ErrOutsideWindow):
		response.Fail(c, response.ErrInvalidDate.WithTips(err.Error()))
	case errors.Is(err, crawler.ErrInvalidURL), errors.Is(err, ErrInvalidStatus):
		response.Fail(c, response.ErrInvalidRequest.WithTips(err.Error()))
	case errors.Is(err, ErrNoSchedule):
		response.Fail(c, response.ErrNoSchedule)
	case errors.Is(err, ErrRecordNotFound), errors.Is(err, ErrStudentNotFound):
		response.Fail(c, response.ErrNotFound.WithTips(err.Error()))
	default:
		log.Error("打卡模块内部错误", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
	}
}

func Submit(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	record, err := svc.Submit(c.Request.Context(), payload.StudentID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, record)
}

func ListMine(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	list, total, err := svc.ListMine(c.Request.Context(), payload.StudentID, q)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.PageData{List: list, Total: total})
}

func GetProgress(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	view, err := svc.Progress(c.Request.Context(), payload.StudentID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

func AdminReview(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	record, err := svc.AdminReview(c.Request.Context(), payload.StudentID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, record)
}

type PendingQuery struct {
	repository.PageQuery
	StudentID string `form:"student_id"`
}

func AdminListPending(c *gin.Context) {
	var q PendingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	list, total, err := svc.AdminListPending(c.Request.Context(), q.StudentID, q.ToPage())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.PageData{List: list, Total: total})
}

func AdminStudentProgress(c *gin.Context) {
	view, err := svc.AdminStudentProgress(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}
