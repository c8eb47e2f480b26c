package schedule

import (
	"errors"
	"strconv"

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
	case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrStartInPast):
		response.Fail(c, response.ErrInvalidRequest.WithTips(err.Error()))
	case errors.Is(err, ErrStudentNotFound), errors.Is(err, ErrScheduleNotFound), errors.Is(err, ErrEmptyRange):
		response.Fail(c, response.ErrNotFound.WithTips(err.Error()))
	case errors.Is(err, ErrNoSchedule):
		response.Fail(c, response.ErrNoSchedule)
	case errors.Is(err, model.ErrNoEntitlement):
		response.Fail(c, response.ErrNoEntitlement)
	case errors.Is(err, model.ErrEntitlementAlreadyUsed):
		response.Fail(c, response.ErrEntitlementUsed)
	case errors.Is(err, model.ErrEntitlementExpired):
		response.Fail(c, response.ErrEntitlementGone)
	default:
		log.Error("排期模块内部错误", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
	}
}

type SetScheduleRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
}

func AdminSetSchedule(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req SetScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	schedule, err := svc.AdminSetSchedule(c.Request.Context(), payload.StudentID, req.StudentID, req.StartDate)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, schedule)
}

type BatchSetScheduleRequest struct {
	FromStudentID string `json:"from_student_id" binding:"required"`
	ToStudentID   string `json:"to_student_id" binding:"required"`
	StartDate     string `json:"start_date" binding:"required"`
}

func AdminBatchSetSchedule(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req BatchSetScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	result, err := svc.AdminBatchSetSchedule(c.Request.Context(), payload.StudentID, req.FromStudentID, req.ToStudentID, req.StartDate)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}

func GetMySchedule(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	schedule, err := svc.GetMySchedule(c.Request.Context(), payload.StudentID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, schedule)
}

type ListSchedulesQuery struct {
	repository.PageQuery
	StudentID  string `form:"student_id"`
	ActiveOnly bool   `form:"active_only"`
}

func AdminListSchedules(c *gin.Context) {
	var q ListSchedulesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	list, total, err := svc.AdminListSchedules(c.Request.Context(), repository.ScheduleFilter{
		StudentID:  q.StudentID,
		ActiveOnly: q.ActiveOnly,
		Page:       q.ToPage(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.PageData{List: list, Total: total})
}

func AdminDeactivateSchedule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("排期 ID 不合法"))
		return
	}
	if err := svc.AdminDeactivateSchedule(c.Request.Context(), uint(id)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c)
}

type GrantRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	ResetUsed bool   `json:"reset_used"`
}

func GrantSelfSchedule(c *gin.Context) {
	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	view, err := svc.GrantSelfSchedule(c.Request.Context(), req.StudentID, req.ResetUsed)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

type BatchGrantRequest struct {
	FromStudentID string `json:"from_student_id" binding:"required"`
	ToStudentID   string `json:"to_student_id" binding:"required"`
	ResetUsed     bool   `json:"reset_used"`
}

func BatchGrantSelfSchedule(c *gin.Context) {
	var req BatchGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	n, err := svc.BatchGrantSelfSchedule(c.Request.Context(), req.FromStudentID, req.ToStudentID, req.ResetUsed)
	if err != nil {
		fail(c, err)
		return
	}
	log.Info("批量授予自主排期权限", "from", req.FromStudentID, "to", req.ToStudentID, "count", n)
	response.Success(c, gin.H{"count": n})
}

type RevokeRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

func RevokeSelfSchedule(c *gin.Context) {
	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	view, err := svc.RevokeSelfSchedule(c.Request.Context(), req.StudentID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

func SelfScheduleStatus(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	view, err := svc.SelfScheduleStatus(c.Request.Context(), payload.StudentID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

func AdminSelfScheduleStatus(c *gin.Context) {
	view, err := svc.SelfScheduleStatus(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

type SelfScheduleRequest struct {
	StartDate string `json:"start_date" binding:"required"`
}

func SetSelfSchedule(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req SelfScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	schedule, err := svc.SetSelfSchedule(c.Request.Context(), payload.StudentID, req.StartDate)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, schedule)
}
