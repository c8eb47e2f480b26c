package assignment

import (
	"errors"
	"mime/multipart"
	"strconv"

	"cohort-checkin/internal/global/jwt"
	"cohort-checkin/internal/global/response"
	"cohort-checkin/internal/global/storage"
	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"

	"github.com/gin-gonic/gin"
)

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		response.Fail(c, response.ErrInvalidDate.WithTips(err.Error()))
	case errors.Is(err, ErrAssignmentNotFound), errors.Is(err, ErrSubmissionNotFound):
		response.Fail(c, response.ErrNotFound.WithTips(err.Error()))
	case errors.Is(err, ErrAssignmentClosed):
		response.Fail(c, response.ErrForbidden.WithTips(err.Error()))
	case errors.Is(err, ErrEmptySubmission), errors.Is(err, ErrTooManyFiles),
		errors.Is(err, ErrFileTooLarge), errors.Is(err, ErrFileType):
		response.Fail(c, response.ErrInvalidRequest.WithTips(err.Error()))
	case errors.Is(err, storage.ErrNotConfigured):
		response.Fail(c, response.ErrStorage.WithTips(err.Error()))
	default:
		log.Error("作业模块内部错误", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
	}
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, response.ErrInvalidRequest.WithTips("ID 不合法"))
		return 0, false
	}
	return uint(id), true
}

func ListAssignments(c *gin.Context) {
	list, err := svc.ListAssignments(c.Request.Context(), true)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

func AdminListAssignments(c *gin.Context) {
	list, err := svc.ListAssignments(c.Request.Context(), false)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

func GetAssignment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	a, err := svc.GetAssignment(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, a)
}

func CreateAssignment(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	a, err := svc.CreateAssignment(c.Request.Context(), payload.StudentID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, a)
}

func UpdateAssignment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req AssignmentUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	a, err := svc.UpdateAssignment(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, a)
}

func DeleteAssignment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := svc.DeleteAssignment(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c)
}

// SubmitRequest multipart 表单：content 文本，files 附件
type SubmitRequest struct {
	Content string                  `form:"content"`
	Files   []*multipart.FileHeader `form:"files"`
}

func Submit(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	files := make([]Attachment, 0, len(req.Files))
	for _, fh := range req.Files {
		f, err := fh.Open()
		if err != nil {
			response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
			return
		}
		defer f.Close()
		files = append(files, Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}

	sub, err := svc.Submit(c.Request.Context(), payload.StudentID, id, req.Content, files)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, sub)
}

func MySubmissions(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	list, err := svc.MySubmissions(c.Request.Context(), payload.StudentID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

func ListSubmissions(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var q repository.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	list, total, err := svc.ListSubmissions(c.Request.Context(), id, q.ToPage())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.PageData{List: list, Total: total})
}

func Regrade(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	sub, err := svc.Regrade(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, sub)
}
