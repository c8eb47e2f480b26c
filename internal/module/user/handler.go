package user

import (
	"errors"
	"net/http"

	"cohort-checkin/internal/global/jwt"
	"cohort-checkin/internal/global/response"
	"cohort-checkin/internal/repository"

	"github.com/gin-gonic/gin"
)

// fail 把业务错误转换为统一错误码
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.Fail(c, response.ErrInvalidPassword)
	case errors.Is(err, ErrUserExists):
		response.Fail(c, response.ErrAlreadyExists.WithTips(err.Error()))
	case errors.Is(err, ErrUserNotFound):
		response.Fail(c, response.ErrNotFound.WithTips(err.Error()))
	case errors.Is(err, ErrRegisterClosed):
		response.Fail(c, response.ErrRegisterClosed)
	case errors.Is(err, ErrWeakPassword), errors.Is(err, ErrInvalidRole):
		response.Fail(c, response.ErrInvalidRequest.WithTips(err.Error()))
	default:
		log.Error("用户模块内部错误", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
	}
}

type LoginRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	result, err := svc.Login(c.Request.Context(), req.StudentID, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	// 网页端通过 cookie 携带 token
	maxAge := int(result.ExpiresAt - svc.now().Unix())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", result.Token, maxAge, "/", "", false, true)
	log.Info("用户登录", "student_id", result.User.StudentID)
	response.Success(c, result)
}

func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	user, err := svc.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}

func Logout(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	if err := svc.Logout(c.Request.Context(), payload); err != nil {
		log.Warn("token 加入黑名单失败", "student_id", payload.StudentID, "error", err)
	}
	c.SetCookie("token", "", -1, "/", "", false, true)
	response.Success(c)
}

func GetProfile(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	profile, err := svc.Profile(c.Request.Context(), payload.StudentID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, profile)
}

func UpdateProfile(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	profile, err := svc.UpdateProfile(c.Request.Context(), payload.StudentID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, profile)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func ChangePassword(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if err := svc.ChangePassword(c.Request.Context(), payload.StudentID, req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	response.Success(c)
}

type ListUsersQuery struct {
	repository.PageQuery
	Role    string `form:"role"`
	Keyword string `form:"keyword"`
}

func ListUsers(c *gin.Context) {
	var q ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	users, total, err := svc.ListUsers(c.Request.Context(), repository.UserFilter{
		Role:    q.Role,
		Keyword: q.Keyword,
		Page:    q.ToPage(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.PageData{List: users, Total: total})
}

func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	user, err := svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	log.Info("管理员创建用户", "student_id", user.StudentID, "role", user.Role)
	response.Success(c, user)
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	studentID := c.Param("student_id")
	if err := svc.ResetPassword(c.Request.Context(), studentID, req.Password); err != nil {
		fail(c, err)
		return
	}
	if payload, ok := jwt.GetUserPayload(c); ok {
		log.Info("管理员重置密码", "admin", payload.StudentID, "student_id", studentID)
	}
	response.Success(c)
}
