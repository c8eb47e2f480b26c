package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"cohort-checkin/internal/global/jwt"
	"cohort-checkin/internal/global/redis"
	"cohort-checkin/internal/model"
	"cohort-checkin/internal/repository"
	"cohort-checkin/tools"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("学号或密码错误")
	ErrUserExists         = errors.New("学号已注册")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrRegisterClosed     = errors.New("暂未开放注册")
	ErrWeakPassword       = errors.New("密码至少 6 位")
	ErrInvalidRole        = errors.New("角色只能是 student 或 admin")
)

const minPasswordLen = 6

type Service struct {
	repo          *repository.Repository
	now           func() time.Time
	allowRegister bool
}

func NewService(repo *repository.Repository, now func() time.Time, allowRegister bool) *Service {
	return &Service{repo: repo, now: now, allowRegister: allowRegister}
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Login 优先校验 bcrypt 哈希，历史明文密码校验通过后升级为哈希
func (s *Service) Login(ctx context.Context, studentID, password string) (*LoginResult, error) {
	user, err := s.repo.Users.GetByStudentID(ctx, strings.TrimSpace(studentID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	switch {
	case user.PasswordHash != "":
		if !tools.PasswordCompare(password, user.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
	case user.Password != "":
		if !tools.PasswordCompare(password, user.Password) {
			return nil, ErrInvalidCredentials
		}
		s.upgradePassword(ctx, user, password)
	default:
		return nil, ErrInvalidCredentials
	}

	token, claims, err := jwt.CreateToken(user.StudentID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

// upgradePassword 失败不影响本次登录，下次登录会再次尝试
func (s *Service) upgradePassword(ctx context.Context, user *model.User, password string) {
	hash, err := tools.PasswordHash(password)
	if err == nil {
		err = s.repo.Users.Update(ctx, user.StudentID, map[string]any{"password_hash": hash, "password": ""})
	}
	if err != nil {
		log.Warn("明文密码升级失败", "student_id", user.StudentID, "error", err)
		return
	}
	user.PasswordHash, user.Password = hash, ""
	log.Info("明文密码已升级为哈希", "student_id", user.StudentID)
}

// Logout 将 token 加入黑名单，Redis 不可用时只能等待 token 自然过期
func (s *Service) Logout(ctx context.Context, claims *jwt.Claims) error {
	return redis.BlacklistToken(ctx, redis.Client, claims.Id, claims.ExpiresIn(s.now()))
}

type RegisterRequest struct {
	StudentID string `json:"student_id" binding:"required,max=32"`
	Name      string `json:"name" binding:"required,max=64"`
	Password  string `json:"password" binding:"required"`
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if !s.allowRegister {
		return nil, ErrRegisterClosed
	}
	return s.create(ctx, req.StudentID, req.Name, req.Password, model.RoleStudent)
}

type CreateUserRequest struct {
	StudentID string `json:"student_id" binding:"required,max=32"`
	Name      string `json:"name" binding:"required,max=64"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role"`
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}
	if role != model.RoleStudent && role != model.RoleAdmin {
		return nil, ErrInvalidRole
	}
	return s.create(ctx, req.StudentID, req.Name, req.Password, role)
}

func (s *Service) create(ctx context.Context, studentID, name, password, role string) (*model.User, error) {
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	hash, err := tools.PasswordHash(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		StudentID:    strings.TrimSpace(studentID),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// ProfileView 个人信息，附带推导出的自主排期权限状态
type ProfileView struct {
	*model.User
	Entitlement model.EntitlementState `json:"entitlement"`
}

func (s *Service) Profile(ctx context.Context, studentID string) (*ProfileView, error) {
	user, err := s.get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: user, Entitlement: user.EntitlementState(s.now())}, nil
}

type ProfileUpdate struct {
	Name                  *string `json:"name" binding:"omitempty,max=64"`
	Persona               *string `json:"persona"`
	Keywords              *string `json:"keywords"`
	Vision                *string `json:"vision"`
	XiaohongshuProfileURL *string `json:"xiaohongshu_profile_url" binding:"omitempty,max=512"`
}

func (s *Service) UpdateProfile(ctx context.Context, studentID string, req ProfileUpdate) (*ProfileView, error) {
	fields := map[string]any{}
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = strings.TrimSpace(*v)
		}
	}
	set("name", req.Name)
	set("persona", req.Persona)
	set("keywords", req.Keywords)
	set("vision", req.Vision)
	set("xiaohongshu_profile_url", req.XiaohongshuProfileURL)

	if len(fields) > 0 {
		if err := s.repo.Users.Update(ctx, studentID, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}
	return s.Profile(ctx, studentID)
}

func (s *Service) ChangePassword(ctx context.Context, studentID, oldPassword, newPassword string) error {
	user, err := s.get(ctx, studentID)
	if err != nil {
		return err
	}
	stored := user.PasswordHash
	if stored == "" {
		stored = user.Password
	}
	if !tools.PasswordCompare(oldPassword, stored) {
		return ErrInvalidCredentials
	}
	return s.setPassword(ctx, studentID, newPassword)
}

func (s *Service) ResetPassword(ctx context.Context, studentID, newPassword string) error {
	if _, err := s.get(ctx, studentID); err != nil {
		return err
	}
	return s.setPassword(ctx, studentID, newPassword)
}

func (s *Service) setPassword(ctx context.Context, studentID, password string) error {
	if len(password) < minPasswordLen {
		return ErrWeakPassword
	}
	hash, err := tools.PasswordHash(password)
	if err != nil {
		return err
	}
	return s.repo.Users.Update(ctx, studentID, map[string]any{"password_hash": hash, "password": ""})
}

func (s *Service) ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	return s.repo.Users.List(ctx, filter)
}

func (s *Service) get(ctx context.Context, studentID string) (*model.User, error) {
	user, err := s.repo.Users.GetByStudentID(ctx, studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
