package jwt

import (
	"errors"
	"time"

	"cohort-checkin/config"
	"cohort-checkin/internal/model"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

var ErrTokenInvalid = errors.New("token 无效或已过期")

type Claims struct {
	StudentID string `json:"student_id"`
	Role      string `json:"role"`
	RoleID    int    `json:"role_id"`
	jwt.StandardClaims
}

func (c *Claims) IsAdmin() bool {
	return c.RoleID >= model.RoleLevelAdmin
}

// ExpiresIn token 剩余有效期，注销时作为黑名单 TTL
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	return time.Unix(c.ExpiresAt, 0).Sub(now)
}

// CreateToken 签发 HS256 access token，jti 为随机 UUID
func CreateToken(studentID, role string) (string, *Claims, error) {
	cfg := config.Get().JWT
	now := time.Now()
	claims := &Claims{
		StudentID: studentID,
		Role:      role,
		RoleID:    model.RoleLevel(role),
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   studentID,
			Issuer:    "cohort-checkin",
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Duration(cfg.AccessExpire) * time.Second).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.AccessSecret))
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

func ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(config.Get().JWT.AccessSecret), nil
	})
	if err != nil || !t.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
