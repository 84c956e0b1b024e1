package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studio-backend/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const issuer = "lastday-studio"

// Claims 역할 세션 클레임
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager 역할 세션 토큰 관리자
type SessionManager struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewSessionManager SessionManager 생성
func NewSessionManager(secretKey string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// TTL 세션 유효 기간
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue 역할 토큰 생성. visitor/full만 발급
func (m *SessionManager) Issue(role model.Role) (string, error) {
	if !role.CanRead() {
		return "", ErrInvalidToken
	}
	now := m.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   role.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Validate 토큰 검증 후 클레임 반환
func (m *SessionManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.CanRead() {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RoleOf 토큰의 역할. 실패하면 RoleNone
func (m *SessionManager) RoleOf(tokenString string) model.Role {
	if tokenString == "" {
		return model.RoleNone
	}
	claims, err := m.Validate(tokenString)
	if err != nil {
		return model.RoleNone
	}
	return claims.Role
}
