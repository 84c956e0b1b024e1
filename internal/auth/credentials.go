package auth

import (
	"crypto/subtle"
	"strings"

	"studio-backend/internal/model"
)

// Credentials 역할별 로그인 정보
type Credentials struct {
	VisitorEmail    string
	VisitorPassword string
	FullEmail       string
	FullPassword    string
}

// Resolve 이메일/비밀번호로 역할 결정. full을 먼저 확인한다
func (c Credentials) Resolve(email, password string) model.Role {
	email = strings.ToLower(strings.TrimSpace(email))

	if equal(email, strings.ToLower(strings.TrimSpace(c.FullEmail))) && equal(password, c.FullPassword) {
		return model.RoleFull
	}
	if equal(email, strings.ToLower(strings.TrimSpace(c.VisitorEmail))) && equal(password, c.VisitorPassword) {
		return model.RoleVisitor
	}
	return model.RoleNone
}

// equal 상수 시간 비교 (길이가 다르면 false)
func equal(a, b string) bool {
	if b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
