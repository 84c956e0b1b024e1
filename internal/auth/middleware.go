package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"studio-backend/internal/model"
)

// SessionCookie 역할 세션 쿠키 이름
const SessionCookie = "lds_session"

const roleLocal = "role"

// SessionMiddleware 쿠키(또는 Bearer 헤더)의 역할을 Locals에 저장. 실패해도 계속 진행
func SessionMiddleware(sessions *SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			if h := c.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		c.Locals(roleLocal, sessions.RoleOf(token))
		return c.Next()
	}
}

// RoleFromContext 현재 요청의 역할
func RoleFromContext(c *fiber.Ctx) model.Role {
	if role, ok := c.Locals(roleLocal).(model.Role); ok {
		return role
	}
	return model.RoleNone
}
