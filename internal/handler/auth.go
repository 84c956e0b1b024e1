package handler

import (
	"github.com/gofiber/fiber/v2"

	"studio-backend/internal/auth"
	"studio-backend/internal/logger"
	"studio-backend/internal/model"
)

// AuthHandler 역할 로그인 핸들러
type AuthHandler struct {
	sessions     *auth.SessionManager
	credentials  auth.Credentials
	secureCookie bool
	log          *logger.Logger
}

// NewAuthHandler AuthHandler 생성
func NewAuthHandler(sessions *auth.SessionManager, credentials auth.Credentials, secureCookie bool, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:     sessions,
		credentials:  credentials,
		secureCookie: secureCookie,
		log:          log,
	}
}

// LoginRequest 로그인 요청
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login 자격 증명으로 역할을 정하고 세션 쿠키 발급
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		h.clearCookie(c)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	role := h.credentials.Resolve(req.Email, req.Password)
	if role == model.RoleNone {
		h.clearCookie(c)
		h.log.Info("login rejected", "ip", c.IP())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := h.sessions.Issue(role)
	if err != nil {
		h.log.Error("issue session token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start session",
		})
	}

	// HTTP-Only 쿠키로 역할 토큰 설정
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		Secure:   h.secureCookie,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{"role": role})
}

// Logout 세션 쿠키 삭제
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

// Session 현재 역할
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"role": auth.RoleFromContext(c)})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.secureCookie,
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
