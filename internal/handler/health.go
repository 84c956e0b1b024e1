package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"studio-backend/internal/store"
)

// Pinger 상태 확인 가능한 의존성 (Redis 등)
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthHandler 헬스체크 핸들러
type HealthHandler struct {
	store *store.Store
	redis Pinger
}

// NewHealthHandler HealthHandler 생성. redis는 nil 가능
func NewHealthHandler(st *store.Store, redis Pinger) *HealthHandler {
	return &HealthHandler{store: st, redis: redis}
}

// ComponentCheck 컴포넌트 상태
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse 헬스체크 응답
type HealthResponse struct {
	Status    string                    `json:"status"`
	Timestamp string                    `json:"timestamp"`
	Checks    map[string]ComponentCheck `json:"checks"`
}

// Check 전체 상태 확인 (문서 저장소 + Redis)
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    make(map[string]ComponentCheck),
	}

	// 1. 문서 저장소 체크
	storeStart := time.Now()
	if _, err := h.store.Read(ctx); err != nil {
		response.Status = "unhealthy"
		response.Checks["store"] = ComponentCheck{
			Status: "unhealthy",
			Error:  "school document unavailable",
		}
	} else {
		response.Checks["store"] = ComponentCheck{
			Status:  "healthy",
			Latency: time.Since(storeStart).String(),
		}
	}

	// 2. Redis 체크 (퀴즈 진행도 저장소로 쓰일 때만)
	if h.redis != nil {
		redisStart := time.Now()
		if err := h.redis.Health(ctx); err != nil {
			response.Checks["redis"] = ComponentCheck{
				Status: "degraded",
				Error:  "redis unreachable",
			}
		} else {
			response.Checks["redis"] = ComponentCheck{
				Status:  "healthy",
				Latency: time.Since(redisStart).String(),
			}
		}
	} else {
		response.Checks["redis"] = ComponentCheck{
			Status: "not_configured",
		}
	}

	statusCode := fiber.StatusOK
	if response.Status == "unhealthy" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(response)
}

// Liveness liveness probe용 (단순 체크)
func (h *HealthHandler) Liveness(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// Readiness readiness probe용 (저장소 체크)
func (h *HealthHandler) Readiness(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()
	if _, err := h.store.Read(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("NOT READY")
	}
	return c.SendString("READY")
}
