package handler

import (
	"github.com/gofiber/fiber/v2"

	"studio-backend/internal/logger"
	"studio-backend/internal/sanitize"
	"studio-backend/internal/store"
	"studio-backend/internal/validate"
)

// SchoolHandler 학급 문서 핸들러 (공지, 과제, 자료, 질문)
type SchoolHandler struct {
	store *store.Store
	log   *logger.Logger
}

// NewSchoolHandler SchoolHandler 생성
func NewSchoolHandler(st *store.Store, log *logger.Logger) *SchoolHandler {
	return &SchoolHandler{store: st, log: log}
}

// AnnouncementRequest 공지 작성 요청
type AnnouncementRequest struct {
	Title   string `json:"title" validate:"notblank"`
	Message string `json:"message" validate:"notblank"`
	Author  string `json:"author"`
}

// AssignmentRequest 과제 작성 요청. points는 숫자 또는 숫자 문자열
type AssignmentRequest struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Points      any    `json:"points"`
	Author      string `json:"author"`
}

// ResourceRequest 자료 링크 요청
type ResourceRequest struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description"`
	URL         string `json:"url" validate:"notblank"`
	Type        string `json:"type"`
}

// QuestionRequest 질문 게시 요청
type QuestionRequest struct {
	Author  string `json:"author"`
	Message string `json:"message" validate:"notblank"`
}

// GetSchool 학급 문서 전체 (화이트보드는 요약만)
func (h *SchoolHandler) GetSchool(c *fiber.Ctx) error {
	school, err := h.store.Read(c.UserContext())
	if err != nil {
		h.log.Error("read school document", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load school data",
		})
	}
	return c.JSON(fiber.Map{"school": school.View()})
}

// CreateAnnouncement 공지 추가
func (h *SchoolHandler) CreateAnnouncement(c *fiber.Ctx) error {
	var req AnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Title and message are required")
	}

	item, err := h.store.AddAnnouncement(c.UserContext(), store.AnnouncementInput{
		Title:   req.Title,
		Message: req.Message,
		Author:  req.Author,
	})
	if err != nil {
		return h.saveFailed(c, "announcement", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"announcement": item})
}

// CreateAssignment 과제 추가
func (h *SchoolHandler) CreateAssignment(c *fiber.Ctx) error {
	var req AssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Assignment title is required")
	}

	item, err := h.store.AddAssignment(c.UserContext(), store.AssignmentInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Points:      sanitize.Number(req.Points, 0, 0, 1e6),
		Author:      req.Author,
	})
	if err != nil {
		return h.saveFailed(c, "assignment", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"assignment": item})
}

// CreateResource 자료 링크 추가 (http/https만 허용)
func (h *SchoolHandler) CreateResource(c *fiber.Ctx) error {
	var req ResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Resource title and URL are required")
	}
	if sanitize.URL(req.URL) == "" {
		return badRequest(c, "Resource URL must be an http or https link")
	}

	item, err := h.store.AddResource(c.UserContext(), store.ResourceInput{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Type:        req.Type,
	})
	if err != nil {
		return h.saveFailed(c, "resource", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"resource": item})
}

// CreateQuestion 질문 게시
func (h *SchoolHandler) CreateQuestion(c *fiber.Ctx) error {
	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Question text is required")
	}

	item, err := h.store.AddQuestion(c.UserContext(), store.QuestionInput{
		Author:  req.Author,
		Message: req.Message,
	})
	if err != nil {
		return h.saveFailed(c, "question", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"question": item})
}

func (h *SchoolHandler) saveFailed(c *fiber.Ctx, kind string, err error) error {
	h.log.Error("save school item", "kind", kind, "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to save " + kind,
	})
}

func invalidBody(c *fiber.Ctx) error {
	return badRequest(c, "Invalid request body")
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
