package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"studio-backend/internal/logger"
	"studio-backend/internal/quiz"
	"studio-backend/internal/session"
	"studio-backend/internal/validate"
)

// OwnerCookie 퀴즈 진행 기록 소유자 쿠키
const OwnerCookie = "quiz_owner"

const ownerCookieTTL = 365 * 24 * time.Hour

// QuizHandler 적응형 퀴즈 핸들러
type QuizHandler struct {
	sessions       *session.Manager
	defaultSeconds int
	secureCookie   bool
	log            *logger.Logger
}

// NewQuizHandler QuizHandler 생성
func NewQuizHandler(sessions *session.Manager, defaultSeconds int, secureCookie bool, log *logger.Logger) *QuizHandler {
	return &QuizHandler{
		sessions:       sessions,
		defaultSeconds: defaultSeconds,
		secureCookie:   secureCookie,
		log:            log,
	}
}

// AnswerRequest 답안 제출 요청
type AnswerRequest struct {
	Selected     string   `json:"selected"`
	SelectedMany []string `json:"selectedMany"`
	Text         string   `json:"text"`
	Explain      string   `json:"explain"`
}

// ChainRequest 테마 체인 선택 요청
type ChainRequest struct {
	Option string `json:"option" validate:"notblank"`
}

// Books 책 범위와 모드 목록
func (h *QuizHandler) Books(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"books": h.sessions.Bank().BookScopes(),
		"modes": quiz.ModeLabels,
	})
}

// Progress 소유자의 숙련도 기록과 최고 점수
func (h *QuizHandler) Progress(c *fiber.Ctx) error {
	owner := h.owner(c)
	p, err := h.sessions.Progress(c.UserContext(), owner)
	if err != nil {
		h.log.Warn("load quiz progress", "owner", owner, "error", err)
		p = quiz.NewProgress()
	}
	return c.JSON(fiber.Map{"progress": p})
}

// CreateSession 설정으로 새 세션 시작
func (h *QuizHandler) CreateSession(c *fiber.Ctx) error {
	settings := quiz.DefaultSettings()
	settings.Seconds = h.defaultSeconds
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&settings); err != nil {
			return invalidBody(c)
		}
	}

	s, err := h.sessions.Create(c.UserContext(), h.owner(c), settings)
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": s.View()})
}

// GetSession 세션 현재 상태
func (h *QuizHandler) GetSession(c *fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(fiber.Map{"session": s.View()})
}

// Answer 현재 문제 채점
func (h *QuizHandler) Answer(c *fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	fb, err := s.Submit(quiz.Draft{
		Selected:     req.Selected,
		SelectedMany: req.SelectedMany,
		Text:         req.Text,
		Explain:      req.Explain,
	})
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(fiber.Map{"feedback": fb, "session": s.View()})
}

// Skip 현재 문제 건너뛰기 (오답 처리)
func (h *QuizHandler) Skip(c *fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	fb, err := s.Skip()
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(fiber.Map{"feedback": fb, "session": s.View()})
}

// Next 다음 문제 또는 결과
func (h *QuizHandler) Next(c *fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	v, err := s.Next()
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(fiber.Map{"session": v})
}

// Chain 테마 체인 보너스 선택
func (h *QuizHandler) Chain(c *fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	var req ChainRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, "Pick a chain option first.")
	}
	res, err := s.ChooseChain(req.Option)
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(fiber.Map{"chain": res, "session": s.View()})
}

// Retake 끝난 세션의 오답으로 새 세션
func (h *QuizHandler) Retake(c *fiber.Ctx) error {
	owner := h.owner(c)
	if _, err := h.lookup(c); err != nil {
		return h.sessionError(c, err)
	}
	s, err := h.sessions.Retake(c.UserContext(), owner, c.Params("id"))
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": s.View()})
}

// EndSession 세션 종료 및 정리
func (h *QuizHandler) EndSession(c *fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	h.sessions.Remove(s.ID)
	return c.JSON(fiber.Map{"ok": true})
}

// lookup 요청 소유자의 세션만 반환. 다른 소유자의 세션은 없는 것으로 취급
func (h *QuizHandler) lookup(c *fiber.Ctx) (*session.Session, error) {
	s, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return nil, err
	}
	if s.Owner != h.owner(c) {
		return nil, session.ErrNotFound
	}
	return s, nil
}

// owner 퀴즈 소유자 쿠키. 없거나 형식이 틀리면 새로 발급
func (h *QuizHandler) owner(c *fiber.Ctx) string {
	if v, ok := c.Locals(OwnerCookie).(string); ok {
		return v
	}
	owner := c.Cookies(OwnerCookie)
	if _, err := uuid.Parse(owner); err != nil {
		owner = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     OwnerCookie,
			Value:    owner,
			Path:     "/",
			MaxAge:   int(ownerCookieTTL.Seconds()),
			Secure:   h.secureCookie,
			HTTPOnly: true,
			SameSite: "Lax",
		})
	}
	c.Locals(OwnerCookie, owner)
	return owner
}

// sessionError 세션/퀴즈 오류를 HTTP 상태로
func (h *QuizHandler) sessionError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	msg := err.Error()

	switch {
	case errors.Is(err, session.ErrNotFound):
		status, msg = fiber.StatusNotFound, "Quiz session not found"
	case errors.Is(err, quiz.ErrInvalidSettings), errors.Is(err, session.ErrUnknownOption):
	case errors.Is(err, session.ErrNoCandidates):
		msg = "No questions match that setup. Try another book, lower difficulty, or broader testament scope."
	case errors.Is(err, session.ErrNothingToRetry):
		msg = "No missed questions to retake."
	case errors.Is(err, quiz.ErrNoSelection), errors.Is(err, quiz.ErrEmptyText),
		errors.Is(err, quiz.ErrEmptyMulti), errors.Is(err, quiz.ErrShortExplain),
		errors.Is(err, quiz.ErrUnsupportedType):
		msg = quiz.Message(err)
	case errors.Is(err, session.ErrFinished), errors.Is(err, session.ErrAwaitingNext),
		errors.Is(err, session.ErrNotAnswered), errors.Is(err, session.ErrChainAnswered),
		errors.Is(err, session.ErrNoChain), errors.Is(err, session.ErrClosed):
		status = fiber.StatusConflict
	default:
		h.log.Error("quiz request failed", "error", err)
		status, msg = fiber.StatusInternalServerError, "Quiz request failed"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
