package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"studio-backend/internal/canvas"
	"studio-backend/internal/logger"
	"studio-backend/internal/sanitize"
	"studio-backend/internal/store"
)

// WhiteboardHandler 다중 페이지 화이트보드 핸들러
type WhiteboardHandler struct {
	store       *store.Store
	raster      canvas.Rasterizer
	maxPDFBytes int
	log         *logger.Logger
}

// NewWhiteboardHandler WhiteboardHandler 생성. raster가 nil이면 PDF 가져오기 비활성
func NewWhiteboardHandler(st *store.Store, raster canvas.Rasterizer, maxPDFBytes int, log *logger.Logger) *WhiteboardHandler {
	return &WhiteboardHandler{store: st, raster: raster, maxPDFBytes: maxPDFBytes, log: log}
}

// GetWhiteboards id가 있으면 문서 하나, 없으면 요약 목록
func (h *WhiteboardHandler) GetWhiteboards(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		wb, err := h.store.GetWhiteboard(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Whiteboard not found"})
		}
		if err != nil {
			return h.storeFailed(c, "get", err)
		}
		return c.JSON(fiber.Map{"whiteboard": wb})
	}

	list, err := h.store.ListWhiteboards(ctx)
	if err != nil {
		return h.storeFailed(c, "list", err)
	}
	return c.JSON(fiber.Map{"whiteboards": list})
}

// CreateWhiteboard 새 화이트보드 생성
func (h *WhiteboardHandler) CreateWhiteboard(c *fiber.Ctx) error {
	body, err := parseObject(c)
	if err != nil {
		return invalidBody(c)
	}

	res, err := h.store.CreateWhiteboard(c.UserContext(), store.DecodeWhiteboardFields(body))
	if err != nil {
		return h.storeFailed(c, "create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// SaveWhiteboard 기존 화이트보드 부분 갱신
func (h *WhiteboardHandler) SaveWhiteboard(c *fiber.Ctx) error {
	body, err := parseObject(c)
	if err != nil {
		return invalidBody(c)
	}
	id := sanitize.String(body["id"], 0)
	if id == "" {
		return badRequest(c, "Whiteboard id is required")
	}

	res, err := h.store.SaveWhiteboard(c.UserContext(), id, store.DecodeWhiteboardFields(body))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Whiteboard not found"})
	case errors.Is(err, store.ErrInvalidID):
		return badRequest(c, "Whiteboard id is required")
	case err != nil:
		return h.storeFailed(c, "save", err)
	}
	return c.JSON(res)
}

// RenderPNG 저장된 페이지를 PNG로 (흰 배경)
func (h *WhiteboardHandler) RenderPNG(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		return badRequest(c, "Whiteboard id is required")
	}

	raw, err := canvas.RenderBoardPage(c.UserContext(), h.store, id, strings.TrimSpace(c.Query("page")), canvas.DefaultWidth, canvas.DefaultHeight)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Whiteboard not found"})
	case errors.Is(err, canvas.ErrUnknownPage):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Page not found"})
	case err != nil:
		h.log.Error("render whiteboard page", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to render whiteboard"})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(raw)
}

// ImportPDF multipart "file" PDF의 각 페이지를 새 페이지로 추가 (form "id")
func (h *WhiteboardHandler) ImportPDF(c *fiber.Ctx) error {
	if h.raster == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "PDF import is not available"})
	}
	id := strings.TrimSpace(c.FormValue("id"))
	if id == "" {
		return badRequest(c, "Whiteboard id is required")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "A PDF file is required")
	}
	if h.maxPDFBytes > 0 && fh.Size > int64(h.maxPDFBytes) {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "PDF is too large"})
	}
	f, err := fh.Open()
	if err != nil {
		return invalidBody(c)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return invalidBody(c)
	}

	res, err := canvas.ImportPDFToBoard(c.UserContext(), h.store, h.raster, id, fh.Filename, data)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Whiteboard not found"})
	case errors.Is(err, canvas.ErrPDFRender):
		h.log.Warn("pdf import failed", "id", id, "file", fh.Filename, "error", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Could not import that PDF. Existing pages were left unchanged.",
		})
	case err != nil:
		return h.storeFailed(c, "import", err)
	}
	return c.JSON(res)
}

func (h *WhiteboardHandler) storeFailed(c *fiber.Ctx, op string, err error) error {
	h.log.Error("whiteboard store", "op", op, "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to access whiteboards"})
}

// parseObject JSON 객체 본문. 객체가 아니면 오류
func parseObject(c *fiber.Ctx) (map[string]any, error) {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("body is not an object")
	}
	return body, nil
}
