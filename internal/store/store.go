package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studio-backend/internal/logger"
	"studio-backend/internal/model"
	"studio-backend/internal/sanitize"
)

var (
	ErrNotFound  = errors.New("whiteboard not found")
	ErrInvalidID = errors.New("whiteboard id is required")
)

// Store 학교 문서 저장소.
// 같은 프로세스 안의 read-modify-write는 mu로 직렬화되고, 프로세스 간 동시 저장은 마지막 쓰기가 남는다.
type Store struct {
	backend Backend
	log     *logger.Logger
	now     func() time.Time
	mu      sync.Mutex
}

// Option Store 옵션
type Option func(*Store)

// WithClock 테스트용 시계 주입
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(backend Backend, log *logger.Logger, opts ...Option) *Store {
	s := &Store{backend: backend, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend 하위 저장 계층
func (s *Store) Backend() Backend {
	return s.backend
}

// WhiteboardFields 생성/저장 요청 필드. nil 필드는 "지정 안 됨"
type WhiteboardFields struct {
	Title         *string
	Author        *string
	Paths         []model.Stroke
	PageDrawings  map[string][]model.Stroke
	PageOrder     []string
	PageLabels    map[string]string
	ActivePageKey *string
	PreviewImage  *string
}

// DecodeWhiteboardFields JSON 요청 본문(map)을 필드로 변환. 형식이 틀린 값은 지정 안 된 것으로 본다
func DecodeWhiteboardFields(body map[string]any) WhiteboardFields {
	var f WhiteboardFields
	if v, ok := body["title"]; ok {
		t := sanitize.String(v, model.MaxWhiteboardTitleLength)
		f.Title = &t
	}
	if v, ok := body["author"]; ok {
		a := sanitize.String(v, model.MaxAuthorLength)
		f.Author = &a
	}
	f.Paths = decodeStrokes(body["paths"])
	f.PageDrawings = decodePageDrawings(body["pageDrawings"])
	f.PageOrder = decodePageOrder(body["pageOrder"])
	f.PageLabels = decodePageLabels(body["pageLabels"])
	if v, ok := body["activePageKey"]; ok {
		k := sanitize.PageKey(v)
		f.ActivePageKey = &k
	}
	if v, ok := body["previewImage"].(string); ok {
		f.PreviewImage = &v
	}
	return f
}

// WhiteboardResult 생성/저장 결과
type WhiteboardResult struct {
	Whiteboard *model.Whiteboard       `json:"whiteboard"`
	Summary    model.WhiteboardSummary `json:"summary"`
}

// Read 문서 전체 조회. 문서가 없거나 손상됐으면 기본 문서로 다시 채운다
func (s *Store) Read(ctx context.Context) (model.School, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

func (s *Store) read(ctx context.Context) (model.School, error) {
	data, err := s.backend.Load(ctx)
	if err != nil && !errors.Is(err, ErrNoDocument) {
		return model.School{}, err
	}
	if err == nil {
		school, decodeErr := DecodeSchool(data)
		if decodeErr == nil {
			return school, nil
		}
		s.log.Warn("school document corrupt, reseeding", "error", decodeErr)
	}

	seed := DefaultSchool()
	if err := s.write(ctx, &seed); err != nil {
		return model.School{}, err
	}
	return seed, nil
}

func (s *Store) write(ctx context.Context, school *model.School) error {
	data, err := json.MarshalIndent(school, "", "  ")
	if err != nil {
		return fmt.Errorf("encode school document: %w", err)
	}
	return s.backend.Save(ctx, data)
}

// mutate read-modify-write 한 번을 잠금 아래에서 수행
func (s *Store) mutate(ctx context.Context, fn func(*model.School) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	school, err := s.read(ctx)
	if err != nil {
		return err
	}
	if err := fn(&school); err != nil {
		return err
	}
	return s.write(ctx, &school)
}

// ListWhiteboards updatedAt 내림차순 요약 목록
func (s *Store) ListWhiteboards(ctx context.Context) ([]model.WhiteboardSummary, error) {
	school, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.WhiteboardSummary, 0, len(school.Whiteboards))
	for _, wb := range school.Whiteboards {
		out = append(out, wb.Summary())
	}
	return out, nil
}

// GetWhiteboard id로 조회. 없으면 ErrNotFound
func (s *Store) GetWhiteboard(ctx context.Context, id string) (*model.Whiteboard, error) {
	id = sanitize.String(id, model.MaxWhiteboardIDLength)
	if id == "" {
		return nil, ErrNotFound
	}
	school, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	for _, wb := range school.Whiteboards {
		if wb.ID == id {
			return wb.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// CreateWhiteboard 새 문서를 맨 앞에 추가하고 최근 120개만 유지
func (s *Store) CreateWhiteboard(ctx context.Context, f WhiteboardFields) (*WhiteboardResult, error) {
	var created *model.Whiteboard
	err := s.mutate(ctx, func(school *model.School) error {
		now := s.now().UTC()
		wb := &model.Whiteboard{
			ID:           newID("whiteboard", now),
			Paths:        f.Paths,
			PageDrawings: f.PageDrawings,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if f.Title != nil {
			wb.Title = *f.Title
		}
		if f.Author != nil {
			wb.Author = *f.Author
		}
		if f.PreviewImage != nil {
			wb.PreviewImage = *f.PreviewImage
		}
		active := ""
		if f.ActivePageKey != nil {
			active = *f.ActivePageKey
		}
		settle(wb, f.PageOrder, f.PageLabels, active)

		school.Whiteboards = append([]*model.Whiteboard{wb}, school.Whiteboards...)
		if len(school.Whiteboards) > model.MaxWhiteboards {
			school.Whiteboards = school.Whiteboards[:model.MaxWhiteboards]
		}
		school.UpdatedAt = now
		created = wb.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("whiteboard created", "id", created.ID, "pages", len(created.PageOrder))
	return &WhiteboardResult{Whiteboard: created, Summary: created.Summary()}, nil
}

// SaveWhiteboard 부분 갱신. 지정하지 않은 필드는 기존 값을 유지한다
func (s *Store) SaveWhiteboard(ctx context.Context, id string, f WhiteboardFields) (*WhiteboardResult, error) {
	id = sanitize.String(id, model.MaxWhiteboardIDLength)
	if id == "" {
		return nil, ErrInvalidID
	}

	var saved *model.Whiteboard
	err := s.mutate(ctx, func(school *model.School) error {
		index := -1
		for i, wb := range school.Whiteboards {
			if wb.ID == id {
				index = i
				break
			}
		}
		if index == -1 {
			return ErrNotFound
		}
		existing := school.Whiteboards[index]
		next := mergeWhiteboard(existing, f)
		next.UpdatedAt = s.now().UTC()

		school.Whiteboards[index] = next
		sortWhiteboards(school.Whiteboards)
		school.UpdatedAt = next.UpdatedAt
		saved = next.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("whiteboard saved", "id", saved.ID, "strokes", saved.PathCount())
	return &WhiteboardResult{Whiteboard: saved, Summary: saved.Summary()}, nil
}

func mergeWhiteboard(existing *model.Whiteboard, f WhiteboardFields) *model.Whiteboard {
	next := existing.Clone()

	if f.Title != nil && strings.TrimSpace(*f.Title) != "" {
		next.Title = *f.Title
	}
	if f.Author != nil && strings.TrimSpace(*f.Author) != "" {
		next.Author = *f.Author
	}

	order := existing.PageOrder
	if f.PageDrawings != nil {
		next.PageDrawings = make(map[string][]model.Stroke, len(f.PageDrawings))
		for k, v := range f.PageDrawings {
			next.PageDrawings[k] = cleanStrokes(v)
		}
		if len(next.PageDrawings) == 0 {
			next.PageDrawings[model.DefaultPageKey] = []model.Stroke{}
		}
	}
	if f.PageOrder != nil {
		order = f.PageOrder
	}
	labels := existing.PageLabels
	if f.PageLabels != nil {
		labels = f.PageLabels
	}

	// active 후보를 먼저 확정한 뒤 paths를 그 페이지에 기록
	settle(next, order, labels, existing.ActivePageKey)
	if f.ActivePageKey != nil && next.HasPage(*f.ActivePageKey) {
		next.ActivePageKey = *f.ActivePageKey
	}
	if f.Paths != nil {
		next.PageDrawings[next.ActivePageKey] = cleanStrokes(f.Paths)
	}
	next.Paths = model.CloneStrokes(next.PageDrawings[next.ActivePageKey])

	if f.PreviewImage != nil {
		if strings.TrimSpace(*f.PreviewImage) == "" {
			next.PreviewImage = ""
		} else {
			next.PreviewImage = sanitize.DataURLImage(*f.PreviewImage)
		}
	}
	return next
}

// AnnouncementInput 공지 작성 입력
type AnnouncementInput struct {
	Title   string
	Message string
	Author  string
}

func (s *Store) AddAnnouncement(ctx context.Context, in AnnouncementInput) (model.Announcement, error) {
	var item model.Announcement
	err := s.mutate(ctx, func(school *model.School) error {
		now := s.now().UTC()
		item = model.Announcement{
			ID:        newID("announcement", now),
			Title:     sanitize.String(in.Title, 120),
			Message:   sanitize.String(in.Message, model.MaxMessageLength),
			Author:    orDefault(sanitize.String(in.Author, model.MaxAuthorLength), model.DefaultInstructor),
			CreatedAt: now,
		}
		school.Announcements = prepend(school.Announcements, item, model.MaxAnnouncements)
		school.UpdatedAt = now
		return nil
	})
	return item, err
}

// AssignmentInput 과제 작성 입력
type AssignmentInput struct {
	Title       string
	Description string
	DueDate     string
	Points      float64
	Author      string
}

func (s *Store) AddAssignment(ctx context.Context, in AssignmentInput) (model.Assignment, error) {
	var item model.Assignment
	err := s.mutate(ctx, func(school *model.School) error {
		now := s.now().UTC()
		points := 0.0
		if !math.IsNaN(in.Points) && !math.IsInf(in.Points, 0) {
			points = math.Max(0, math.Round(in.Points))
		}
		item = model.Assignment{
			ID:          newID("assignment", now),
			Title:       sanitize.String(in.Title, 120),
			Description: sanitize.String(in.Description, model.MaxMessageLength),
			DueDate:     sanitize.Date(in.DueDate),
			Points:      points,
			Author:      orDefault(sanitize.String(in.Author, model.MaxAuthorLength), model.DefaultInstructor),
			CreatedAt:   now,
		}
		school.Assignments = prepend(school.Assignments, item, model.MaxAssignments)
		school.UpdatedAt = now
		return nil
	})
	return item, err
}

// ResourceInput 자료 링크 입력
type ResourceInput struct {
	Title       string
	Description string
	URL         string
	Type        string
}

func (s *Store) AddResource(ctx context.Context, in ResourceInput) (model.Resource, error) {
	var item model.Resource
	err := s.mutate(ctx, func(school *model.School) error {
		now := s.now().UTC()
		item = model.Resource{
			ID:          newID("resource", now),
			Title:       sanitize.String(in.Title, 120),
			Description: sanitize.String(in.Description, model.MaxResourceDescriptionLength),
			URL:         sanitize.URL(in.URL),
			Type:        orDefault(sanitize.String(in.Type, model.MaxResourceTypeLength), model.DefaultResourceType),
			CreatedAt:   now,
		}
		school.Resources = prepend(school.Resources, item, model.MaxResources)
		school.UpdatedAt = now
		return nil
	})
	return item, err
}

// QuestionInput 질문 입력
type QuestionInput struct {
	Author  string
	Message string
}

func (s *Store) AddQuestion(ctx context.Context, in QuestionInput) (model.Question, error) {
	var item model.Question
	err := s.mutate(ctx, func(school *model.School) error {
		now := s.now().UTC()
		item = model.Question{
			ID:        newID("question", now),
			Author:    orDefault(sanitize.String(in.Author, model.MaxAuthorLength), model.DefaultAuthor),
			Message:   sanitize.String(in.Message, model.MaxMessageLength),
			CreatedAt: now,
		}
		school.Questions = prepend(school.Questions, item, model.MaxQuestions)
		school.UpdatedAt = now
		return nil
	})
	return item, err
}

func prepend[T any](list []T, item T, limit int) []T {
	out := append([]T{item}, list...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// newID prefix-<base36 ms>-<8 hex>
func newID(prefix string, now time.Time) string {
	entropy := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return prefix + "-" + strconv.FormatInt(now.UnixMilli(), 36) + "-" + entropy
}
