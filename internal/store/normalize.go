package store

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strconv"
	"time"

	"studio-backend/internal/model"
	"studio-backend/internal/sanitize"
)

var errNotObject = errors.New("school document is not a JSON object")

var seedTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultSchool 초기 시드 문서
func DefaultSchool() model.School {
	return model.School{
		Classroom: defaultClassroom(),
		Announcements: []model.Announcement{{
			ID:        "announcement-welcome",
			Title:     "Welcome to Learning Circle",
			Message:   "Start by reading the resources list, then pick one assignment to begin this week.",
			Author:    model.DefaultInstructor,
			CreatedAt: seedTime,
		}},
		Assignments: []model.Assignment{{
			ID:          "assignment-first-reflection",
			Title:       "First Reflection",
			Description: "Write one paragraph about what you want to learn this month.",
			Points:      10,
			Author:      model.DefaultInstructor,
			CreatedAt:   seedTime,
		}},
		Resources: []model.Resource{{
			ID:          "resource-community-guide",
			Title:       "Community Study Guide",
			Description: "A shared document to track topics and weekly goals.",
			URL:         "https://example.com/study-guide",
			Type:        "Guide",
			CreatedAt:   seedTime,
		}},
		Questions:   []model.Question{},
		Whiteboards: []*model.Whiteboard{},
		UpdatedAt:   seedTime,
	}
}

func defaultClassroom() model.Classroom {
	return model.Classroom{
		Name:            "Learning Circle",
		Description:     "A private class stream for assignments, announcements, shared resources, and questions.",
		InviteCode:      "LEARN-WITH-ME",
		MeetingSchedule: "Flexible schedule. Use announcements for live sessions.",
	}
}

// DecodeSchool 저장된 바이트를 검증된 문서로 변환. JSON 객체가 아니면 에러
func DecodeSchool(data []byte) (model.School, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.School{}, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.School{}, errNotObject
	}
	return normalizeSchool(obj), nil
}

func normalizeSchool(raw map[string]any) model.School {
	school := DefaultSchool()

	if c, ok := raw["classroom"].(map[string]any); ok {
		def := school.Classroom
		school.Classroom = model.Classroom{
			Name:            orDefault(sanitize.String(c["name"], 80), def.Name),
			Description:     orDefault(sanitize.String(c["description"], 280), def.Description),
			InviteCode:      orDefault(sanitize.String(c["inviteCode"], 30), def.InviteCode),
			MeetingSchedule: orDefault(sanitize.String(c["meetingSchedule"], 200), def.MeetingSchedule),
		}
	}

	if items, ok := raw["announcements"].([]any); ok {
		school.Announcements = make([]model.Announcement, 0, len(items))
		for _, it := range objects(items) {
			a := model.Announcement{
				ID:        sanitize.String(it["id"], 80),
				Title:     sanitize.String(it["title"], 120),
				Message:   sanitize.String(it["message"], model.MaxMessageLength),
				Author:    sanitize.String(it["author"], model.MaxAuthorLength),
				CreatedAt: parseTime(it["createdAt"]),
			}
			if a.ID != "" && a.Title != "" && a.Message != "" {
				school.Announcements = append(school.Announcements, a)
			}
		}
	}

	if items, ok := raw["assignments"].([]any); ok {
		school.Assignments = make([]model.Assignment, 0, len(items))
		for _, it := range objects(items) {
			a := model.Assignment{
				ID:          sanitize.String(it["id"], 80),
				Title:       sanitize.String(it["title"], 120),
				Description: sanitize.String(it["description"], model.MaxMessageLength),
				DueDate:     sanitize.Date(it["dueDate"]),
				Points:      sanitize.Number(it["points"], 0, math.Inf(-1), math.Inf(1)),
				Author:      sanitize.String(it["author"], model.MaxAuthorLength),
				CreatedAt:   parseTime(it["createdAt"]),
			}
			if a.ID != "" && a.Title != "" {
				school.Assignments = append(school.Assignments, a)
			}
		}
	}

	if items, ok := raw["resources"].([]any); ok {
		school.Resources = make([]model.Resource, 0, len(items))
		for _, it := range objects(items) {
			r := model.Resource{
				ID:          sanitize.String(it["id"], 80),
				Title:       sanitize.String(it["title"], 120),
				Description: sanitize.String(it["description"], model.MaxResourceDescriptionLength),
				URL:         sanitize.URL(it["url"]),
				Type:        orDefault(sanitize.String(it["type"], model.MaxResourceTypeLength), model.DefaultResourceType),
				CreatedAt:   parseTime(it["createdAt"]),
			}
			if r.ID != "" && r.Title != "" && r.URL != "" {
				school.Resources = append(school.Resources, r)
			}
		}
	}

	if items, ok := raw["questions"].([]any); ok {
		school.Questions = make([]model.Question, 0, len(items))
		for _, it := range objects(items) {
			q := model.Question{
				ID:        sanitize.String(it["id"], 80),
				Author:    sanitize.String(it["author"], model.MaxAuthorLength),
				Message:   sanitize.String(it["message"], model.MaxMessageLength),
				CreatedAt: parseTime(it["createdAt"]),
			}
			if q.ID != "" && q.Author != "" && q.Message != "" {
				school.Questions = append(school.Questions, q)
			}
		}
	}

	if items, ok := raw["whiteboards"].([]any); ok {
		school.Whiteboards = make([]*model.Whiteboard, 0, len(items))
		for _, it := range objects(items) {
			if wb := decodeWhiteboard(it); wb.ID != "" {
				school.Whiteboards = append(school.Whiteboards, wb)
			}
		}
	}
	sortWhiteboards(school.Whiteboards)

	if t := parseTime(raw["updatedAt"]); !t.IsZero() {
		school.UpdatedAt = t
	}
	return school
}

// decodeWhiteboard 임의 JSON 객체 -> 불변식을 만족하는 화이트보드
func decodeWhiteboard(raw map[string]any) *model.Whiteboard {
	drawings := decodePageDrawings(raw["pageDrawings"])
	wb := &model.Whiteboard{
		ID:           sanitize.String(raw["id"], model.MaxWhiteboardIDLength),
		Title:        sanitize.String(raw["title"], model.MaxWhiteboardTitleLength),
		Author:       sanitize.String(raw["author"], model.MaxAuthorLength),
		Paths:        decodeStrokes(raw["paths"]),
		PageDrawings: drawings,
		PreviewImage: sanitize.DataURLImage(raw["previewImage"]),
		CreatedAt:    parseTime(raw["createdAt"]),
		UpdatedAt:    parseTime(raw["updatedAt"]),
	}
	settle(wb, decodePageOrder(raw["pageOrder"]), decodePageLabels(raw["pageLabels"]), sanitize.PageKey(raw["activePageKey"]))
	return wb
}

// settle 페이지 관련 불변식 재계산.
// drawings가 비어 있으면 wb.Paths로 page-1을 만들고, order는 중복 제거 후 누락 키를 뒤에 붙인다.
func settle(wb *model.Whiteboard, order []string, labels map[string]string, activeCandidate string) {
	wb.Title = orDefault(sanitize.String(wb.Title, model.MaxWhiteboardTitleLength), model.DefaultWhiteboardTitle)
	wb.Author = orDefault(sanitize.String(wb.Author, model.MaxAuthorLength), model.DefaultAuthor)

	drawings := make(map[string][]model.Stroke, len(wb.PageDrawings))
	for key, strokes := range wb.PageDrawings {
		safe := sanitize.PageKey(key)
		if safe == "" {
			continue
		}
		drawings[safe] = cleanStrokes(strokes)
	}
	if len(drawings) == 0 {
		drawings[model.DefaultPageKey] = cleanStrokes(wb.Paths)
	}
	wb.PageDrawings = drawings

	seen := make(map[string]bool, len(drawings))
	nextOrder := make([]string, 0, len(drawings))
	for _, key := range order {
		key = sanitize.PageKey(key)
		if _, ok := drawings[key]; !ok || seen[key] {
			continue
		}
		seen[key] = true
		nextOrder = append(nextOrder, key)
	}
	for _, key := range sortedKeys(drawings) {
		if !seen[key] {
			nextOrder = append(nextOrder, key)
		}
	}
	wb.PageOrder = nextOrder

	nextLabels := make(map[string]string, len(nextOrder))
	for i, key := range nextOrder {
		nextLabels[key] = orDefault(sanitize.String(labels[key], model.MaxPageLabelLength), model.DefaultPageLabel(i))
	}
	wb.PageLabels = nextLabels

	if activeCandidate != "" && wb.HasPage(activeCandidate) {
		wb.ActivePageKey = activeCandidate
	} else {
		wb.ActivePageKey = nextOrder[0]
	}
	wb.Paths = model.CloneStrokes(drawings[wb.ActivePageKey])
	wb.PreviewImage = sanitize.DataURLImage(wb.PreviewImage)
}

// cleanStrokes 획/점 개수 제한과 값 범위 보정. 점이 없는 획은 버린다
func cleanStrokes(in []model.Stroke) []model.Stroke {
	if len(in) > model.MaxStrokesPerPage {
		in = in[:model.MaxStrokesPerPage]
	}
	out := make([]model.Stroke, 0, len(in))
	for _, s := range in {
		points := s.Points
		if len(points) > model.MaxPointsPerStroke {
			points = points[:model.MaxPointsPerStroke]
		}
		if len(points) == 0 {
			continue
		}
		clean := make([]model.Point, len(points))
		for i, p := range points {
			clean[i] = model.Point{X: clampCoord(p.X), Y: clampCoord(p.Y)}
		}
		out = append(out, model.Stroke{
			Points:      clean,
			StrokeWidth: sanitize.Number(s.StrokeWidth, model.DefaultStrokeWidth, model.MinStrokeWidth, model.MaxStrokeWidth),
			StrokeColor: sanitize.StrokeColor(s.StrokeColor),
			DrawMode:    s.DrawMode,
		})
	}
	return out
}

func clampCoord(v float64) float64 {
	return sanitize.Number(v, 0, -model.MaxCoordinate, model.MaxCoordinate)
}

// decodeStrokes JSON 배열이 아니면 nil
func decodeStrokes(v any) []model.Stroke {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	if len(items) > model.MaxStrokesPerPage {
		items = items[:model.MaxStrokesPerPage]
	}
	out := make([]model.Stroke, 0, len(items))
	for _, item := range objects(items) {
		rawPoints, _ := item["paths"].([]any)
		if len(rawPoints) > model.MaxPointsPerStroke {
			rawPoints = rawPoints[:model.MaxPointsPerStroke]
		}
		points := make([]model.Point, 0, len(rawPoints))
		for _, rp := range rawPoints {
			p, _ := rp.(map[string]any)
			points = append(points, model.Point{
				X: sanitize.Number(p["x"], 0, -model.MaxCoordinate, model.MaxCoordinate),
				Y: sanitize.Number(p["y"], 0, -model.MaxCoordinate, model.MaxCoordinate),
			})
		}
		if len(points) == 0 {
			continue
		}
		out = append(out, model.Stroke{
			Points:      points,
			StrokeWidth: sanitize.Number(item["strokeWidth"], model.DefaultStrokeWidth, model.MinStrokeWidth, model.MaxStrokeWidth),
			StrokeColor: sanitize.StrokeColor(item["strokeColor"]),
			DrawMode:    truthy(item["drawMode"]),
		})
	}
	return out
}

// decodePageDrawings JSON 객체가 아니면 nil
func decodePageDrawings(v any) map[string][]model.Stroke {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string][]model.Stroke, len(obj))
	for key, strokes := range obj {
		safe := sanitize.PageKey(key)
		if safe == "" {
			continue
		}
		s := decodeStrokes(strokes)
		if s == nil {
			s = []model.Stroke{}
		}
		out[safe] = s
	}
	return out
}

// decodePageOrder JSON 배열이 아니면 nil
func decodePageOrder(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if key := sanitize.PageKey(item); key != "" {
			out = append(out, key)
		}
	}
	return out
}

// decodePageLabels JSON 객체가 아니면 nil
func decodePageLabels(v any) map[string]string {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(obj))
	for key, label := range obj {
		out[key] = sanitize.String(label, model.MaxPageLabelLength)
	}
	return out
}

func objects(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func parseTime(v any) time.Time {
	s := sanitize.String(v, 40)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	case nil:
		return false
	default:
		return true
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func sortWhiteboards(list []*model.Whiteboard) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
}

// sortedKeys 숫자 접미사를 고려한 정렬 (page-2 < page-10)
func sortedKeys(m map[string][]model.Stroke) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return naturalLess(keys[i], keys[j]) })
	return keys
}

func naturalLess(a, b string) bool {
	pa, na := splitNumericSuffix(a)
	pb, nb := splitNumericSuffix(b)
	if pa != pb || na < 0 || nb < 0 {
		return a < b
	}
	return na < nb
}

func splitNumericSuffix(s string) (string, int) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return s, -1
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, -1
	}
	return s[:i], n
}
