package model

// Role 접근 권한 등급
type Role string

const (
	RoleNone    Role = "none"
	RoleVisitor Role = "visitor"
	RoleFull    Role = "full"
)

func (r Role) String() string {
	return string(r)
}

// CanRead visitor 이상
func (r Role) CanRead() bool {
	return r == RoleVisitor || r == RoleFull
}

// CanWrite full 전용
func (r Role) CanWrite() bool {
	return r == RoleFull
}

// ParseRole 알 수 없는 값은 RoleNone
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleVisitor, RoleFull:
		return Role(s)
	default:
		return RoleNone
	}
}

// 화이트보드 문서 제한
const (
	MaxWhiteboards       = 120
	MaxStrokesPerPage    = 350
	MaxPointsPerStroke   = 2400
	MaxCoordinate        = 100000
	MinStrokeWidth       = 1
	MaxStrokeWidth       = 60
	DefaultStrokeWidth   = 4
	MaxPreviewImageBytes = 650000

	MaxWhiteboardIDLength    = 80
	MaxWhiteboardTitleLength = 120
	MaxAuthorLength          = 60
	MaxPageLabelLength       = 120

	DefaultWhiteboardTitle = "Untitled Whiteboard"
	DefaultAuthor          = "Member"
	DefaultInstructor      = "Instructor"
	DefaultPageKey         = "page-1"
)

// 학교 문서 보관 한도
const (
	MaxAnnouncements = 60
	MaxAssignments   = 120
	MaxResources     = 120
	MaxQuestions     = 200

	MaxMessageLength             = 1200
	MaxResourceDescriptionLength = 500
	MaxResourceTypeLength        = 40
	DefaultResourceType          = "Resource"
)
