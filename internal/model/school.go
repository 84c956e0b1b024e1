package model

import (
	"time"

	"gorm.io/datatypes"
)

// Classroom 클래스 메타데이터
type Classroom struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	InviteCode      string `json:"inviteCode"`
	MeetingSchedule string `json:"meetingSchedule"`
}

// Announcement 공지
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Assignment 과제
type Assignment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate"`
	Points      float64   `json:"points"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Resource 공유 자료 링크
type Resource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Question 수강생 질문
type Question struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// School 저장소에 보관되는 단일 집계 문서
type School struct {
	Classroom     Classroom      `json:"classroom"`
	Announcements []Announcement `json:"announcements"`
	Assignments   []Assignment   `json:"assignments"`
	Resources     []Resource     `json:"resources"`
	Questions     []Question     `json:"questions"`
	Whiteboards   []*Whiteboard  `json:"whiteboards"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// SchoolView API 응답용 (화이트보드는 요약만)
type SchoolView struct {
	Classroom     Classroom           `json:"classroom"`
	Announcements []Announcement      `json:"announcements"`
	Assignments   []Assignment        `json:"assignments"`
	Resources     []Resource          `json:"resources"`
	Questions     []Question          `json:"questions"`
	Whiteboards   []WhiteboardSummary `json:"whiteboards"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// View 요약 뷰 생성
func (s *School) View() SchoolView {
	summaries := make([]WhiteboardSummary, 0, len(s.Whiteboards))
	for _, wb := range s.Whiteboards {
		summaries = append(summaries, wb.Summary())
	}
	return SchoolView{
		Classroom:     s.Classroom,
		Announcements: s.Announcements,
		Assignments:   s.Assignments,
		Resources:     s.Resources,
		Questions:     s.Questions,
		Whiteboards:   summaries,
		UpdatedAt:     s.UpdatedAt,
	}
}

// SchoolDocument SQL 백엔드에 저장되는 행 (문서 전체를 JSON 한 칸에 보관)
type SchoolDocument struct {
	Key       string         `gorm:"primaryKey;size:64" json:"key"`
	Data      datatypes.JSON `gorm:"not null" json:"data"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (SchoolDocument) TableName() string {
	return "school_documents"
}
