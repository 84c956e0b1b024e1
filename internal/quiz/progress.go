package quiz

import (
	"encoding/json"
	"time"
)

// ProgressVersion 저장 레코드 버전
const ProgressVersion = 1

// IntervalLadder strength 단계별 다음 출제 간격
var IntervalLadder = []time.Duration{
	0,
	6 * time.Hour,
	24 * time.Hour,
	3 * 24 * time.Hour,
	7 * 24 * time.Hour,
	14 * 24 * time.Hour,
}

// Result values
const (
	ResultCorrect   = "correct"
	ResultIncorrect = "incorrect"
)

// Profile 문제별 숙련도 기록
type Profile struct {
	Attempts   int        `json:"attempts"`
	Correct    int        `json:"correct"`
	Strength   int        `json:"strength"`
	Streak     int        `json:"streak"`
	LastResult string     `json:"lastResult,omitempty"`
	LastSeen   *time.Time `json:"lastSeen"`
	DueAt      *time.Time `json:"dueAt"`
}

// Progress 사용자별 저장 레코드
type Progress struct {
	Version    int                 `json:"version"`
	UpdatedAt  *time.Time          `json:"updatedAt"`
	Questions  map[string]*Profile `json:"questions"`
	HighScores map[string]int      `json:"highScores"`
}

// NewProgress 빈 레코드 (모든 모드 최고점 0)
func NewProgress() *Progress {
	p := &Progress{
		Version:    ProgressVersion,
		Questions:  map[string]*Profile{},
		HighScores: map[string]int{},
	}
	for _, m := range Modes {
		p.HighScores[m] = 0
	}
	return p
}

// DecodeProgress 손상되었거나 형식이 다르면 빈 레코드를 돌려준다
func DecodeProgress(data []byte) *Progress {
	out := NewProgress()
	var raw struct {
		UpdatedAt  *time.Time                 `json:"updatedAt"`
		Questions  map[string]json.RawMessage `json:"questions"`
		HighScores map[string]json.RawMessage `json:"highScores"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return out
	}
	out.UpdatedAt = raw.UpdatedAt
	for id, msg := range raw.Questions {
		var p Profile
		if err := json.Unmarshal(msg, &p); err != nil {
			continue
		}
		p.Strength = clampStrength(p.Strength)
		out.Questions[id] = &p
	}
	for mode, msg := range raw.HighScores {
		var score float64
		if err := json.Unmarshal(msg, &score); err == nil {
			out.HighScores[mode] = int(score)
		}
	}
	return out
}

// Profile 기록이 없으면 0값 프로필
func (p *Progress) Profile(id string) Profile {
	if entry, ok := p.Questions[id]; ok && entry != nil {
		return *entry
	}
	return Profile{}
}

// Record 채점 결과 반영. strength는 ±1, dueAt = now + interval[strength]
func (p *Progress) Record(id string, correct bool, now time.Time) Profile {
	cur := p.Profile(id)
	next := cur
	next.Attempts++
	if correct {
		next.Correct++
		next.Strength = clampStrength(cur.Strength + 1)
		next.Streak = cur.Streak + 1
		next.LastResult = ResultCorrect
	} else {
		next.Strength = clampStrength(cur.Strength - 1)
		next.Streak = 0
		next.LastResult = ResultIncorrect
	}
	seen := now.UTC()
	due := seen.Add(IntervalLadder[next.Strength])
	next.LastSeen = &seen
	next.DueAt = &due

	p.Questions[id] = &next
	p.UpdatedAt = &seen
	return next
}

// RecordHighScore 더 높을 때만 갱신. 갱신 여부 반환
func (p *Progress) RecordHighScore(mode string, score int, now time.Time) bool {
	if score <= p.HighScores[mode] {
		return false
	}
	p.HighScores[mode] = score
	t := now.UTC()
	p.UpdatedAt = &t
	return true
}

func clampStrength(s int) int {
	return max(0, min(len(IntervalLadder)-1, s))
}

// Clone 저장용 깊은 복사
func (p *Progress) Clone() *Progress {
	out := &Progress{
		Version:    p.Version,
		Questions:  make(map[string]*Profile, len(p.Questions)),
		HighScores: make(map[string]int, len(p.HighScores)),
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		out.UpdatedAt = &t
	}
	for id, prof := range p.Questions {
		if prof == nil {
			continue
		}
		c := *prof
		if prof.LastSeen != nil {
			t := *prof.LastSeen
			c.LastSeen = &t
		}
		if prof.DueAt != nil {
			t := *prof.DueAt
			c.DueAt = &t
		}
		out.Questions[id] = &c
	}
	for m, s := range p.HighScores {
		out.HighScores[m] = s
	}
	return out
}
