package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"studio-backend/internal/logger"
	"studio-backend/internal/quiz"
)

// DefaultIdleTTL 조작이 없는 세션 정리 기준
const DefaultIdleTTL = 2 * time.Hour

// Manager 진행 중인 퀴즈 세션 레지스트리
type Manager struct {
	bank  *quiz.Bank
	store quiz.ProgressStore
	log   *logger.Logger

	now       func() time.Time
	newRand   func() *rand.Rand
	tickEvery time.Duration
	idleTTL   time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option Manager 설정
type Option func(*Manager)

// WithClock 테스트용 시계
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRand 세션마다 사용할 난수원
func WithRand(newRand func() *rand.Rand) Option {
	return func(m *Manager) { m.newRand = newRand }
}

// WithTick 타이머 간격. 0이면 타이머를 돌리지 않는다 (Tick 직접 호출)
func WithTick(d time.Duration) Option {
	return func(m *Manager) { m.tickEvery = d }
}

// WithIdleTTL 유휴 세션 정리 기준
func WithIdleTTL(d time.Duration) Option {
	return func(m *Manager) { m.idleTTL = d }
}

func NewManager(bank *quiz.Bank, store quiz.ProgressStore, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		bank:      bank,
		store:     store,
		log:       log,
		now:       time.Now,
		newRand:   func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) },
		tickEvery: time.Second,
		idleTTL:   DefaultIdleTTL,
		sessions:  map[string]*Session{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bank 문제 은행
func (m *Manager) Bank() *quiz.Bank {
	return m.bank
}

// Progress owner의 저장된 진행 기록
func (m *Manager) Progress(ctx context.Context, owner string) (*quiz.Progress, error) {
	return m.store.Load(ctx, owner)
}

// Create 설정 검증, 후보 필터링 후 첫 문제를 제시한 세션
func (m *Manager) Create(ctx context.Context, owner string, settings quiz.Settings) (*Session, error) {
	settings = settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	candidates := quiz.Filter(m.bank, settings)
	return m.open(ctx, owner, settings, candidates, nil)
}

// Retake 끝난 세션의 오답만으로 새 세션
func (m *Manager) Retake(ctx context.Context, owner, id string) (*Session, error) {
	prev, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if prev.State() != StateFinished {
		return nil, fmt.Errorf("retake %s: %w", id, ErrNotAnswered)
	}
	missed := prev.Missed()
	if len(missed) == 0 {
		return nil, ErrNothingToRetry
	}
	settings := prev.Settings
	settings.Length = quiz.RetakeLength(len(missed))
	candidates := quiz.Filter(m.bank, settings)
	return m.open(ctx, owner, settings, candidates, missed)
}

func (m *Manager) open(ctx context.Context, owner string, settings quiz.Settings, candidates, missed []quiz.Question) (*Session, error) {
	available := len(candidates)
	if missed != nil {
		available = len(missed)
	}
	settings.Length = min(settings.Length, available)
	if settings.Length <= 0 {
		return nil, ErrNoCandidates
	}

	progress, err := m.store.Load(ctx, owner)
	if err != nil {
		m.log.Warn("quiz progress unavailable, starting fresh", "owner", owner, "error", err)
		progress = quiz.NewProgress()
	}

	s := newSession(config{
		id:        uuid.New().String(),
		owner:     owner,
		settings:  settings,
		bank:      m.bank,
		rng:       m.newRand(),
		now:       m.now,
		progress:  progress,
		save:      m.saver(owner),
		pool:      candidates,
		missed:    missed,
		tickEvery: m.tickEvery,
	})

	m.sweep()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	s.start()
	m.log.Info("quiz session started", "session", s.ID, "mode", settings.Mode, "length", settings.Length)
	return s, nil
}

func (m *Manager) saver(owner string) func(*quiz.Progress) {
	return func(p *quiz.Progress) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.store.Save(ctx, owner, p); err != nil {
			m.log.Warn("failed to save quiz progress", "owner", owner, "error", err)
		}
	}
}

// Get id로 세션 조회
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Remove 세션 정리 후 제거
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Count 등록된 세션 수
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// sweep idleTTL 동안 조작이 없던 세션 제거
func (m *Manager) sweep() {
	if m.idleTTL <= 0 {
		return
	}
	cutoff := m.now().Add(-m.idleTTL)
	var stale []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			stale = append(stale, s)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
}

// Close 모든 세션 정리
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
