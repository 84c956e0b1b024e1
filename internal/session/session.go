package session

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"studio-backend/internal/quiz"
)

var (
	ErrNotFound       = errors.New("quiz session not found")
	ErrFinished       = errors.New("quiz session already finished")
	ErrAwaitingNext   = errors.New("answer already graded, advance to the next question")
	ErrNotAnswered    = errors.New("current question has not been answered")
	ErrNoCandidates   = errors.New("no questions match that setup")
	ErrNoChain        = errors.New("no theme chain is open")
	ErrChainAnswered  = errors.New("theme chain already answered")
	ErrUnknownOption  = errors.New("option is not part of the theme chain")
	ErrClosed         = errors.New("quiz session closed")
	ErrNothingToRetry = errors.New("no missed questions to retake")
)

// State 문제 단위 상태
type State int

const (
	StatePresented State = iota // 문제 제시, 타이머 진행 중
	StateFeedback               // 채점 완료, 피드백 표시
	StateFinished               // 세션 종료
	StateClosed                 // 정리됨
)

// String 상태를 문자열로 반환
func (s State) String() string {
	switch s {
	case StatePresented:
		return "presented"
	case StateFeedback:
		return "feedback"
	case StateFinished:
		return "finished"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalText JSON에서 문자열로
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Review 답안 하나의 기록
type Review struct {
	QuestionID    string   `json:"questionId"`
	Prompt        string   `json:"prompt"`
	Category      string   `json:"category"`
	Testament     string   `json:"testament"`
	Response      string   `json:"response"`
	Ratio         float64  `json:"ratio"`
	Correct       bool     `json:"correct"`
	Earned        int      `json:"earned"`
	Possible      int      `json:"possible"`
	Elapsed       int      `json:"elapsed"`
	CorrectAnswer string   `json:"correctAnswer"`
	Reference     string   `json:"reference"`
	Explanation   string   `json:"explanation"`
	ExplainRatio  *float64 `json:"explainRatio"`
	ExplainText   *string  `json:"explainText"`
}

// QuestionView 정답을 제외한 출제 화면
type QuestionView struct {
	ID         string   `json:"id"`
	Number     int      `json:"number"`
	Of         int      `json:"of"`
	Type       string   `json:"type"`
	Category   string   `json:"category"`
	Testament  string   `json:"testament"`
	Difficulty int      `json:"difficulty"`
	Prompt     string   `json:"prompt"`
	Choices    []string `json:"choices,omitempty"`
	Seconds    int      `json:"seconds"`
}

// ChainView 정답을 제외한 주제 연결 문제
type ChainView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// Feedback 채점 직후 결과
type Feedback struct {
	Message       string     `json:"message"`
	TimedOut      bool       `json:"timedOut"`
	Response      string     `json:"response"`
	Ratio         float64    `json:"ratio"`
	Correct       bool       `json:"correct"`
	Earned        int        `json:"earned"`
	Possible      int        `json:"possible"`
	Score         int        `json:"score"`
	CorrectAnswer string     `json:"correctAnswer"`
	Reference     string     `json:"reference"`
	Explanation   string     `json:"explanation"`
	ExplainRatio  *float64   `json:"explainRatio,omitempty"`
	ExplainHits   []string   `json:"explainHits,omitempty"`
	Chain         *ChainView `json:"chain,omitempty"`
}

// ChainResult 주제 연결 선택 결과
type ChainResult struct {
	Correct     bool   `json:"correct"`
	Bonus       int    `json:"bonus"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
	Score       int    `json:"score"`
}

// Summary 세션 결과
type Summary struct {
	Mode          string   `json:"mode"`
	Score         int      `json:"score"`
	Possible      int      `json:"possible"`
	Answered      int      `json:"answered"`
	Accuracy      int      `json:"accuracy"`
	LongestStreak int      `json:"longestStreak"`
	HighScore     int      `json:"highScore"`
	NewHighScore  bool     `json:"newHighScore"`
	Missed        []Review `json:"missed"`
	DurationSec   int      `json:"durationSec"`
}

// View 세션 현재 상태
type View struct {
	ID          string        `json:"id"`
	Mode        string        `json:"mode"`
	Label       string        `json:"label"`
	State       State         `json:"state"`
	Shown       int           `json:"shown"`
	Length      int           `json:"length"`
	Score       int           `json:"score"`
	Streak      int           `json:"streak"`
	SecondsLeft int           `json:"secondsLeft"`
	Target      float64       `json:"targetDifficulty"`
	Question    *QuestionView `json:"question,omitempty"`
	Feedback    *Feedback     `json:"feedback,omitempty"`
	Summary     *Summary      `json:"summary,omitempty"`
}

// Event WebSocket 구독자에게 전달되는 이벤트
type Event struct {
	Type        string        `json:"type"`
	SessionID   string        `json:"sessionId"`
	SecondsLeft int           `json:"secondsLeft,omitempty"`
	Question    *QuestionView `json:"question,omitempty"`
	Feedback    *Feedback     `json:"feedback,omitempty"`
	Summary     *Summary      `json:"summary,omitempty"`
}

// Event types
const (
	EventQuestion = "question"
	EventTick     = "tick"
	EventTimeout  = "timeout"
	EventGraded   = "graded"
	EventFinished = "finished"
)

const subscriberBuffer = 32

// Session 퀴즈 세션 (Thread-Safe)
type Session struct {
	ID       string
	Owner    string
	Settings quiz.Settings

	mu    sync.Mutex
	state State

	bank     *quiz.Bank
	selector *quiz.Selector
	rng      *rand.Rand
	now      func() time.Time
	progress *quiz.Progress
	save     func(*quiz.Progress)

	candidates []quiz.Question
	missed     []quiz.Question
	pool       []quiz.Question

	current     *quiz.Question
	seq         int
	shown       int
	secondsLeft int
	answers     []Review
	score       int
	possible    int
	streak      int
	longest     int
	target      float64
	feedback    *Feedback

	chain         *quiz.ThemeChain
	chainAnswered bool
	lastChainID   string

	summary   *Summary
	startedAt time.Time
	touchedAt time.Time

	tickEvery time.Duration
	timerStop chan struct{}

	pending *quiz.Progress
	saveSig chan struct{}

	subs   map[int]chan Event
	nextID int
}

type config struct {
	id        string
	owner     string
	settings  quiz.Settings
	bank      *quiz.Bank
	rng       *rand.Rand
	now       func() time.Time
	progress  *quiz.Progress
	save      func(*quiz.Progress)
	pool      []quiz.Question
	missed    []quiz.Question
	tickEvery time.Duration
}

func newSession(c config) *Session {
	s := &Session{
		ID:         c.id,
		Owner:      c.owner,
		Settings:   c.settings,
		bank:       c.bank,
		selector:   quiz.NewSelector(c.rng),
		rng:        c.rng,
		now:        c.now,
		progress:   c.progress,
		save:       c.save,
		candidates: c.pool,
		missed:     c.missed,
		target:     float64(c.settings.Difficulty),
		tickEvery:  c.tickEvery,
		subs:       map[int]chan Event{},
	}
	s.startedAt = s.now()
	s.touchedAt = s.startedAt

	source := c.pool
	if c.missed != nil {
		source = c.missed
	}
	s.pool = s.shuffled(source)

	if s.save != nil {
		s.saveSig = make(chan struct{}, 1)
		go s.runSaver()
	}
	return s
}

// start 첫 문제 제시
func (s *Session) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked()
}

func (s *Session) shuffled(src []quiz.Question) []quiz.Question {
	out := append([]quiz.Question(nil), src...)
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Submit 답안 채점. 검증 오류면 상태는 그대로이고 타이머도 계속 진행
func (s *Session) Submit(d quiz.Draft) (*Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePresentedLocked(); err != nil {
		return nil, err
	}
	q := s.current

	g, err := quiz.GradeAnswer(q, d)
	if err != nil {
		return nil, err
	}
	if s.Settings.Mode == quiz.ModeExplain {
		e, err := quiz.AssessExplanation(q, d.Explain)
		if err != nil {
			return nil, err
		}
		g = quiz.BlendExplanation(g, e)
	}

	s.stopTimerLocked()
	return s.evaluateLocked(g, false), nil
}

// Skip 0점 처리 후 피드백
func (s *Session) Skip() (*Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePresentedLocked(); err != nil {
		return nil, err
	}
	s.stopTimerLocked()
	return s.evaluateLocked(quiz.Forfeit(s.current, false), false), nil
}

// Tick 1초 경과. 0이 되면 시간 초과로 채점하고 피드백을 돌려준다
func (s *Session) Tick() (*Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePresentedLocked(); err != nil {
		return nil, err
	}
	return s.tickLocked(), nil
}

func (s *Session) tickLocked() *Feedback {
	s.secondsLeft--
	if s.secondsLeft > 0 {
		s.publishLocked(Event{Type: EventTick, SecondsLeft: s.secondsLeft})
		return nil
	}
	s.secondsLeft = 0
	s.stopTimerLocked()
	return s.evaluateLocked(quiz.Forfeit(s.current, true), true)
}

// Next 피드백 이후 다음 문제로. 더 없으면 세션 종료
func (s *Session) Next() (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return nil, ErrClosed
	case StateFinished:
		return nil, ErrFinished
	case StatePresented:
		return nil, ErrNotAnswered
	}
	s.advanceLocked()
	return s.viewLocked(), nil
}

// ChooseChain 주제 연결 선택. 세션당 한 번, 정답이면 보너스
func (s *Session) ChooseChain(option string) (*ChainResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFeedback || s.chain == nil {
		return nil, ErrNoChain
	}
	if s.chainAnswered {
		return nil, ErrChainAnswered
	}
	c := s.chain
	found := false
	for _, o := range c.Options {
		if o == option {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrUnknownOption
	}

	s.chainAnswered = true
	s.touchedAt = s.now()
	res := &ChainResult{Answer: c.Answer, Explanation: c.Explanation}
	if option == c.Answer {
		res.Correct = true
		res.Bonus = quiz.ChainBonus(s.current)
		s.score += res.Bonus
	}
	res.Score = s.score
	return res, nil
}

// View 현재 상태 스냅샷
func (s *Session) View() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Summary 결과 집계. 진행 중이면 지금까지의 답안 기준
func (s *Session) Summary() *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary != nil {
		out := *s.summary
		return &out
	}
	return s.summarizeLocked(false)
}

// State 현재 상태
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Missed 틀린 문제 (중복 제거, 은행에 남아 있는 것만)
func (s *Session) Missed() []quiz.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	out := []quiz.Question{}
	for _, r := range s.answers {
		if r.Correct || seen[r.QuestionID] {
			continue
		}
		if q, ok := s.bank.Question(r.QuestionID); ok {
			seen[r.QuestionID] = true
			out = append(out, *q)
		}
	}
	return out
}

// Subscribe 이벤트 구독. 반환된 함수로 해제
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if s.state == StateClosed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

// Close 타이머 정지, 구독 해제
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return
	}
	s.stopTimerLocked()
	s.state = StateClosed
	if s.saveSig != nil {
		close(s.saveSig)
	}
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// idleSince 마지막 조작 시각
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

func (s *Session) requirePresentedLocked() error {
	switch s.state {
	case StateClosed:
		return ErrClosed
	case StateFinished:
		return ErrFinished
	case StateFeedback:
		return ErrAwaitingNext
	}
	return nil
}

func (s *Session) evaluateLocked(g quiz.Grade, timedOut bool) *Feedback {
	q := s.current
	now := s.now()
	s.touchedAt = now

	base := quiz.BasePoints(q)
	earned := quiz.Earned(q, g.Ratio, s.secondsLeft, s.Settings.Seconds)
	s.score += earned
	s.possible += base

	if g.Correct {
		s.streak++
		s.longest = max(s.longest, s.streak)
	} else {
		s.streak = 0
	}
	if s.Settings.Mode != quiz.ModeBook {
		s.target = quiz.NextTarget(s.target, g.Ratio)
	}

	review := Review{
		QuestionID:    q.ID,
		Prompt:        q.Prompt,
		Category:      q.Category,
		Testament:     q.Testament,
		Response:      g.Response,
		Ratio:         g.Ratio,
		Correct:       g.Correct,
		Earned:        earned,
		Possible:      base,
		Elapsed:       s.Settings.Seconds - s.secondsLeft,
		CorrectAnswer: g.CorrectAnswerText,
		Reference:     q.Reference,
		Explanation:   q.Explanation,
		ExplainRatio:  g.ExplainRatio,
	}
	if g.ExplainText != "" {
		text := g.ExplainText
		review.ExplainText = &text
	}
	s.answers = append(s.answers, review)
	s.progress.Record(q.ID, g.Correct, now)

	fb := &Feedback{
		Message:       quiz.FeedbackMessage(g, timedOut),
		TimedOut:      timedOut,
		Response:      g.Response,
		Ratio:         g.Ratio,
		Correct:       g.Correct,
		Earned:        earned,
		Possible:      base,
		Score:         s.score,
		CorrectAnswer: g.CorrectAnswerText,
		Reference:     q.Reference,
		Explanation:   q.Explanation,
		ExplainRatio:  g.ExplainRatio,
		ExplainHits:   g.ExplainHits,
	}

	s.chain = nil
	s.chainAnswered = false
	if s.Settings.Mode != quiz.ModeAlphabet {
		if c := quiz.PickChain(s.bank.Chains, q, s.lastChainID, s.rng); c != nil {
			s.chain = c
			s.lastChainID = c.ID
			fb.Chain = &ChainView{ID: c.ID, Prompt: c.Prompt, Options: append([]string(nil), c.Options...)}
		}
	}

	s.feedback = fb
	s.state = StateFeedback
	if timedOut {
		s.publishLocked(Event{Type: EventTimeout, Feedback: fb})
	}
	s.publishLocked(Event{Type: EventGraded, Feedback: fb})
	s.persistLocked()
	return fb
}

// advanceLocked 다음 문제 선택. 타이머는 문제를 바꾸기 전에 반드시 정지
func (s *Session) advanceLocked() {
	s.stopTimerLocked()
	s.chain = nil
	s.chainAnswered = false
	s.feedback = nil

	if len(s.answers) >= s.Settings.Length {
		s.finishLocked()
		return
	}
	if len(s.pool) == 0 {
		source := s.candidates
		if s.missed != nil {
			source = s.missed
		}
		s.pool = s.shuffled(source)
	}
	idx := s.selector.Pick(s.pool, s.progress, s.targetLocked(), s.Settings.Mode, s.Settings.Difficulty, s.now())
	if idx < 0 {
		s.finishLocked()
		return
	}
	q := s.pool[idx]
	s.pool = append(s.pool[:idx], s.pool[idx+1:]...)

	s.current = &q
	s.seq++
	s.shown++
	s.secondsLeft = s.Settings.Seconds
	s.state = StatePresented
	s.touchedAt = s.now()

	s.publishLocked(Event{Type: EventQuestion, SecondsLeft: s.secondsLeft, Question: s.questionViewLocked()})
	s.startTimerLocked()
}

func (s *Session) targetLocked() float64 {
	if s.Settings.Mode == quiz.ModeBook {
		return quiz.BookTarget(s.Settings.Difficulty, len(s.answers), s.Settings.Length)
	}
	return s.target
}

func (s *Session) finishLocked() {
	s.stopTimerLocked()
	s.state = StateFinished
	s.current = nil

	newHigh := s.progress.RecordHighScore(s.Settings.Mode, s.score, s.now())
	s.summary = s.summarizeLocked(newHigh)
	if newHigh {
		s.persistLocked()
	}
	out := *s.summary
	s.publishLocked(Event{Type: EventFinished, Summary: &out})
}

func (s *Session) summarizeLocked(newHigh bool) *Summary {
	correct := 0
	missed := []Review{}
	for _, r := range s.answers {
		if r.Correct {
			correct++
		} else {
			missed = append(missed, r)
		}
	}
	accuracy := 0
	if len(s.answers) > 0 {
		accuracy = int(math.Round(float64(correct) / float64(len(s.answers)) * 100))
	}
	return &Summary{
		Mode:          s.Settings.Mode,
		Score:         s.score,
		Possible:      s.possible,
		Answered:      len(s.answers),
		Accuracy:      accuracy,
		LongestStreak: s.longest,
		HighScore:     s.progress.HighScores[s.Settings.Mode],
		NewHighScore:  newHigh,
		Missed:        missed,
		DurationSec:   int(s.now().Sub(s.startedAt).Seconds()),
	}
}

func (s *Session) questionViewLocked() *QuestionView {
	q := s.current
	if q == nil {
		return nil
	}
	return &QuestionView{
		ID:         q.ID,
		Number:     s.shown,
		Of:         s.Settings.Length,
		Type:       q.Type,
		Category:   q.Category,
		Testament:  q.Testament,
		Difficulty: q.Level(),
		Prompt:     q.Prompt,
		Choices:    append([]string(nil), q.Choices...),
		Seconds:    s.Settings.Seconds,
	}
}

func (s *Session) viewLocked() *View {
	v := &View{
		ID:          s.ID,
		Mode:        s.Settings.Mode,
		Label:       quiz.ModeLabels[s.Settings.Mode],
		State:       s.state,
		Shown:       s.shown,
		Length:      s.Settings.Length,
		Score:       s.score,
		Streak:      s.streak,
		SecondsLeft: s.secondsLeft,
		Target:      s.targetLocked(),
		Question:    s.questionViewLocked(),
		Feedback:    s.feedback,
	}
	if s.summary != nil {
		out := *s.summary
		v.Summary = &out
	}
	return v
}

// publishLocked 느린 구독자는 이벤트를 놓친다
func (s *Session) publishLocked(e Event) {
	e.SessionID = s.ID
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// persistLocked 최신 스냅샷만 남기고 저장 고루틴을 깨운다
func (s *Session) persistLocked() {
	if s.saveSig == nil {
		return
	}
	s.pending = s.progress.Clone()
	select {
	case s.saveSig <- struct{}{}:
	default:
	}
}

func (s *Session) runSaver() {
	for range s.saveSig {
		s.mu.Lock()
		p := s.pending
		s.pending = nil
		s.mu.Unlock()
		if p != nil {
			s.save(p)
		}
	}
}

func (s *Session) startTimerLocked() {
	if s.tickEvery <= 0 {
		return
	}
	stop := make(chan struct{})
	s.timerStop = stop
	go s.runTimer(stop, s.seq)
}

func (s *Session) stopTimerLocked() {
	if s.timerStop != nil {
		close(s.timerStop)
		s.timerStop = nil
	}
}

func (s *Session) runTimer(stop <-chan struct{}, seq int) {
	t := time.NewTicker(s.tickEvery)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.mu.Lock()
			// stale tick from a question that has already changed
			if s.seq != seq || s.state != StatePresented {
				s.mu.Unlock()
				return
			}
			fb := s.tickLocked()
			s.mu.Unlock()
			if fb != nil {
				return
			}
		}
	}
}
