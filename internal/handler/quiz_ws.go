package handler

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"studio-backend/internal/logger"
	"studio-backend/internal/session"
)

const sessionLocal = "quizSession"

// QuizWSHandler 퀴즈 세션 이벤트 WebSocket 핸들러 (카운트다운, 시간 초과, 채점)
type QuizWSHandler struct {
	quiz         *QuizHandler
	writeTimeout time.Duration
	log          *logger.Logger

	mu      sync.RWMutex
	clients map[string]int // sessionID -> 연결 수
}

// QuizWSMessage 클라이언트와 주고받는 메시지
type QuizWSMessage struct {
	Type    string      `json:"type"` // state, event, ping, pong, error
	Payload interface{} `json:"payload,omitempty"`
}

// NewQuizWSHandler QuizWSHandler 생성
func NewQuizWSHandler(quiz *QuizHandler, writeTimeout time.Duration, log *logger.Logger) *QuizWSHandler {
	return &QuizWSHandler{
		quiz:         quiz,
		writeTimeout: writeTimeout,
		log:          log,
		clients:      make(map[string]int),
	}
}

// Upgrade 업그레이드 전 세션 소유 확인
func (h *QuizWSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	s, err := h.quiz.lookup(c)
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	c.Locals(sessionLocal, s)
	return c.Next()
}

// HandleWebSocket 세션 이벤트를 클라이언트로 중계
func (h *QuizWSHandler) HandleWebSocket(c *websocket.Conn) {
	// 패닉 복구 - 서버 크래시 방지
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("quiz websocket panic recovered", "panic", r)
		}
	}()

	s, ok := c.Locals(sessionLocal).(*session.Session)
	if !ok {
		c.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":"invalid session"}`))
		c.Close()
		return
	}

	events, unsubscribe := s.Subscribe()
	h.track(s.ID, 1)
	h.log.Debug("quiz websocket connected", "session", s.ID)

	var writeMu sync.Mutex
	send := func(msg QuizWSMessage) error {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if h.writeTimeout > 0 {
			c.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		}
		return c.WriteMessage(websocket.TextMessage, data)
	}

	done := make(chan struct{})
	// 연결 해제 시 정리
	defer func() {
		close(done)
		unsubscribe()
		h.track(s.ID, -1)
		c.Close()
		h.log.Debug("quiz websocket disconnected", "session", s.ID)
	}()

	if err := send(QuizWSMessage{Type: "state", Payload: s.View()}); err != nil {
		return
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case e, ok := <-events:
				if !ok {
					c.Close()
					return
				}
				if err := send(QuizWSMessage{Type: "event", Payload: e}); err != nil {
					c.Close()
					return
				}
			}
		}
	}()

	// ping/pong, state 요청 처리
	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			break
		}

		var msg QuizWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "ping":
			send(QuizWSMessage{Type: "pong"})
		case "state":
			send(QuizWSMessage{Type: "state", Payload: s.View()})
		}
	}
}

// Connected 세션별 연결 수
func (h *QuizWSHandler) Connected(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[sessionID]
}

func (h *QuizWSHandler) track(id string, delta int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] += delta
	if h.clients[id] <= 0 {
		delete(h.clients, id)
	}
}
