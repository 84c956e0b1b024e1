package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"studio-backend/internal/cache"
)

// ProgressStore 사용자(owner)별 진행 기록 저장소
type ProgressStore interface {
	Load(ctx context.Context, owner string) (*Progress, error)
	Save(ctx context.Context, owner string, p *Progress) error
}

var ownerUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func ownerKey(owner string) string {
	key := ownerUnsafe.ReplaceAllString(owner, "_")
	if key == "" {
		key = "anonymous"
	}
	if len(key) > 80 {
		key = key[:80]
	}
	return key
}

// FileProgressStore owner마다 JSON 파일 하나
type FileProgressStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileProgressStore(dir string) *FileProgressStore {
	return &FileProgressStore{dir: dir}
}

func (s *FileProgressStore) path(owner string) string {
	return filepath.Join(s.dir, ownerKey(owner)+".json")
}

func (s *FileProgressStore) Load(ctx context.Context, owner string) (*Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(owner))
	if errors.Is(err, fs.ErrNotExist) {
		return NewProgress(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	return DecodeProgress(data), nil
}

func (s *FileProgressStore) Save(ctx context.Context, owner string, p *Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create progress dir: %w", err)
	}
	return os.WriteFile(s.path(owner), data, 0o644)
}

// RedisProgressStore quiz:progress:<owner> 키에 저장하고 모드별 최고점을 정렬 집합으로 유지
type RedisProgressStore struct {
	client *cache.RedisClient
}

func NewRedisProgressStore(client *cache.RedisClient) *RedisProgressStore {
	return &RedisProgressStore{client: client}
}

func progressKey(owner string) string {
	return "quiz:progress:" + ownerKey(owner)
}

// HighScoreKey 모드별 최고점 랭킹 키
func HighScoreKey(mode string) string {
	return "quiz:highscores:" + mode
}

func (s *RedisProgressStore) Load(ctx context.Context, owner string) (*Progress, error) {
	data, err := s.client.GetRaw(ctx, progressKey(owner))
	if errors.Is(err, cache.ErrMiss) {
		return NewProgress(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return DecodeProgress(data), nil
}

func (s *RedisProgressStore) Save(ctx context.Context, owner string, p *Progress) error {
	if err := s.client.SetJSON(ctx, progressKey(owner), p, 0); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	for mode, score := range p.HighScores {
		if score <= 0 {
			continue
		}
		if err := s.client.ZAddMax(ctx, HighScoreKey(mode), ownerKey(owner), float64(score)); err != nil {
			return fmt.Errorf("record high score: %w", err)
		}
	}
	return nil
}

// MemoryProgressStore 프로세스 메모리 저장 (테스트, 영속화 비활성 시)
type MemoryProgressStore struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{items: map[string][]byte{}}
}

func (s *MemoryProgressStore) Load(ctx context.Context, owner string) (*Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.items[ownerKey(owner)]
	if !ok {
		return NewProgress(), nil
	}
	return DecodeProgress(data), nil
}

func (s *MemoryProgressStore) Save(ctx context.Context, owner string, p *Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[ownerKey(owner)] = data
	return nil
}
