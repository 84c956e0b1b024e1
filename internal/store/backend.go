package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studio-backend/internal/model"
)

// ErrNoDocument 저장된 문서가 아직 없음
var ErrNoDocument = errors.New("no stored document")

// Backend 학교 문서 원본 바이트를 읽고 쓰는 저장 계층
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FileBackend JSON 파일 한 개에 문서를 보관
type FileBackend struct {
	path string
}

// NewFileBackend path의 디렉터리는 저장 시 생성된다
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path 파일 경로
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	return data, nil
}

// Save writes to a temp file in the same directory and renames it over the target.
func (b *FileBackend) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".school-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}

const schoolDocumentKey = "school"

// GormBackend school_documents 테이블의 한 행에 문서를 보관 (postgres / sqlite)
type GormBackend struct {
	db  *gorm.DB
	key string
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db, key: schoolDocumentKey}
}

func (b *GormBackend) Load(ctx context.Context) ([]byte, error) {
	var doc model.SchoolDocument
	err := b.db.WithContext(ctx).Where("key = ?", b.key).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("load school document: %w", err)
	}
	return []byte(doc.Data), nil
}

func (b *GormBackend) Save(ctx context.Context, data []byte) error {
	doc := model.SchoolDocument{Key: b.key, Data: data}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("save school document: %w", err)
	}
	return nil
}

// Ping 헬스체크용
func (b *GormBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
