package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSessionSecret 개발용 기본 세션 서명 키
const DefaultSessionSecret = "change-this-secret-in-production"

// Config 애플리케이션 전체 설정
type Config struct {
	Server ServerConfig
	CORS   CORSConfig
	Auth   AuthConfig
	Store  StoreConfig
	Quiz   QuizConfig
	Redis  RedisConfig
	PDF    PDFConfig
	Log    LogConfig

	// EnvFileLoaded .env 파일을 읽었는지 (시작 로그용)
	EnvFileLoaded bool
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	BodyLimit    int
}

// CORSConfig CORS 설정
type CORSConfig struct {
	AllowOrigins string
	AllowHeaders string
}

// AuthConfig 역할 세션 설정
type AuthConfig struct {
	SessionSecret   string
	SessionTTL      time.Duration
	VisitorEmail    string
	VisitorPassword string
	FullEmail       string
	FullPassword    string
	SecureCookie    bool
	LoginRateLimit  int
}

// StoreConfig 학교 문서 저장소 설정
type StoreConfig struct {
	Driver string // file | postgres | sqlite
	Path   string
	DSN    string // 비어 있으면 DB_* 항목으로 postgres DSN 조립

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeZone string
}

// QuizConfig 퀴즈 진행도/세션 설정
type QuizConfig struct {
	ProgressDriver string // file | redis
	ProgressDir    string
	DefaultSeconds int
	TimerEnabled   bool
	SessionIdleTTL time.Duration
}

// RedisConfig Redis 설정
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PDFConfig PDF 가져오기 설정
type PDFConfig struct {
	DPI           float64
	RenderTimeout time.Duration
	MaxPages      int
	MaxBytes      int
}

// LogConfig 로그 설정
type LogConfig struct {
	Mode string // dev | prod
}

// IsProd 운영 모드 여부
func (c LogConfig) IsProd() bool {
	return c.Mode == "prod" || c.Mode == "production"
}

// UsesDefaultSecret 기본 세션 키 사용 여부
func (c *Config) UsesDefaultSecret() bool {
	return c.Auth.SessionSecret == DefaultSessionSecret
}

// Load 환경 변수에서 설정 로드
func Load() *Config {
	// .env 파일 로드 (없어도 에러 무시)
	loaded := godotenv.Load() == nil

	cfg := FromEnv()
	cfg.EnvFileLoaded = loaded
	return cfg
}

// FromEnv 현재 환경 변수만으로 설정 구성
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         normalizePort(getEnv("PORT", ":8080")),
			ReadTimeout:  getDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
			BodyLimit:    getInt("BODY_LIMIT", 25*1024*1024),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
			AllowHeaders: getEnv("CORS_ALLOW_HEADERS", "Origin, Content-Type, Accept"),
		},
		Auth: AuthConfig{
			SessionSecret:   getEnv("SESSION_SECRET", DefaultSessionSecret),
			SessionTTL:      getDuration("SESSION_TTL", 7*24*time.Hour),
			VisitorEmail:    getEnv("VISITOR_EMAIL", "visitor@lastday.studio"),
			VisitorPassword: getEnv("VISITOR_PASSWORD", "Visitor#2026"),
			FullEmail:       getEnv("FULL_EMAIL", "admin@lastday.studio"),
			FullPassword:    getEnv("FULL_PASSWORD", "LastDay#2026"),
			SecureCookie:    getBool("SECURE_COOKIE", false),
			LoginRateLimit:  getInt("LOGIN_RATE_LIMIT", 10),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", "file")),
			Path:   getEnv("SCHOOL_DB_PATH", "/tmp/lastday-school-db.json"),
			DSN:    getEnv("DATABASE_URL", ""),

			DBHost:     getEnv("DB_HOST", "localhost"),
			DBPort:     getEnv("DB_PORT", "5432"),
			DBUser:     getEnv("DB_USER", "postgres"),
			DBPassword: getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "studio"),
			DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
			DBTimeZone: getEnv("DB_TIMEZONE", "UTC"),
		},
		Quiz: QuizConfig{
			ProgressDriver: strings.ToLower(getEnv("QUIZ_PROGRESS_DRIVER", "file")),
			ProgressDir:    getEnv("QUIZ_PROGRESS_DIR", "/tmp/lastday-quiz-progress"),
			DefaultSeconds: getInt("QUIZ_DEFAULT_SECONDS", 45),
			TimerEnabled:   getBool("QUIZ_TIMER_ENABLED", true),
			SessionIdleTTL: getDuration("QUIZ_SESSION_IDLE_TTL", 2*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		PDF: PDFConfig{
			DPI:           getFloat("PDF_RENDER_DPI", 110),
			RenderTimeout: getDuration("PDF_RENDER_TIMEOUT", 30*time.Second),
			MaxPages:      getInt("PDF_MAX_PAGES", 60),
			MaxBytes:      getInt("PDF_MAX_BYTES", 20*1024*1024),
		},
		Log: LogConfig{
			Mode: strings.ToLower(getEnv("LOG_MODE", "dev")),
		},
	}
}

// normalizePort "8080" -> ":8080"
func normalizePort(p string) string {
	if p != "" && !strings.Contains(p, ":") {
		return ":" + p
	}
	return p
}

// getEnv 환경 변수 조회 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getInt 정수형 환경 변수 조회
func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

// getBool 불리언 환경 변수 조회
func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getDuration 시간 환경 변수 조회
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		// 숫자만 있으면 초로 간주
		if !strings.ContainsAny(value, "smh") {
			if secs, err := strconv.Atoi(value); err == nil {
				return time.Duration(secs) * time.Second
			}
		}
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
