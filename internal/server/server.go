package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"studio-backend/internal/auth"
	"studio-backend/internal/canvas"
	"studio-backend/internal/config"
	"studio-backend/internal/handler"
	"studio-backend/internal/logger"
	"studio-backend/internal/middleware"
	"studio-backend/internal/session"
	"studio-backend/internal/store"
)

const shutdownTimeout = 30 * time.Second

// Deps 서버가 사용하는 구성 요소
type Deps struct {
	Store    *store.Store
	Sessions *session.Manager
	Raster   canvas.Rasterizer // nil이면 PDF 가져오기 비활성
	Redis    handler.Pinger    // nil 가능
	Log      *logger.Logger
}

// Server Fiber 서버 래퍼
type Server struct {
	app               *fiber.App
	cfg               *config.Config
	log               *logger.Logger
	sessions          *auth.SessionManager
	healthHandler     *handler.HealthHandler
	authHandler       *handler.AuthHandler
	schoolHandler     *handler.SchoolHandler
	whiteboardHandler *handler.WhiteboardHandler
	quizHandler       *handler.QuizHandler
	quizWSHandler     *handler.QuizWSHandler
}

// New 새 서버 인스턴스 생성
func New(cfg *config.Config, deps Deps) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "Last Day Studio",
		StrictRouting:         false,
		CaseSensitive:         true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
	})

	sessions := auth.NewSessionManager(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	credentials := auth.Credentials{
		VisitorEmail:    cfg.Auth.VisitorEmail,
		VisitorPassword: cfg.Auth.VisitorPassword,
		FullEmail:       cfg.Auth.FullEmail,
		FullPassword:    cfg.Auth.FullPassword,
	}
	quizHandler := handler.NewQuizHandler(deps.Sessions, cfg.Quiz.DefaultSeconds, cfg.Auth.SecureCookie, deps.Log)

	return &Server{
		app:               app,
		cfg:               cfg,
		log:               deps.Log,
		sessions:          sessions,
		healthHandler:     handler.NewHealthHandler(deps.Store, deps.Redis),
		authHandler:       handler.NewAuthHandler(sessions, credentials, cfg.Auth.SecureCookie, deps.Log),
		schoolHandler:     handler.NewSchoolHandler(deps.Store, deps.Log),
		whiteboardHandler: handler.NewWhiteboardHandler(deps.Store, deps.Raster, cfg.PDF.MaxBytes, deps.Log),
		quizHandler:       quizHandler,
		quizWSHandler:     handler.NewQuizWSHandler(quizHandler, 5*time.Second, deps.Log),
	}
}

// App 내부 Fiber 앱 (테스트용)
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware 미들웨어 설정
func (s *Server) SetupMiddleware() {
	// 패닉 복구
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: !s.cfg.Log.IsProd(),
	}))

	// 접근 로그
	s.app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	// CORS
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORS.AllowOrigins,
		AllowHeaders:     s.cfg.CORS.AllowHeaders + ", Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: s.cfg.CORS.AllowOrigins != "*",
	}))

	// 역할 세션 (모든 요청)
	s.app.Use(auth.SessionMiddleware(s.sessions))
}

// SetupRoutes 라우트 설정
func (s *Server) SetupRoutes() {
	// 헬스체크 엔드포인트
	s.app.Get("/health", s.healthHandler.Check)
	s.app.Get("/health/live", s.healthHandler.Liveness)
	s.app.Get("/health/ready", s.healthHandler.Readiness)

	// Rate Limiter 설정 (로그인 Brute Force 방지)
	loginLimiter := limiter.New(limiter.Config{
		Max:        s.cfg.Auth.LoginRateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
			})
		},
	})

	// Auth 라우트 그룹
	authGroup := s.app.Group("/api/auth")
	authGroup.Post("/login", loginLimiter, s.authHandler.Login)
	authGroup.Post("/logout", s.authHandler.Logout)
	authGroup.Get("/session", s.authHandler.Session)

	// School 라우트 그룹 (visitor 이상)
	schoolGroup := s.app.Group("/api/school", middleware.RequireReader())
	schoolGroup.Get("/", s.schoolHandler.GetSchool)
	schoolGroup.Post("/announcements", middleware.RequireFull(), s.schoolHandler.CreateAnnouncement)
	schoolGroup.Post("/assignments", middleware.RequireFull(), s.schoolHandler.CreateAssignment)
	schoolGroup.Post("/resources", middleware.RequireFull(), s.schoolHandler.CreateResource)
	schoolGroup.Post("/questions", s.schoolHandler.CreateQuestion)

	// Whiteboard 라우트
	schoolGroup.Get("/whiteboards", s.whiteboardHandler.GetWhiteboards)
	schoolGroup.Post("/whiteboards", s.whiteboardHandler.CreateWhiteboard)
	schoolGroup.Put("/whiteboards", s.whiteboardHandler.SaveWhiteboard)
	schoolGroup.Get("/whiteboards/png", s.whiteboardHandler.RenderPNG)
	schoolGroup.Post("/whiteboards/pdf", s.whiteboardHandler.ImportPDF)

	// Quiz 라우트 그룹 (visitor 이상)
	quizGroup := s.app.Group("/api/quiz", middleware.RequireReader())
	quizGroup.Get("/books", s.quizHandler.Books)
	quizGroup.Get("/progress", s.quizHandler.Progress)
	quizGroup.Post("/sessions", s.quizHandler.CreateSession)
	quizGroup.Get("/sessions/:id", s.quizHandler.GetSession)
	quizGroup.Delete("/sessions/:id", s.quizHandler.EndSession)
	quizGroup.Post("/sessions/:id/answer", s.quizHandler.Answer)
	quizGroup.Post("/sessions/:id/skip", s.quizHandler.Skip)
	quizGroup.Post("/sessions/:id/next", s.quizHandler.Next)
	quizGroup.Post("/sessions/:id/chain", s.quizHandler.Chain)
	quizGroup.Post("/sessions/:id/retake", s.quizHandler.Retake)

	// WebSocket 퀴즈 이벤트 엔드포인트
	s.app.Get("/ws/quiz/:id", middleware.RequireReader(), s.quizWSHandler.Upgrade,
		websocket.New(s.quizWSHandler.HandleWebSocket, websocket.Config{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		}))
}

// Run 서버 시작. ctx가 끝나면 graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("server starting", "addr", s.cfg.Server.Port)
		return s.app.Listen(s.cfg.Server.Port)
	})

	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down server")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return err
		}
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Shutdown 서버 종료
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(shutdownTimeout)
}
