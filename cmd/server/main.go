package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studio-backend/internal/cache"
	"studio-backend/internal/canvas"
	"studio-backend/internal/config"
	"studio-backend/internal/handler"
	"studio-backend/internal/logger"
	"studio-backend/internal/quiz"
	"studio-backend/internal/server"
	"studio-backend/internal/session"
	"studio-backend/internal/store"
)

func main() {
	// 설정 로드
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if !cfg.EnvFileLoaded {
		log.Info("no .env file found, using environment variables")
	}
	if cfg.UsesDefaultSecret() && cfg.Log.IsProd() {
		log.Warn("SESSION_SECRET is the default value; set it in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 문서 저장소
	backend, closeBackend, err := store.OpenBackend(cfg.Store, log)
	if err != nil {
		log.Fatal("store backend failed", "driver", cfg.Store.Driver, "error", err)
	}
	defer closeBackend()
	st := store.New(backend, log.With("component", "store"))

	// 퀴즈 진행도 저장소
	var redis handler.Pinger
	var progress quiz.ProgressStore
	switch cfg.Quiz.ProgressDriver {
	case "redis":
		rc, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("redis connection failed", "addr", cfg.Redis.Addr, "error", err)
		}
		defer rc.Close()
		redis = rc
		progress = quiz.NewRedisProgressStore(rc)
		log.Info("quiz progress stored in redis", "addr", cfg.Redis.Addr)
	default:
		progress = quiz.NewFileProgressStore(cfg.Quiz.ProgressDir)
		log.Info("quiz progress stored on disk", "dir", cfg.Quiz.ProgressDir)
	}

	bank, err := quiz.DefaultBank()
	if err != nil {
		log.Fatal("question bank failed to load", "error", err)
	}

	tick := time.Second
	if !cfg.Quiz.TimerEnabled {
		tick = 0
	}
	sessions := session.NewManager(bank, progress, log.With("component", "quiz"),
		session.WithTick(tick),
		session.WithIdleTTL(cfg.Quiz.SessionIdleTTL),
	)
	defer sessions.Close()

	raster := canvas.NewFitzRasterizer(cfg.PDF.DPI, cfg.PDF.RenderTimeout)
	raster.MaxPages = cfg.PDF.MaxPages

	// 서버 생성 및 설정
	srv := server.New(cfg, server.Deps{
		Store:    st,
		Sessions: sessions,
		Raster:   raster,
		Redis:    redis,
		Log:      log.With("component", "http"),
	})
	srv.SetupMiddleware()
	srv.SetupRoutes()

	// 서버 시작
	if err := srv.Run(ctx); err != nil {
		log.Fatal("server stopped", "error", err)
	}
	log.Info("server stopped")
}
