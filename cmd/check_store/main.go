package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"studio-backend/internal/config"
	"studio-backend/internal/logger"
	"studio-backend/internal/store"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, closeBackend, err := store.OpenBackend(cfg.Store, logger.NewNop())
	if err != nil {
		log.Fatal("Failed to open store: ", err)
	}
	defer closeBackend()

	fmt.Printf("✅ Store opened (driver: %s)\n", driverName(cfg.Store.Driver))
	fmt.Println()

	// 원본 문서 상태 확인
	raw, err := backend.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNoDocument):
		fmt.Println("❌ No school document stored yet")
		fmt.Println("⚠️  A default document will be seeded")
	case err != nil:
		log.Fatal("Failed to load school document: ", err)
	default:
		fmt.Printf("📦 Stored document: %d bytes\n", len(raw))
		if _, err := store.DecodeSchool(raw); err != nil {
			fmt.Printf("❌ Document is corrupt: %v\n", err)
			fmt.Println("⚠️  It will be replaced with the default document")
		} else {
			fmt.Println("📋 Document decodes cleanly")
		}
	}
	fmt.Println()

	// Read는 손상된 문서를 기본값으로 다시 채운다
	st := store.New(backend, logger.NewNop())
	school, err := st.Read(ctx)
	if err != nil {
		log.Fatal("Failed to read school document: ", err)
	}

	fmt.Println("📈 School Statistics:")
	fmt.Printf("  - Classroom: %s\n", school.Classroom.Name)
	fmt.Printf("  - Announcements: %d\n", len(school.Announcements))
	fmt.Printf("  - Assignments: %d\n", len(school.Assignments))
	fmt.Printf("  - Resources: %d\n", len(school.Resources))
	fmt.Printf("  - Questions: %d\n", len(school.Questions))
	fmt.Printf("  - Whiteboards: %d\n", len(school.Whiteboards))
	fmt.Println()

	if len(school.Whiteboards) == 0 {
		return
	}

	summaries, err := st.ListWhiteboards(ctx)
	if err != nil {
		log.Fatal("Failed to list whiteboards: ", err)
	}
	fmt.Println("🖍️  Whiteboards (most recent first):")
	for i, s := range summaries {
		if i == 10 {
			fmt.Printf("  ... %d more\n", len(summaries)-i)
			break
		}
		fmt.Printf("  - %s %q pages: %d, paths: %d, updated: %s\n",
			s.ID, s.Title, s.PageCount, s.PathCount, s.UpdatedAt.Format(time.RFC3339))
	}
}

func driverName(d string) string {
	if d == "" {
		return "file"
	}
	return d
}
