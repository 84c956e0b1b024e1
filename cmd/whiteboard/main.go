package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"studio-backend/internal/canvas"
	"studio-backend/internal/config"
	"studio-backend/internal/logger"
	"studio-backend/internal/store"
)

const usage = `usage: whiteboard <command> [flags]

commands:
  list                              list saved whiteboards
  show -id ID                       print one whiteboard as JSON
  create -title TITLE               create an empty whiteboard
  import-pdf -id ID -file PDF       append PDF pages to a whiteboard
  export-png -id ID -out DIR        render every page to DIR/<page>.png
  export-json -id ID -out FILE      write the export document
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := store.OpenBackend(cfg.Store, log)
	if err != nil {
		log.Fatal("store backend failed", "driver", cfg.Store.Driver, "error", err)
	}
	defer closeBackend()
	st := store.New(backend, log.With("component", "store"))

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "list":
		err = list(ctx, st)
	case "show":
		err = show(ctx, st, args)
	case "create":
		err = create(ctx, st, args)
	case "import-pdf":
		err = importPDF(ctx, st, cfg, args)
	case "export-png":
		err = exportPNG(ctx, st, args)
	case "export-json":
		err = exportJSON(ctx, st, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func list(ctx context.Context, st *store.Store) error {
	summaries, err := st.ListWhiteboards(ctx)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		fmt.Printf("%s\t%q\tpages=%d\tpaths=%d\t%s\n", s.ID, s.Title, s.PageCount, s.PathCount, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func show(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.String("id", "", "whiteboard id")
	fs.Parse(args)

	wb, err := st.GetWhiteboard(ctx, *id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(wb)
}

func create(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "whiteboard title")
	author := fs.String("author", "", "author name")
	fs.Parse(args)

	res, err := st.CreateWhiteboard(ctx, store.WhiteboardFields{Title: title, Author: author})
	if err != nil {
		return err
	}
	fmt.Println(res.Whiteboard.ID)
	return nil
}

func importPDF(ctx context.Context, st *store.Store, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import-pdf", flag.ExitOnError)
	id := fs.String("id", "", "whiteboard id")
	file := fs.String("file", "", "path to PDF file")
	fs.Parse(args)

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	if len(data) > cfg.PDF.MaxBytes {
		return fmt.Errorf("%s is larger than %d bytes", *file, cfg.PDF.MaxBytes)
	}

	raster := canvas.NewFitzRasterizer(cfg.PDF.DPI, cfg.PDF.RenderTimeout)
	raster.MaxPages = cfg.PDF.MaxPages
	res, err := canvas.ImportPDFToBoard(ctx, st, raster, *id, filepath.Base(*file), data)
	if err != nil {
		return err
	}
	for _, key := range res.Pages {
		fmt.Printf("%s\t%s\n", key, res.Whiteboard.PageLabels[key])
	}
	return nil
}

// exportPNG 모든 페이지를 동시에 렌더링
func exportPNG(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("export-png", flag.ExitOnError)
	id := fs.String("id", "", "whiteboard id")
	out := fs.String("out", ".", "output directory")
	width := fs.Int("width", canvas.DefaultWidth, "image width")
	height := fs.Int("height", canvas.DefaultHeight, "image height")
	fs.Parse(args)

	wb, err := st.GetWhiteboard(ctx, *id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, key := range wb.PageOrder {
		g.Go(func() error {
			png, err := canvas.RenderBoardPage(ctx, st, wb.ID, key, *width, *height)
			if err != nil {
				return fmt.Errorf("render %s: %w", key, err)
			}
			return os.WriteFile(filepath.Join(*out, key+".png"), png, 0o644)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("wrote %d pages to %s\n", len(wb.PageOrder), *out)
	return nil
}

func exportJSON(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("export-json", flag.ExitOnError)
	id := fs.String("id", "", "whiteboard id")
	out := fs.String("out", "", "output file (stdout when empty)")
	fs.Parse(args)

	wb, err := st.GetWhiteboard(ctx, *id)
	if err != nil {
		return err
	}
	e := canvas.NewEditor(canvas.NewMemorySurface())
	if err := e.Open(ctx, wb); err != nil {
		return err
	}
	data, err := e.ExportJSON(ctx)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(*out, data, 0o644)
}
