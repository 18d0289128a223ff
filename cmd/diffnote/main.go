package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bkyoung/diffnote/internal/adapter/cli"
	"github.com/bkyoung/diffnote/internal/adapter/git"
	"github.com/bkyoung/diffnote/internal/adapter/observability"
	jsonwriter "github.com/bkyoung/diffnote/internal/adapter/output/json"
	"github.com/bkyoung/diffnote/internal/adapter/output/markdown"
	"github.com/bkyoung/diffnote/internal/adapter/store/sqlite"
	"github.com/bkyoung/diffnote/internal/config"
	"github.com/bkyoung/diffnote/internal/version"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return
		}
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "diffnote",
		EnvPrefix:   "DIFFNOTE",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}
	engine := git.NewEngine(repoDir)

	// Timestamp function for deterministic output file naming.
	nowFunc := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}

	markdownWriter := markdown.NewWriter(nowFunc).WithContextMargin(cfg.Review.ContextMargin)
	jsonWriter := jsonwriter.NewWriter(nowFunc).WithContextMargin(cfg.Review.ContextMargin)

	var sessionLogger observability.Logger
	if cfg.Observability.Logging.Enabled {
		sessionLogger = observability.NewDefaultLogger(
			observability.ParseLevel(cfg.Observability.Logging.Level),
			observability.ParseFormat(cfg.Observability.Logging.Format),
		)
	}

	var history cli.History
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0o755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			exportStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize export history: %v", err)
			} else {
				history = exportStore
				defer exportStore.Close()
			}
		}
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Source:   engine,
		Markdown: markdownWriter,
		JSON:     jsonWriter,
		History:  history,
		Logger:   sessionLogger,
		Args: cli.Arguments{
			OutWriter: os.Stdout,
			ErrWriter: os.Stderr,
			InReader:  os.Stdin,
		},
		Limits: cli.Limits{
			MaxFiles: cfg.Limits.MaxFiles,
			MaxLines: cfg.Limits.MaxLines,
		},
		MaxAnnotations: cfg.Review.MaxAnnotations,
		OutputDir:     cfg.Output.Directory,
		DefaultFormat: cfg.Output.Format,
		Version:       version.Version(),
	})

	return root.ExecuteContext(ctx)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "diffnote"))
	}
	return paths
}
