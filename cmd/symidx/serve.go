package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"symidx/internal/api"
	"symidx/internal/indexer"
	"symidx/internal/parser"
	"symidx/internal/store"
	"symidx/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the index server",
	Long: `Start the HTTP API, perform the initial scan and keep the index
current through the filesystem watcher. A cached snapshot, when present,
serves queries immediately while the scan runs in the background.`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	root, err := resolveRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg := mustLoadConfig(root)
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := parser.DefaultRegistry()

	// The cache is optional: an unreachable Redis degrades to
	// memory-only operation
	var idxStore indexer.Store
	var redisStore *store.RedisStore
	if cfg.Cache.Enabled {
		redisStore, err = store.NewRedisStore(ctx, cfg.Cache, logger.WithComponent("store"))
		if err != nil {
			logger.Warn("Index store unavailable, running without cache", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			idxStore = redisStore
		}
	}

	manager := indexer.NewManager(indexer.ManagerConfig{
		RepoRoot:         root,
		Excludes:         cfg.Indexer.Excludes,
		MaxFileSizeBytes: cfg.Indexer.MaxFileSizeBytes,
		Workers:          cfg.Indexer.Workers,
	}, registry, idxStore, logger.WithComponent("indexer"))

	// A warm start serves queries right away; the background scan
	// reconciles whatever changed since the snapshot was taken
	manager.WarmStart(ctx)
	manager.ScheduleFullScan(ctx)

	var fsw *watcher.Watcher
	if cfg.Watcher.Enabled {
		fsw, err = watcher.New(watcher.Config{
			Root:           root,
			Debounce:       time.Duration(cfg.Watcher.DebounceMs) * time.Millisecond,
			IgnorePatterns: cfg.Watcher.IgnorePatterns,
		}, registry, logger.WithComponent("watcher"), func(paths []string) {
			if _, err := manager.UpdateFiles(context.Background(), paths); err != nil {
				logger.Error("Watch-triggered update failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating watcher: %v\n", err)
			os.Exit(1)
		}
		if err := fsw.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting watcher: %v\n", err)
			os.Exit(1)
		}
	}

	server := api.NewServer(manager, cfg.Server, logger.WithComponent("api"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down", nil)
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", map[string]interface{}{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		return
	}

	// Drain buffered watcher changes before stopping so the final
	// snapshot reflects them
	if fsw != nil {
		fsw.Flush()
		_ = fsw.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server shutdown incomplete", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if redisStore != nil {
		_ = redisStore.Close()
	}
}
