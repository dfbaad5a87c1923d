package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"symidx/internal/indexer"
	"symidx/internal/parser"
)

var (
	indexFormat string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run a full scan of the repository",
	Long:  "Scan the repository, extract symbols from every supported file and print batch statistics",
	Run:   runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(indexCmd)
}

// buildManager assembles a memory-only manager for one-shot commands
func buildManager(root string) *indexer.Manager {
	cfg := mustLoadConfig(root)
	return indexer.NewManager(indexer.ManagerConfig{
		RepoRoot:         root,
		Excludes:         cfg.Indexer.Excludes,
		MaxFileSizeBytes: cfg.Indexer.MaxFileSizeBytes,
		Workers:          cfg.Indexer.Workers,
	}, parser.DefaultRegistry(), nil, newLogger(cfg))
}

func runIndex(cmd *cobra.Command, args []string) {
	start := time.Now()

	root, err := resolveRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	manager := buildManager(root)
	result, err := manager.FullScan(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning: %v\n", err)
		os.Exit(1)
	}
	status := manager.Status()

	if indexFormat == "json" {
		out := map[string]interface{}{
			"files_indexed": status.FilesIndexed,
			"total_symbols": status.TotalSymbols,
			"updated_files": result.UpdatedFiles,
			"failed_files":  result.FailedFiles,
			"skipped_files": result.SkippedFiles,
			"duration_ms":   result.Duration.Milliseconds(),
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Indexed %d files (%d symbols)\n", status.FilesIndexed, status.TotalSymbols)
	fmt.Printf("  updated: %d  skipped: %d  failed: %d\n",
		len(result.UpdatedFiles), result.SkippedFiles, len(result.FailedFiles))
	for _, f := range result.FailedFiles {
		fmt.Printf("  failed: %s\n", f)
	}
	fmt.Printf("\n(Scan took %dms)\n", time.Since(start).Milliseconds())
}
