package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"symidx/internal/config"
	"symidx/internal/logging"
	"symidx/internal/version"
)

var (
	// repoFlag is the CLI --repo flag value
	repoFlag string
)

var rootCmd = &cobra.Command{
	Use:   "symidx",
	Short: "symidx - incremental codebase symbol index",
	Long: `symidx maintains an in-memory symbol index over a source repository,
kept current through content-hash change detection, filesystem watching
and post-edit hooks. It answers definition, usage and relation queries
for coding agents and editor tooling.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("symidx version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "",
		"Repository root (default: current directory)")
}

// resolveRepoRoot returns the absolute repository root from the --repo
// flag or the working directory
func resolveRepoRoot() (string, error) {
	root := repoFlag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve repo root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("repo root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repo root %s is not a directory", abs)
	}
	return abs, nil
}

// mustLoadConfig loads and validates configuration for the repo root,
// exiting on failure
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds the logger for a command from the loaded config
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(cfg.Logging.Level),
	})
}
