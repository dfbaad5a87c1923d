package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"symidx/internal/config"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize symidx configuration",
	Long:  "Creates a .symidx/ directory with default configuration in the repository root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRepoRoot()
	if err != nil {
		return err
	}

	configPath := filepath.Join(root, ".symidx", "config.json")
	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		// Idempotent: already initialized is success
		fmt.Println("symidx already initialized.")
		fmt.Printf("Configuration at: %s\n", configPath)
		fmt.Println("\nRun 'symidx init --force' to overwrite.")
		return nil
	}

	cfg := config.DefaultConfig()
	cfg.RepoRoot = root
	if err := cfg.Save(root); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Println("Initialized symidx.")
	fmt.Printf("Configuration at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  symidx index          # run a full scan")
	fmt.Println("  symidx serve          # start the index server")
	return nil
}
