package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	searchFormat string
	searchDepth  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search symbols by name",
	Long:  "Scan the repository and search indexed symbols by case-insensitive substring match",
	Args:  cobra.ExactArgs(1),
	Run:   runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchFormat, "format", "human", "Output format (json, human)")
	searchCmd.Flags().IntVar(&searchDepth, "depth", 0, "Attach full context to each hit when > 0")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	root, err := resolveRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	manager := buildManager(root)
	if _, err := manager.FullScan(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning: %v\n", err)
		os.Exit(1)
	}

	hits, err := manager.Search(args[0], searchDepth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching: %v\n", err)
		os.Exit(1)
	}

	if searchFormat == "json" {
		data, _ := json.MarshalIndent(hits, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(hits) == 0 {
		fmt.Printf("No symbols matching %q\n", args[0])
		return
	}
	for _, hit := range hits {
		fmt.Printf("%-16s %s  %s:%d\n", hit.Kind, hit.Symbol, hit.File, hit.Line)
	}
}
