package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	symbolFormat string
)

var symbolCmd = &cobra.Command{
	Use:   "symbol <name>",
	Short: "Show definitions, usages and related symbols for a name",
	Args:  cobra.ExactArgs(1),
	Run:   runSymbol,
}

func init() {
	symbolCmd.Flags().StringVar(&symbolFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(symbolCmd)
}

func runSymbol(cmd *cobra.Command, args []string) {
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

	symCtx, err := manager.ContextForSymbol(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if symbolFormat == "json" {
		data, _ := json.MarshalIndent(symCtx, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(symCtx.Definitions) == 0 {
		fmt.Printf("No definitions of %q\n", args[0])
		return
	}

	fmt.Printf("Definitions of %s:\n", args[0])
	for _, def := range symCtx.Definitions {
		fmt.Printf("  %s:%d  %s", def.File, def.Line, def.Kind)
		if len(def.Bases) > 0 {
			fmt.Printf(" (bases: %s)", strings.Join(def.Bases, ", "))
		}
		fmt.Println()
		if len(def.Members) > 0 {
			fmt.Printf("    members: %s\n", strings.Join(def.Members, ", "))
		}
		if len(def.Params) > 0 {
			fmt.Printf("    params: %s\n", strings.Join(def.Params, ", "))
		}
	}

	if len(symCtx.Usages) > 0 {
		fmt.Println("Used by:")
		for _, u := range symCtx.Usages {
			fmt.Printf("  %s:%d (import of %s)\n", u.File, u.Line, u.Module)
		}
	}

	if len(symCtx.RelatedSymbols) > 0 {
		fmt.Println("Related:")
		for _, rel := range symCtx.RelatedSymbols {
			fmt.Printf("  %s %s  %s:%d\n", rel.Kind, rel.Name, rel.File, rel.Line)
		}
	}
}
