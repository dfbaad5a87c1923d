package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"symidx/internal/indexer"
)

var (
	statusFormat string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running index server",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	root, err := resolveRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg := mustLoadConfig(root)

	url := fmt.Sprintf("http://%s:%d/api/v1/status", cfg.Server.Bind, cfg.Server.Port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: server not reachable at %s (%v)\n", url, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var status indexer.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding status: %v\n", err)
		os.Exit(1)
	}

	if statusFormat == "json" {
		data, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("State:    %s\n", status.State)
	fmt.Printf("Files:    %d\n", status.FilesIndexed)
	fmt.Printf("Symbols:  %d\n", status.TotalSymbols)
	if !status.LastUpdate.IsZero() {
		fmt.Printf("Updated:  %s\n", status.LastUpdate.Format(time.RFC3339))
	}
}
