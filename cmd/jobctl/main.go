// Package main provides jobctl, a command-line client for the jobpilot API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/timmy/jobpilot/internal/client"
)

var rootCmd = &cobra.Command{
	Use:          "jobctl",
	Short:        "Job search and application tracking from the terminal",
	Long:         "jobctl searches job boards, tracks applications through the pipeline, and talks to the AI agent via a running jobpilot API server.",
	SilenceUsage: true,
}

var (
	serverURL  string
	reqTimeout time.Duration
	jsonOutput bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("JOBPILOT_SERVER", "http://localhost:8080"), "jobpilot API base URL")
	rootCmd.PersistentFlags().DurationVar(&reqTimeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON instead of tables")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.New(client.Config{BaseURL: serverURL, Timeout: reqTimeout})
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, reqTimeout)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
