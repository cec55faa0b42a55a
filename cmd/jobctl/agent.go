package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/timmy/jobpilot/internal/service"
)

var agentCmd = &cobra.Command{
	Use:   "agent <action>",
	Short: "Run an AI agent action",
	Long: "Run an AI agent action: search_jobs, match_jobs, tailor_application, update_application, or resume_suggestions.\n" +
		"Parameters are passed as --param key=value, or --param key:=<json> for numbers, booleans, and lists.",
	Args: cobra.ExactArgs(1),
	RunE: runAgent,
}

var agentParams []string

func init() {
	agentCmd.Flags().StringArrayVarP(&agentParams, "param", "p", nil, "Action parameter as key=value (repeatable)")
	rootCmd.AddCommand(agentCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	params, err := parseParams(agentParams)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	resp, err := newClient().RunAgent(ctx, &service.AgentRunRequest{Action: args[0], Params: params})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, resp)
	}
	fmt.Fprintf(out, "status: %s\n", resp.Status)
	r := resp.Result
	if r == nil {
		return nil
	}
	if r.Error != "" {
		fmt.Fprintf(out, "error: %s\n", r.Error)
	}
	for _, job := range r.JobsFound {
		fmt.Fprintf(out, "job: %s @ %s (%s)\n", job.Title, job.Company, job.URL)
	}
	for _, m := range r.MatchScores {
		fmt.Fprintf(out, "match: %.0f  %s @ %s\n", m.Score, m.JobTitle, m.Company)
	}
	for _, s := range r.ResumeSuggestions {
		fmt.Fprintf(out, "suggestion: %s\n", s)
	}
	if r.CoverLetter != "" {
		fmt.Fprintf(out, "\n%s\n", r.CoverLetter)
	}
	return nil
}

// parseParams reads key=value pairs as strings and key:=value pairs as
// JSON literals, so ids stay strings and numbers can still be sent typed.
func parseParams(raw []string) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]interface{}, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q, want key=value", kv)
		}
		typed := strings.HasSuffix(key, ":")
		key = strings.TrimSpace(strings.TrimSuffix(key, ":"))
		if key == "" {
			return nil, fmt.Errorf("invalid --param %q, empty key", kv)
		}
		if !typed {
			params[key] = value
			continue
		}
		var v interface{}
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil, fmt.Errorf("invalid --param %q: %w", kv, err)
		}
		params[key] = v
	}
	return params, nil
}
