package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/timmy/jobpilot/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search [keywords...]",
	Short: "Search every enabled job board",
	RunE:  runSearch,
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the job boards the server searches",
	RunE:  runSources,
}

var (
	searchLocation string
	searchRemote   bool
	searchLimit    int
)

func init() {
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "Location filter")
	searchCmd.Flags().BoolVarP(&searchRemote, "remote", "r", false, "Remote jobs only")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Results per source (server default when 0)")

	rootCmd.AddCommand(searchCmd, sourcesCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	resp, err := newClient().SearchJobs(ctx, &service.SearchRequest{
		Keywords:   strings.Join(args, " "),
		Location:   searchLocation,
		RemoteOnly: searchRemote,
		Limit:      searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, resp)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tID\tTITLE\tCOMPANY\tLOCATION")
	for _, job := range resp.Jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", job.Source, job.SourceID, job.Title, job.Company, job.Location)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d jobs\n", resp.Count)
	return nil
}

func runSources(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sources, err := newClient().Sources(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, sources)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tREMOTE")
	for _, s := range sources {
		fmt.Fprintf(tw, "%s\t%s\t%t\n", s.ID, s.Name, s.RemoteCapable)
	}
	return tw.Flush()
}
