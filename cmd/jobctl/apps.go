package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/timmy/jobpilot/internal/board"
	"github.com/timmy/jobpilot/internal/domain"
	"github.com/timmy/jobpilot/internal/service"
)

var appsCmd = &cobra.Command{
	Use:     "apps",
	Aliases: []string{"applications"},
	Short:   "Manage tracked applications",
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runAppsList,
}

var appsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Start tracking a job",
	Args:  cobra.NoArgs,
	RunE:  runAppsSave,
}

var appsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one application with its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppsShow,
}

var appsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change status, notes, or cover letter",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppsUpdate,
}

var appsMoveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Move an application to another board column",
	Args:  cobra.ExactArgs(2),
	RunE:  runAppsMove,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Count applications per status",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var (
	listStatus string

	saveJobID       string
	saveTitle       string
	saveCompany     string
	saveDescription string

	updateStatus          string
	updateNotes           string
	updateCoverLetterFile string
)

func init() {
	appsListCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Only show this status")

	appsSaveCmd.Flags().StringVar(&saveJobID, "job-id", "", "Source job id")
	appsSaveCmd.Flags().StringVarP(&saveTitle, "title", "t", "", "Job title (required)")
	appsSaveCmd.Flags().StringVarP(&saveCompany, "company", "c", "", "Company (required)")
	appsSaveCmd.Flags().StringVarP(&saveDescription, "description", "d", "", "Job description")
	appsSaveCmd.MarkFlagRequired("title")
	appsSaveCmd.MarkFlagRequired("company")

	appsUpdateCmd.Flags().StringVarP(&updateStatus, "status", "s", "", "New status")
	appsUpdateCmd.Flags().StringVarP(&updateNotes, "notes", "n", "", "Notes; an empty value clears them")
	appsUpdateCmd.Flags().StringVar(&updateCoverLetterFile, "cover-letter-file", "", "Read the cover letter from this file")

	appsCmd.AddCommand(appsListCmd, appsSaveCmd, appsShowCmd, appsUpdateCmd, appsMoveCmd)
	rootCmd.AddCommand(appsCmd, summaryCmd)
}

func runAppsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	apps, err := newClient().ListApplications(ctx, listStatus)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), apps)
	}
	return printApplications(cmd.OutOrStdout(), apps)
}

func runAppsSave(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	app, err := newClient().CreateApplication(ctx, &service.CreateApplicationRequest{
		JobID:          saveJobID,
		JobTitle:       saveTitle,
		Company:        saveCompany,
		JobDescription: saveDescription,
	})
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), app)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tracking %s at %s (%s)\n", app.JobTitle, app.Company, app.ID)
	return nil
}

func runAppsShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	app, err := newClient().GetApplication(ctx, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, app)
	}

	fmt.Fprintf(out, "%s at %s\n", app.JobTitle, app.Company)
	fmt.Fprintf(out, "  id:      %s\n", app.ID)
	fmt.Fprintf(out, "  status:  %s\n", app.Status)
	if app.AppliedAt != nil {
		fmt.Fprintf(out, "  applied: %s\n", app.AppliedAt.Format("2006-01-02"))
	}
	if app.Notes != nil {
		fmt.Fprintf(out, "  notes:   %s\n", *app.Notes)
	}
	if app.CoverLetter != nil {
		fmt.Fprintf(out, "  cover letter: %d chars\n", len(*app.CoverLetter))
	}
	if len(app.Events) > 0 {
		fmt.Fprintln(out, "History:")
		for _, ev := range app.Events {
			from := ev.OldValue
			if from == "" {
				from = "-"
			}
			fmt.Fprintf(out, "  %s  %s -> %s  %s\n", ev.CreatedAt.Format("2006-01-02 15:04"), from, ev.NewValue, ev.Notes)
		}
	}
	return nil
}

func runAppsUpdate(cmd *cobra.Command, args []string) error {
	req := &service.UpdateApplicationRequest{}
	if cmd.Flags().Changed("status") {
		req.Status = &updateStatus
	}
	if cmd.Flags().Changed("notes") {
		req.Notes = &updateNotes
	}
	if updateCoverLetterFile != "" {
		data, err := os.ReadFile(updateCoverLetterFile)
		if err != nil {
			return fmt.Errorf("failed to read cover letter: %w", err)
		}
		letter := string(data)
		req.CoverLetter = &letter
	}
	if req.Status == nil && req.Notes == nil && req.CoverLetter == nil {
		return fmt.Errorf("nothing to update; pass --status, --notes, or --cover-letter-file")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	app, err := newClient().UpdateApplication(ctx, args[0], req)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), app)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", app.ID, app.Status)
	return nil
}

// runAppsMove goes through the board so the move follows the same path as
// a drag and drop: one transition, reverted locally on failure.
func runAppsMove(cmd *cobra.Command, args []string) error {
	status, err := domain.ParseStatus(args[1])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	b := board.New(newClient())
	if err := b.Refresh(ctx); err != nil {
		return err
	}
	if _, ok := b.Application(args[0]); !ok {
		return &domain.NotFoundError{Resource: "application", ID: args[0]}
	}

	b.DragStart(args[0])
	m := b.DragEnd(ctx, string(status))
	if m == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already %s\n", args[0], status)
		return nil
	}
	if err := m.Wait(ctx); err != nil {
		return fmt.Errorf("move failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %s: %s -> %s\n", m.ApplicationID, m.From, m.To)
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	summary, err := newClient().Summary(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, summary)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, status := range domain.AllStatuses() {
		fmt.Fprintf(tw, "%s\t%d\n", status, summary.ByStatus[status])
	}
	fmt.Fprintf(tw, "total\t%d\n", summary.Total)
	return tw.Flush()
}

func printApplications(w io.Writer, apps []domain.Application) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tCOMPANY\tUPDATED")
	for _, app := range apps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", app.ID, app.Status, app.JobTitle, app.Company, app.UpdatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}
