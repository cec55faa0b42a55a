package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var resumesCmd = &cobra.Command{
	Use:   "resumes",
	Short: "Manage uploaded resumes",
}

var resumesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List resumes, newest first",
	Args:  cobra.NoArgs,
	RunE:  runResumesList,
}

var resumesUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a resume and make it the primary one",
	Args:  cobra.ExactArgs(1),
	RunE:  runResumesUpload,
}

func init() {
	resumesCmd.AddCommand(resumesListCmd, resumesUploadCmd)
	rootCmd.AddCommand(resumesCmd)
}

func runResumesList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	resumes, err := newClient().ListResumes(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, resumes)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tSIZE\tPRIMARY\tUPLOADED")
	for _, r := range resumes {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\n", r.ID, r.Filename, r.Size, r.IsPrimary, r.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func runResumesUpload(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open resume: %w", err)
	}
	defer f.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	resume, err := newClient().UploadResume(ctx, filepath.Base(args[0]), f)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), resume)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s)\n", resume.Filename, resume.ID)
	if resume.URL != "" {
		fmt.Fprintln(cmd.OutOrStdout(), resume.URL)
	}
	return nil
}
