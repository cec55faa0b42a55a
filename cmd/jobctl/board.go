package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timmy/jobpilot/internal/board"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the application board, one column per status",
	Args:  cobra.NoArgs,
	RunE:  runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	b := board.New(newClient())
	if err := b.Refresh(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	columns := b.Columns()
	if jsonOutput {
		return printJSON(out, columns)
	}
	for _, col := range columns {
		fmt.Fprintf(out, "%s (%d)\n", col.Title, len(col.Applications))
		for _, app := range col.Applications {
			fmt.Fprintf(out, "  %s  %s @ %s\n", app.ID, app.JobTitle, app.Company)
		}
	}
	return nil
}
