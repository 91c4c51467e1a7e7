package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"sonforge/internal/history"
	"sonforge/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limitFlag int
		jsonFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversion attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			attempts, err := store.Recent(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}

			if jsonFlag {
				return writeJSON(cmd, attempts)
			}

			if len(attempts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversion attempts recorded")
				return nil
			}

			rows := make([][]string, 0, len(attempts))
			for _, attempt := range attempts {
				rows = append(rows, []string{
					strconv.FormatInt(attempt.ID, 10),
					attempt.StartedAt.Local().Format("2006-01-02 15:04"),
					filepath.Base(attempt.InputPath),
					attempt.Codec,
					attempt.Format,
					textutil.Humanize(string(attempt.Outcome)),
					formatDuration(attempt),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Started", "Input", "Codec", "Format", "Outcome", "Duration"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum number of attempts to list")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit machine-readable JSON")
	return cmd
}

func formatDuration(attempt history.Attempt) string {
	if !attempt.Finished() {
		return "-"
	}
	return attempt.Duration.Round(time.Millisecond * 100).String()
}
