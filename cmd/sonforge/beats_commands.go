package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sonforge/internal/config"
	"sonforge/internal/notifications"
)

func newBeatsCommand(ctx *commandContext) *cobra.Command {
	beatsCmd := &cobra.Command{
		Use:   "beats",
		Short: "Borrow beat markers from existing SON/SNS files",
	}

	beatsCmd.AddCommand(newBeatsStealCommand(ctx))
	beatsCmd.AddCommand(newBeatsShowCommand(ctx))
	beatsCmd.AddCommand(newBeatsClearCommand(ctx))

	return beatsCmd
}

func newBeatsStealCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "steal <file.sns>",
		Short: "Load beat markers from a SON/SNS file for the next conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			manager, err := ctx.ensureBeats()
			if err != nil {
				return err
			}

			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			count := manager.TryLoadFrom(path)
			if count == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No beat markers found in %s\n", path)
				return ctx.syncBeatsCache()
			}

			if err := ctx.syncBeatsCache(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Borrowed %d beat markers from %s\n", count, path)
			_ = notifications.NewService(cfg).NotifyBeatsStolen(cmd.Context(), path, count)
			return nil
		},
	}
}

func newBeatsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the currently borrowed beat markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureBeats()
			if err != nil {
				return err
			}

			payload, ok := manager.Peek()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No beats loaded")
				return nil
			}

			if jsonFlag {
				return writeJSON(cmd, map[string]any{
					"source_file": payload.SourceFileName,
					"beat_count":  payload.BeatCount(),
					"markers":     payload.Markers,
				})
			}

			rows := make([][]string, 0, len(payload.Markers))
			for i, marker := range payload.Markers {
				rows = append(rows, []string{strconv.Itoa(i + 1), strconv.FormatUint(uint64(marker), 10)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Source: %s (%d markers)\n", payload.SourceFileName, payload.BeatCount())
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Marker"},
				rows,
				[]columnAlignment{alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newBeatsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop the currently borrowed beat markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureBeats()
			if err != nil {
				return err
			}
			manager.Clear()
			if err := ctx.syncBeatsCache(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Borrowed beats cleared")
			return nil
		},
	}
}
