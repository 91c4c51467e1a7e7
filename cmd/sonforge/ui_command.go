package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sonforge/internal/tui"
)

func newUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Run the interactive terminal interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			beats, err := ctx.ensureBeats()
			if err != nil {
				return err
			}
			store, err := ctx.openHistory()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: history unavailable: %v\n", err)
				store = nil
			} else {
				defer store.Close()
			}

			runErr := tui.Run(tui.Deps{
				Config:  cfg,
				Beats:   beats,
				History: store,
				Logger:  logger,
			})

			if syncErr := ctx.syncBeatsCache(); syncErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: persist beats cache: %v\n", syncErr)
			}
			return runErr
		},
	}
}
