package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sonforge/internal/preflight"
	"sonforge/internal/textutil"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the runtime environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			checks := preflight.RunAll(cmd.Context(), cfg)
			binaries := preflight.CheckEncoderDeps(cfg)

			if jsonFlag {
				return writeJSON(cmd, map[string]any{
					"checks":   checks,
					"binaries": binaries,
				})
			}

			rows := make([][]string, 0, len(checks)+len(binaries))
			failed := 0
			for _, check := range checks {
				rows = append(rows, []string{check.Name, passFail(check.Passed), check.Detail})
				if !check.Passed {
					failed++
				}
			}
			for _, status := range binaries {
				detail := status.Detail
				if detail == "" {
					detail = status.Command
				}
				rows = append(rows, []string{status.Name, passFail(status.Available), detail})
				if !status.Available && !status.Optional {
					failed++
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Check", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			if failed > 0 {
				return fmt.Errorf("%d %s failed", failed, textutil.Ternary(failed == 1, "check", "checks"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit machine-readable JSON")
	return cmd
}

func passFail(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAIL"
}
