package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"sonforge/internal/config"
	"sonforge/internal/convert"
	"sonforge/internal/fileutil"
	"sonforge/internal/notifications"
	"sonforge/internal/options"
	"sonforge/internal/services/dsptool"
	"sonforge/internal/services/oggtool"
	"sonforge/internal/wav"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		outputFlag      string
		codecFlag       string
		formatFlag      string
		rateFlag        int
		monoFlag        bool
		normalizeFlag   bool
		fourChannelFlag bool
		extrasFlag      string
		debugFlag       bool
	)

	cmd := &cobra.Command{
		Use:   "convert <input.wav>",
		Short: "Convert a WAV file into a SON or SNS container",
		Args:  cobra.ExactArgs(1),
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

			inputPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			resolved := resolveSelection(cfg, codecFlag, formatFlag, rateFlag, monoFlag, normalizeFlag, fourChannelFlag, extrasFlag, debugFlag)
			if !config.SampleRateAllowed(resolved.Config.SampleRateHz) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: sample rate %d Hz is outside the supported set %v\n",
					resolved.Config.SampleRateHz, config.AllowedSampleRates)
			}

			outputPath := strings.TrimSpace(outputFlag)
			if outputPath == "" {
				outputPath = filepath.Join(cfg.Paths.OutputDir, resolved.Config.OutputFormat.DefaultOutputName(inputPath))
			} else if outputPath, err = config.ExpandPath(outputPath); err != nil {
				return err
			}

			lock := flock.New(cfg.Paths.LockFilePath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return errors.New("another sonforge conversion is already running")
			}
			defer func() { _ = lock.Unlock() }()

			store, err := ctx.openHistory()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: history unavailable: %v\n", err)
				store = nil
			} else {
				defer store.Close()
			}

			presenter := &consolePresenter{cmd: cmd}
			orchestrator := convert.NewOrchestrator(convert.Deps{
				Validator: wav.Validate,
				DSP:       dsptool.NewCLI(dsptool.WithBinary(cfg.DSPBinary())),
				OGG:       oggtool.NewCLI(oggtool.WithBinary(cfg.OGGBinary())),
				Beats:     beats,
				Presenter: presenter,
				History:   store,
				Logger:    logger,
			})

			runCtx := cmd.Context()
			if cfg.Tools.EncodeTimeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(runCtx, time.Duration(cfg.Tools.EncodeTimeout)*time.Second)
				defer cancel()
			}

			stagedPath := fileutil.StagingPath(outputPath)
			started := time.Now()
			result, err := orchestrator.Convert(runCtx, convert.Request{
				InputPath:  inputPath,
				OutputPath: stagedPath,
				Config:     resolved.Config,
			})
			if err != nil {
				return err
			}

			if syncErr := ctx.syncBeatsCache(); syncErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: persist beats cache: %v\n", syncErr)
			}

			notifier := notifications.NewService(cfg)
			if result.Succeeded() {
				if err := fileutil.Promote(stagedPath, outputPath); err != nil {
					return fmt.Errorf("finalize output: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputPath)
				_ = notifier.NotifyConversionCompleted(cmd.Context(), outputPath, time.Since(started))
				return nil
			}

			fileutil.DiscardStaging(stagedPath)
			_ = notifier.NotifyConversionFailed(cmd.Context(), inputPath, result.Reason)
			return result.Err()
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file path (defaults to the output directory)")
	cmd.Flags().StringVar(&codecFlag, "codec", string(options.CodecDSP), "Encoder back-end: dsp or ogg")
	cmd.Flags().StringVar(&formatFlag, "format", "", "Container format: son or sns (defaults from config)")
	cmd.Flags().IntVar(&rateFlag, "rate", 0, "Output sample rate in Hz (defaults from config)")
	cmd.Flags().BoolVar(&monoFlag, "mono", false, "Downmix to mono")
	cmd.Flags().BoolVar(&normalizeFlag, "normalize", false, "Normalize loudness before encoding")
	cmd.Flags().BoolVar(&fourChannelFlag, "four-channel", false, "Emit four-channel output (SON format only)")
	cmd.Flags().StringVar(&extrasFlag, "extras", "none", "Extras treatment: none, justdance, or custombeats")
	cmd.Flags().BoolVar(&debugFlag, "debug-encode", false, "Run the encoder with verbose output")

	return cmd
}

// resolveSelection maps command-line flags onto the raw option selection and
// resolves it, filling unset flags from config defaults.
func resolveSelection(cfg *config.Config, codec, format string, rate int, mono, normalize, fourChannel bool, extras string, debug bool) options.Resolution {
	if strings.TrimSpace(format) == "" {
		format = cfg.Defaults.Format
	}
	if rate <= 0 {
		rate = cfg.Defaults.SampleRate
	}

	raw := options.RawSelection{
		Codec:              codec,
		SampleRate:         strconv.Itoa(rate),
		FormatIndex:        options.FormatIndex(options.ParseFormat(format)),
		FourChannelChecked: fourChannel,
		ExtrasIndex:        extrasIndex(extras),
		ForceMono:          mono || cfg.Defaults.ForceMono,
		Normalize:          normalize || cfg.Defaults.Normalize,
		Debug:              debug,
	}
	return options.Resolve(raw)
}

func extrasIndex(name string) int {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(options.ExtrasJustDance):
		return 1
	case string(options.ExtrasCustomBeats):
		return 2
	default:
		return 0
	}
}

// consolePresenter renders conversion lifecycle events as plain console
// output.
type consolePresenter struct {
	cmd      *cobra.Command
	sawBusy  bool
	lastSeen int
}

func (p *consolePresenter) SetBusy(busy bool) {
	if busy {
		p.sawBusy = true
		fmt.Fprintln(p.cmd.OutOrStdout(), "Encoding started")
	}
}

func (p *consolePresenter) Progress(percent int) {
	if percent == p.lastSeen {
		return
	}
	p.lastSeen = percent
	fmt.Fprintf(p.cmd.OutOrStdout(), "\rEncoding %3d%%", percent)
	if percent >= 100 {
		fmt.Fprintln(p.cmd.OutOrStdout())
	}
}

func (p *consolePresenter) BeatsConsumed() {
	fmt.Fprintln(p.cmd.OutOrStdout(), "Borrowed beats consumed")
}

func (p *consolePresenter) Result(result convert.Result) {
	if result.Succeeded() {
		return
	}
	if p.sawBusy {
		fmt.Fprintln(p.cmd.OutOrStdout())
	}
	fmt.Fprintf(p.cmd.ErrOrStderr(), "Conversion failed: %s\n", result.Reason)
}
