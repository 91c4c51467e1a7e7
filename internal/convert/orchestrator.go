package convert

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"sonforge/internal/beatsteal"
	"sonforge/internal/history"
	"sonforge/internal/logging"
	"sonforge/internal/options"
	"sonforge/internal/services"
	"sonforge/internal/services/dsptool"
	"sonforge/internal/services/oggtool"
)

// Validator checks an input file before any encode work starts. A nil return
// accepts the file; a non-nil error's message is surfaced verbatim as the
// rejection reason.
type Validator func(path string) error

// Request describes one conversion attempt.
type Request struct {
	InputPath  string
	OutputPath string
	Config     options.Configuration
}

// Deps carries the orchestrator's collaborators. Validator, DSP, OGG, and
// Beats are required; Presenter, History, and Logger may be nil.
type Deps struct {
	Validator Validator
	DSP       dsptool.Client
	OGG       oggtool.Client
	Beats     *beatsteal.Manager
	Presenter Presenter
	History   *history.Store
	Logger    *slog.Logger
}

// Orchestrator runs conversion attempts one at a time. Validation happens on
// the calling goroutine; the encode runs on a worker goroutine while the
// caller relays progress, so Convert blocks until the attempt is terminal.
type Orchestrator struct {
	validate  Validator
	dsp       dsptool.Client
	ogg       oggtool.Client
	beats     *beatsteal.Manager
	presenter Presenter
	store     *history.Store
	logger    *slog.Logger

	busy atomic.Bool
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(deps Deps) *Orchestrator {
	presenter := deps.Presenter
	if presenter == nil {
		presenter = NopPresenter{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		validate:  deps.Validator,
		dsp:       deps.DSP,
		ogg:       deps.OGG,
		beats:     deps.Beats,
		presenter: presenter,
		store:     deps.History,
		logger:    logging.WithComponent(logger, "convert"),
	}
}

// Busy reports whether a conversion attempt is currently in flight.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Convert runs one conversion attempt to its terminal outcome. A second call
// while an attempt is in flight returns services.ErrBusy without producing an
// attempt. Validation rejection is itself a terminal outcome, reported before
// the presenter ever sees a busy transition and without touching the borrowed
// beats. An accepted encode always finalizes exactly once: the busy flag drops
// and, when a beat payload was loaded at the start of the attempt, the payload
// is cleared regardless of outcome.
func (o *Orchestrator) Convert(ctx context.Context, req Request) (Result, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return Result{}, services.ErrBusy
	}
	defer o.busy.Store(false)

	attemptID := uuid.NewString()
	ctx = services.WithAttemptID(ctx, attemptID)
	logger := o.logger.With(logging.String(logging.FieldAttemptID, attemptID))

	logger.Info("conversion requested",
		logging.String(logging.FieldInput, req.InputPath),
		logging.String(logging.FieldOutput, req.OutputPath),
		logging.String(logging.FieldCodec, string(req.Config.Codec)),
		logging.String(logging.FieldFormat, string(req.Config.OutputFormat)),
	)

	if err := o.validate(req.InputPath); err != nil {
		result := validationRejected(err.Error())
		attempt := o.beginRecord(ctx, logger, req, beatsteal.BorrowedBeats{})
		o.finishRecord(ctx, logger, attempt, result)
		o.presenter.Result(result)
		return result, nil
	}

	payload, hadBeats := o.beats.Peek()
	attempt := o.beginRecord(ctx, logger, req, payload)

	o.presenter.SetBusy(true)
	result := o.runAttempt(ctx, logger, req, payload, hadBeats)

	if hadBeats {
		o.beats.Clear()
		o.presenter.BeatsConsumed()
	}
	o.finishRecord(ctx, logger, attempt, result)
	o.presenter.Result(result)
	o.presenter.SetBusy(false)
	return result, nil
}

// runAttempt dispatches the encode to a worker goroutine and relays its
// progress events, in order, from the calling goroutine.
func (o *Orchestrator) runAttempt(ctx context.Context, logger *slog.Logger, req Request, payload beatsteal.BorrowedBeats, hadBeats bool) Result {
	progressCh := make(chan int)
	resultCh := make(chan Result, 1)

	go func() {
		defer close(progressCh)
		resultCh <- o.runEncode(ctx, logger, req, payload, hadBeats, progressCh)
	}()

	for percent := range progressCh {
		o.presenter.Progress(clampPercent(percent))
	}
	return <-resultCh
}

func (o *Orchestrator) runEncode(ctx context.Context, logger *slog.Logger, req Request, payload beatsteal.BorrowedBeats, hadBeats bool, progressCh chan<- int) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("encoder panicked", logging.Any("panic", r))
			result = faulted(fmt.Sprintf("internal fault: %v", r))
		}
	}()

	var markers []uint32
	if req.Config.Extras == options.ExtrasCustomBeats && hadBeats {
		markers = payload.Markers
	}

	progress := func(percent int) {
		progressCh <- percent
	}

	var err error
	switch req.Config.Codec {
	case options.CodecOGG:
		err = o.ogg.Encode(ctx, req.InputPath, req.OutputPath, oggtool.Options{
			Debug:      req.Config.Debug,
			SampleRate: req.Config.SampleRateHz,
			ForceMono:  req.Config.ForceMono,
			Format:     string(req.Config.OutputFormat),
			Normalize:  req.Config.Normalize,
			Beats:      markers,
		}, progress)
	default:
		err = o.dsp.Encode(ctx, req.InputPath, req.OutputPath, dsptool.Options{
			Debug:       req.Config.Debug,
			SampleRate:  req.Config.SampleRateHz,
			ForceMono:   req.Config.ForceMono,
			Format:      string(req.Config.OutputFormat),
			Normalize:   req.Config.Normalize,
			FourChannel: req.Config.FourChannel,
			Beats:       markers,
		}, progress)
	}
	if err != nil {
		logger.Warn("encode failed", logging.Error(err))
		return encodeFailed(err.Error())
	}

	logger.Info("encode complete", logging.String(logging.FieldOutput, req.OutputPath))
	return success()
}

// beginRecord opens a history row for the attempt when a store is configured.
// History is best effort and never changes the conversion outcome.
func (o *Orchestrator) beginRecord(ctx context.Context, logger *slog.Logger, req Request, payload beatsteal.BorrowedBeats) *history.Attempt {
	if o.store == nil {
		return nil
	}
	attempt, err := o.store.Begin(ctx, history.Attempt{
		InputPath:   req.InputPath,
		OutputPath:  req.OutputPath,
		Codec:       string(req.Config.Codec),
		Format:      string(req.Config.OutputFormat),
		SampleRate:  req.Config.SampleRateHz,
		ForceMono:   req.Config.ForceMono,
		Normalize:   req.Config.Normalize,
		FourChannel: req.Config.FourChannel,
		Extras:      string(req.Config.Extras),
		BeatsSource: payload.SourceFileName,
	})
	if err != nil {
		logger.Warn("history insert failed", logging.Error(err))
		return nil
	}
	return attempt
}

func (o *Orchestrator) finishRecord(ctx context.Context, logger *slog.Logger, attempt *history.Attempt, result Result) {
	if attempt == nil {
		return
	}
	if err := o.store.Finish(ctx, attempt.ID, result.HistoryOutcome(), result.Reason); err != nil {
		logger.Warn("history update failed", logging.Error(err))
	}
}

func clampPercent(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
