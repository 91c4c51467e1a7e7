package convert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"sonforge/internal/beatsteal"
	"sonforge/internal/history"
	"sonforge/internal/options"
	"sonforge/internal/services"
	"sonforge/internal/services/dsptool"
	"sonforge/internal/services/oggtool"
	"sonforge/internal/testsupport"
)

type recordingPresenter struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPresenter) SetBusy(busy bool) {
	p.append(fmt.Sprintf("busy=%t", busy))
}

func (p *recordingPresenter) Progress(percent int) {
	p.append(fmt.Sprintf("progress=%d", percent))
}

func (p *recordingPresenter) BeatsConsumed() {
	p.append("beats-consumed")
}

func (p *recordingPresenter) Result(result Result) {
	p.append("result=" + string(result.Outcome))
}

func (p *recordingPresenter) append(event string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPresenter) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fakeDSP struct {
	mu       sync.Mutex
	percents []int
	err      error
	block    chan struct{}
	lastOpts dsptool.Options
	calls    int
}

func (f *fakeDSP) Encode(_ context.Context, _, _ string, opts dsptool.Options, progress func(int)) error {
	f.mu.Lock()
	f.lastOpts = opts
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	for _, percent := range f.percents {
		progress(percent)
	}
	return f.err
}

func (f *fakeDSP) options() dsptool.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOpts
}

type fakeOGG struct {
	mu       sync.Mutex
	percents []int
	err      error
	lastOpts oggtool.Options
	calls    int
}

func (f *fakeOGG) Encode(_ context.Context, _, _ string, opts oggtool.Options, progress func(int)) error {
	f.mu.Lock()
	f.lastOpts = opts
	f.calls++
	f.mu.Unlock()
	for _, percent := range f.percents {
		progress(percent)
	}
	return f.err
}

type panicDSP struct{}

func (panicDSP) Encode(context.Context, string, string, dsptool.Options, func(int)) error {
	panic("slice bounds out of range")
}

func acceptAll(string) error { return nil }

func newManager(t *testing.T, markers ...uint32) *beatsteal.Manager {
	t.Helper()
	manager := beatsteal.NewManager(func(string) ([]uint32, error) {
		return append([]uint32(nil), markers...), nil
	}, nil)
	if len(markers) > 0 {
		if count := manager.TryLoadFrom("seed.sns"); count != len(markers) {
			t.Fatalf("TryLoadFrom loaded %d markers, want %d", count, len(markers))
		}
	}
	return manager
}

func defaultRequest() Request {
	return Request{
		InputPath:  "input.wav",
		OutputPath: "output.sns",
		Config: options.Configuration{
			Codec:        options.CodecDSP,
			OutputFormat: options.FormatSNS,
			SampleRateHz: options.DefaultSampleRate,
		},
	}
}

func TestConvertSuccessDeliversOrderedLifecycle(t *testing.T) {
	presenter := &recordingPresenter{}
	dsp := &fakeDSP{percents: []int{0, 37, 100}}
	orch := NewOrchestrator(Deps{
		Validator: acceptAll,
		DSP:       dsp,
		OGG:       &fakeOGG{},
		Beats:     newManager(t),
		Presenter: presenter,
	})

	result, err := orch.Convert(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if !result.Succeeded() {
		t.Fatalf("outcome = %s, want success", result.Outcome)
	}
	if result.Reason != "" {
		t.Fatalf("success reason = %q, want empty", result.Reason)
	}

	want := []string{"busy=true", "progress=0", "progress=37", "progress=100", "result=success", "busy=false"}
	got := presenter.snapshot()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event[%d] = %q, want %q (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestConvertRejectsInvalidInputBeforeBusy(t *testing.T) {
	presenter := &recordingPresenter{}
	dsp := &fakeDSP{}
	manager := newManager(t, 100, 200)
	orch := NewOrchestrator(Deps{
		Validator: func(string) error { return errors.New("unsupported bit depth") },
		DSP:       dsp,
		OGG:       &fakeOGG{},
		Beats:     manager,
		Presenter: presenter,
	})

	result, err := orch.Convert(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if result.Outcome != OutcomeValidationRejected {
		t.Fatalf("outcome = %s, want validation_rejected", result.Outcome)
	}
	if result.Reason != "unsupported bit depth" {
		t.Fatalf("reason = %q, want verbatim validator message", result.Reason)
	}
	if dsp.calls != 0 {
		t.Fatal("encoder must not run for a rejected input")
	}
	if !manager.HasPayload() {
		t.Fatal("rejection must not consume the borrowed beats")
	}
	got := presenter.snapshot()
	if len(got) != 1 || got[0] != "result=validation_rejected" {
		t.Fatalf("events = %v, want only the rejection result", got)
	}
	if !errors.Is(result.Err(), services.ErrValidation) {
		t.Fatalf("Err() = %v, want ErrValidation", result.Err())
	}
}

func TestConvertEncodeFailureKeepsToolReason(t *testing.T) {
	presenter := &recordingPresenter{}
	manager := newManager(t, 44100, 88200)
	orch := NewOrchestrator(Deps{
		Validator: acceptAll,
		DSP:       &fakeDSP{percents: []int{0, 12}, err: errors.New("sample count mismatch")},
		OGG:       &fakeOGG{},
		Beats:     manager,
		Presenter: presenter,
	})

	result, err := orch.Convert(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if result.Outcome != OutcomeEncodeFailed {
		t.Fatalf("outcome = %s, want encode_failed", result.Outcome)
	}
	if result.Reason != "sample count mismatch" {
		t.Fatalf("reason = %q, want verbatim tool message", result.Reason)
	}
	if manager.HasPayload() {
		t.Fatal("failed attempt must still consume the borrowed beats")
	}
	if !errors.Is(result.Err(), services.ErrEncode) {
		t.Fatalf("Err() = %v, want ErrEncode", result.Err())
	}
}

func TestConvertSecondCallWhileBusyIsRejected(t *testing.T) {
	block := make(chan struct{})
	dsp := &fakeDSP{percents: []int{100}, block: block}
	orch := NewOrchestrator(Deps{
		Validator: acceptAll,
		DSP:       dsp,
		OGG:       &fakeOGG{},
		Beats:     newManager(t),
		Presenter: &recordingPresenter{},
	})

	done := make(chan Result, 1)
	go func() {
		result, _ := orch.Convert(context.Background(), defaultRequest())
		done <- result
	}()

	deadline := time.After(2 * time.Second)
	for !orch.Busy() {
		select {
		case <-deadline:
			t.Fatal("first attempt never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := orch.Convert(context.Background(), defaultRequest()); !errors.Is(err, services.ErrBusy) {
		t.Fatalf("concurrent Convert error = %v, want ErrBusy", err)
	}

	close(block)
	result := <-done
	if !result.Succeeded() {
		t.Fatalf("first attempt outcome = %s, want success", result.Outcome)
	}
	if orch.Busy() {
		t.Fatal("busy flag still set after the attempt finished")
	}
	if dsp.calls != 1 {
		t.Fatalf("encoder ran %d times, want 1", dsp.calls)
	}
}

func TestConvertPassesBorrowedBeatsWhenSelected(t *testing.T) {
	presenter := &recordingPresenter{}
	manager := newManager(t, 10, 20, 30)
	dsp := &fakeDSP{percents: []int{100}}
	orch := NewOrchestrator(Deps{
		Validator: acceptAll,
		DSP:       dsp,
		OGG:       &fakeOGG{},
		Beats:     manager,
		Presenter: presenter,
	})

	req := defaultRequest()
	req.Config.Extras = options.ExtrasCustomBeats
	if _, err := orch.Convert(context.Background(), req); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	opts := dsp.options()
	if len(opts.Beats) != 3 || opts.Beats[0] != 10 || opts.Beats[2] != 30 {
		t.Fatalf("encoder beats = %v, want the borrowed markers", opts.Beats)
	}
	if manager.HasPayload() {
		t.Fatal("payload must be cleared after the attempt")
	}

	sawConsumed := false
	for _, event := range presenter.snapshot() {
		if event == "beats-consumed" {
			sawConsumed = true
		}
	}
	if !sawConsumed {
		t.Fatal("presenter never saw the beats-consumed signal")
	}
}

func TestConvertDegradesWhenCustomBeatsUnloaded(t *testing.T) {
	presenter := &recordingPresenter{}
	dsp := &fakeDSP{percents: []int{100}}
	orch := NewOrchestrator(Deps{
		Validator: acceptAll,
		DSP:       dsp,
		OGG:       &fakeOGG{},
		Beats:     newManager(t),
		Presenter: presenter,
	})

	req := defaultRequest()
	req.Config.Extras = options.ExtrasCustomBeats
	result, err := orch.Convert(context.Background(), req)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if !result.Succeeded() {
		t.Fatalf("outcome = %s, want success without beats", result.Outcome)
	}
	if got := dsp.options().Beats; len(got) != 0 {
		t.Fatalf("encoder beats = %v, want none", got)
	}
	for _, event := range presenter.snapshot() {
		if event == "beats-consumed" {
			t.Fatal("nothing was loaded, nothing should be consumed")
		}
	}
}

func TestConvertClearsLoadedBeatsEvenWithoutCustomExtras(t *testing.T) {
	manager := newManager(t, 512)
	dsp := &fakeDSP{percents: []int{100}}
	orch := NewOrchestrator(Deps{
		Validator: acceptAll,
		DSP:       dsp,
		OGG:       &fakeOGG{},
		Beats:     manager,
		Presenter: &recordingPresenter{},
	})

	req := defaultRequest()
	req.Config.Extras = options.ExtrasNone
	if _, err := orch.Convert(context.Background(), req); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if got := dsp.options().Beats; len(got) != 0 {
		t.Fatalf("encoder beats = %v, want none when extras do not select them", got)
	}
	if manager.HasPayload() {
		t.Fatal("a loaded payload is consumed by the attempt regardless of extras")
	}
}

func TestConvertRecoversEncoderPanic(t *testing.T) {
	presenter := &recordingPresenter{}
	manager := newManager(t, 7)
	orch := NewOrchestrator(Deps{
		Validator: acceptAll,
		DSP:       panicDSP{},
		OGG:       &fakeOGG{},
		Beats:     manager,
		Presenter: presenter,
	})

	result, err := orch.Convert(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if result.Outcome != OutcomeFaulted {
		t.Fatalf("outcome = %s, want faulted", result.Outcome)
	}
	if result.Reason == "" {
		t.Fatal("faulted result must carry a reason")
	}
	if orch.Busy() {
		t.Fatal("busy flag leaked after a panic")
	}
	if manager.HasPayload() {
		t.Fatal("payload must be cleared even when the encoder panics")
	}
	got := presenter.snapshot()
	if got[len(got)-1] != "busy=false" {
		t.Fatalf("final event = %q, want busy=false", got[len(got)-1])
	}
	if !errors.Is(result.Err(), services.ErrFault) {
		t.Fatalf("Err() = %v, want ErrFault", result.Err())
	}
}

func TestConvertClampsOutOfRangeProgress(t *testing.T) {
	presenter := &recordingPresenter{}
	orch := NewOrchestrator(Deps{
		Validator: acceptAll,
		DSP:       &fakeDSP{percents: []int{-5, 42, 180}},
		OGG:       &fakeOGG{},
		Beats:     newManager(t),
		Presenter: presenter,
	})

	if _, err := orch.Convert(context.Background(), defaultRequest()); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	var got []string
	for _, event := range presenter.snapshot() {
		if len(event) > 9 && event[:9] == "progress=" {
			got = append(got, event)
		}
	}
	want := []string{"progress=0", "progress=42", "progress=100"}
	if len(got) != len(want) {
		t.Fatalf("progress events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("progress[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConvertRoutesOGGCodec(t *testing.T) {
	dsp := &fakeDSP{}
	ogg := &fakeOGG{percents: []int{100}}
	orch := NewOrchestrator(Deps{
		Validator: acceptAll,
		DSP:       dsp,
		OGG:       ogg,
		Beats:     newManager(t),
		Presenter: &recordingPresenter{},
	})

	req := defaultRequest()
	req.Config.Codec = options.CodecOGG
	result, err := orch.Convert(context.Background(), req)
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if !result.Succeeded() {
		t.Fatalf("outcome = %s, want success", result.Outcome)
	}
	if ogg.calls != 1 || dsp.calls != 0 {
		t.Fatalf("ogg calls = %d, dsp calls = %d; want the OGG back-end only", ogg.calls, dsp.calls)
	}
}

func TestConvertRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	manager := newManager(t, 1, 2)
	orch := NewOrchestrator(Deps{
		Validator: acceptAll,
		DSP:       &fakeDSP{percents: []int{100}},
		OGG:       &fakeOGG{},
		Beats:     manager,
		Presenter: &recordingPresenter{},
		History:   store,
	})

	req := defaultRequest()
	req.Config.Extras = options.ExtrasCustomBeats
	if _, err := orch.Convert(context.Background(), req); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	attempts, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("recorded attempts = %d, want 1", len(attempts))
	}
	got := attempts[0]
	if got.Outcome != history.OutcomeSuccess {
		t.Fatalf("recorded outcome = %s, want success", got.Outcome)
	}
	if got.BeatsSource != "seed.sns" {
		t.Fatalf("beats source = %q, want the borrowed file name", got.BeatsSource)
	}
	if !got.Finished() {
		t.Fatal("recorded attempt must be terminal")
	}
}
