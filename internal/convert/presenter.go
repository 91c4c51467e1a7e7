package convert

// Presenter receives the observable lifecycle of a conversion attempt. All
// calls for a single attempt arrive in order on a single goroutine: SetBusy
// true, zero or more Progress calls, optionally BeatsConsumed, Result, then
// SetBusy false.
type Presenter interface {
	// SetBusy signals the start and end of an accepted attempt.
	SetBusy(busy bool)
	// Progress reports encode completion in the range [0, 100].
	Progress(percent int)
	// BeatsConsumed signals that the borrowed beat payload was cleared as
	// part of finalizing the attempt.
	BeatsConsumed()
	// Result delivers the terminal outcome, exactly once per attempt.
	Result(result Result)
}

// NopPresenter discards all lifecycle events.
type NopPresenter struct{}

func (NopPresenter) SetBusy(bool)   {}
func (NopPresenter) Progress(int)   {}
func (NopPresenter) BeatsConsumed() {}
func (NopPresenter) Result(Result)  {}
