package history

import "time"

// Outcome is the persisted terminal state of a conversion attempt.
type Outcome string

const (
	OutcomeRunning            Outcome = "running"
	OutcomeSuccess            Outcome = "success"
	OutcomeValidationRejected Outcome = "validation_rejected"
	OutcomeEncodeFailed       Outcome = "encode_failed"
	OutcomeFaulted            Outcome = "faulted"
)

// Attempt is one recorded conversion attempt.
type Attempt struct {
	ID          int64
	UUID        string
	InputPath   string
	OutputPath  string
	Codec       string
	Format      string
	SampleRate  int
	ForceMono   bool
	Normalize   bool
	FourChannel bool
	Extras      string
	BeatsSource string
	Outcome     Outcome
	Reason      string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Duration    time.Duration
}

// Finished reports whether the attempt reached a terminal outcome.
func (a Attempt) Finished() bool {
	return a.Outcome != OutcomeRunning
}
