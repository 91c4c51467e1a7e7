package convert

import (
	"sonforge/internal/history"
	"sonforge/internal/services"
)

// Outcome identifies the terminal state of a conversion attempt.
type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeValidationRejected Outcome = "validation_rejected"
	OutcomeEncodeFailed       Outcome = "encode_failed"
	OutcomeFaulted            Outcome = "faulted"
)

// Result is the single terminal outcome of a conversion attempt. Exactly one
// Result is produced per accepted Convert call; Reason is empty only for
// success.
type Result struct {
	Outcome Outcome
	Reason  string
}

func success() Result {
	return Result{Outcome: OutcomeSuccess}
}

func validationRejected(reason string) Result {
	return Result{Outcome: OutcomeValidationRejected, Reason: reason}
}

func encodeFailed(reason string) Result {
	return Result{Outcome: OutcomeEncodeFailed, Reason: reason}
}

func faulted(reason string) Result {
	return Result{Outcome: OutcomeFaulted, Reason: reason}
}

// Succeeded reports whether the attempt produced an output file.
func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Err maps the result onto the shared error taxonomy for callers that need an
// error value (exit codes, logs). Success maps to nil.
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeValidationRejected:
		return services.Wrap(services.ErrValidation, "convert", "validate", r.Reason, nil)
	case OutcomeEncodeFailed:
		return services.Wrap(services.ErrEncode, "convert", "encode", r.Reason, nil)
	default:
		return services.Wrap(services.ErrFault, "convert", "encode", r.Reason, nil)
	}
}

// HistoryOutcome maps the result onto the persisted history outcome.
func (r Result) HistoryOutcome() history.Outcome {
	switch r.Outcome {
	case OutcomeSuccess:
		return history.OutcomeSuccess
	case OutcomeValidationRejected:
		return history.OutcomeValidationRejected
	case OutcomeEncodeFailed:
		return history.OutcomeEncodeFailed
	default:
		return history.OutcomeFaulted
	}
}
