package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptyVocabulary    = fmt.Errorf("no vocabulary terms have been found")
	ErrModelNotReady      = fmt.Errorf("toxicity model is not ready")
	ErrValidationInFlight = fmt.Errorf("a validation is already in flight")
	ErrSnapshotConflict   = fmt.Errorf("shared log changed between read and write")
	ErrNoSession          = fmt.Errorf("no active session")
)
