package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed taxonomy of pipeline failures.
type ErrorKind string

const (
	TrainingFailed        ErrorKind = "TrainingFailed"
	GenerationFailed      ErrorKind = "GenerationFailed"
	ResultUnavailable     ErrorKind = "ResultUnavailable"
	Timeout               ErrorKind = "Timeout"
	SwapFailed            ErrorKind = "SwapFailed"
	MediaProcessingFailed ErrorKind = "MediaProcessingFailed"
	InvalidInput          ErrorKind = "InvalidInput"
)

// PipelineError is the single structured error a failed job surfaces: the
// stage that failed, the taxonomy kind, and the underlying diagnostic.
type PipelineError struct {
	Stage Stage
	Kind  ErrorKind
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("stage %s failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// KindError tags an error with a taxonomy kind before the orchestrator knows
// which stage it belongs to. Adapters return these; the orchestrator wraps
// them into a PipelineError with the stage name attached.
type KindError struct {
	Kind ErrorKind
	Err  error
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *KindError) Unwrap() error {
	return e.Err
}

func NewKindError(kind ErrorKind, format string, args ...interface{}) *KindError {
	return &KindError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the taxonomy kind from err, defaulting to the given kind
// for untagged errors.
func KindOf(err error, fallback ErrorKind) ErrorKind {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return fallback
}
