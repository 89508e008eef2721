package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidRange is returned when the range ends before it starts.
	ErrInvalidRange = errors.New("range end is before range start")

	// ErrInsufficientWorkers is returned when the worker pool is empty.
	ErrInsufficientWorkers = errors.New("no workers available for allocation")

	// ErrAllocationExhausted is returned when some occurrence has no eligible worker.
	ErrAllocationExhausted = errors.New("not enough users")

	// ErrInvalidTemplate is returned when a template cannot be expanded.
	ErrInvalidTemplate = errors.New("invalid shift template")
)

// ExhaustedError reports the occurrence that could not be staffed.
type ExhaustedError struct {
	TemplateID   uuid.UUID
	TemplateName string
	Day          time.Time
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: template %s (%s) on %s", ErrAllocationExhausted, e.TemplateName, e.TemplateID, e.Day.Format(time.DateOnly))
}

func (e *ExhaustedError) Unwrap() error {
	return ErrAllocationExhausted
}
