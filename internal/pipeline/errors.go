package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Stage names reported in StageError and in log lines.
const (
	StageFetch     = "fetch"
	StageExtract   = "extract"
	StageNormalize = "normalize"
	StageSmooth    = "smooth"
)

// ErrInvalidWindow is returned when a moving-average window is not a positive integer.
var ErrInvalidWindow = errors.New("window size must be a positive integer")

// SchemaError reports required columns that the dataset does not declare.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// StageError ties a failure to the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailedStage returns the stage name carried by err, or "" when err did not
// come from a pipeline stage.
func FailedStage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
