package pipeline

import (
	"fmt"

	"github.com/nofnotg/anamnesis/internal/model"
)

// StageError attributes a fatal failure to the pipeline stage that raised
// it. A document either returns a best-effort result with warnings, or
// fails whole with a clear stage attribution — never a silently partial
// success.
type StageError struct {
	Stage model.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
