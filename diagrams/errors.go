package diagrams

import (
	"errors"
	"fmt"
)

// ErrLibraryLoad is returned when the rendering service is unreachable on
// both the primary and fallback endpoints, or its initial configuration call
// fails.
var ErrLibraryLoad = errors.New("diagram render service failed to load")

// TargetRenderError is the terminal failure for a single diagram slot after
// all render attempts were exhausted. The slot's content is replaced with an
// inline error block; it is not retried automatically.
type TargetRenderError struct {
	FragmentID string
	Index      int
	Attempts   int
	Err        error
}

func (e *TargetRenderError) Error() string {
	return fmt.Sprintf("diagram %s[%d] failed after %d attempts: %v", e.FragmentID, e.Index, e.Attempts, e.Err)
}

func (e *TargetRenderError) Unwrap() error {
	return e.Err
}
