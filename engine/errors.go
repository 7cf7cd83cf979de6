package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrUninitializedInput is returned when a scalar input is read before
// its first write.
var ErrUninitializedInput = errors.New("engine: scalar input read before first write")

// ErrMissingInputKey is returned when a map input is read with a key
// that has no entry (never written, or since deleted).
var ErrMissingInputKey = errors.New("engine: map input read with missing key")

// CycleError is returned when a derived function re-enters a key that
// is already on the live-call stack (cycle detection enabled). It
// carries the live-call stack at the point of failure as a diagnostic
// payload, per §4.4.4.
type CycleError struct {
	Stack []DependencyKey

	// ID is a stable per-failure diagnostic identifier, useful for
	// correlating a single cycle occurrence across log lines and an
	// observability backend.
	ID uuid.UUID
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Stack))
	for i, k := range e.Stack {
		parts[i] = k.String()
	}
	return fmt.Sprintf("engine: cycle detected: %s", strings.Join(parts, " -> "))
}

// InputMutationDuringComputationError indicates an attempt to mutate an
// input (set/delete) while a derived computation is active, or to
// re-enter the input write path from within a derived function. Per
// §5/§7 this is a fatal assertion — the write path panics with this
// value rather than returning it as an error, since it signals a
// programmer error in the client, not a recoverable runtime condition.
type InputMutationDuringComputationError struct {
	Operation string
}

func (e *InputMutationDuringComputationError) Error() string {
	return fmt.Sprintf("engine: %s called while a derived computation is active", e.Operation)
}

// UserFunctionError wraps a failure raised by a user-supplied derived
// function with the key being computed and the live-call stack at the
// point of failure. No cache entry is installed when this is returned.
type UserFunctionError struct {
	Key   DependencyKey
	Stack []DependencyKey
	Err   error

	// ID is a stable per-failure diagnostic identifier; see CycleError.ID.
	ID uuid.UUID
}

func (e *UserFunctionError) Error() string {
	parts := make([]string, len(e.Stack))
	for i, k := range e.Stack {
		parts[i] = k.String()
	}
	return fmt.Sprintf("engine: derived function %s failed (stack: %s): %v", e.Key, strings.Join(parts, " -> "), e.Err)
}

func (e *UserFunctionError) Unwrap() error { return e.Err }

// missingInputError carries which input family/key was missing so
// callers and the observability layer can report it precisely while
// still satisfying errors.Is(err, ErrMissingInputKey).
type missingInputError struct {
	key DependencyKey
}

func (e *missingInputError) Error() string {
	return fmt.Sprintf("engine: missing input key %s", e.key)
}

func (e *missingInputError) Unwrap() error { return ErrMissingInputKey }

type uninitializedInputError struct {
	key DependencyKey
}

func (e *uninitializedInputError) Error() string {
	return fmt.Sprintf("engine: uninitialized scalar input %s", e.key)
}

func (e *uninitializedInputError) Unwrap() error { return ErrUninitializedInput }

// isEngineStructuredError reports whether err is already one of the
// engine's own structured failure kinds, as opposed to an arbitrary
// error returned by user logic. It is used to decide whether a failure
// bubbling out of a nested read needs wrapping in UserFunctionError at
// this frame, or is already carrying its own accurate diagnostic payload
// from the frame where it actually originated.
func isEngineStructuredError(err error) bool {
	switch err.(type) {
	case *CycleError, *UserFunctionError, *missingInputError, *uninitializedInputError,
		*unregisteredDerivedError, *InputMutationDuringComputationError:
		return true
	default:
		return false
	}
}
