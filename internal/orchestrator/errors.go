package orchestrator

import "fmt"

// Error kinds named by spec.md §7. QueryError, StateError and
// PathEscape are raised directly by this package's own checks;
// StoreError and IndexError wrap failures from internal/store and
// internal/semantic without reinterpreting them.
type ErrorKind string

const (
	KindStoreError ErrorKind = "StoreError"
	KindIndexError ErrorKind = "IndexError"
	KindQueryError ErrorKind = "QueryError"
	KindPathEscape ErrorKind = "PathEscape"
	KindStateError ErrorKind = "StateError"
)

// Error is the orchestrator's own error type, carrying the spec's
// error-kind taxonomy so callers can branch on Kind without string
// matching.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("orchestrator: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("orchestrator: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newQueryError(msg string) error {
	return &Error{Kind: KindQueryError, Msg: msg}
}

func newStateError(msg string) error {
	return &Error{Kind: KindStateError, Msg: msg}
}

func wrapStoreError(msg string, err error) error {
	return &Error{Kind: KindStoreError, Msg: msg, Err: err}
}

func wrapIndexError(msg string, err error) error {
	return &Error{Kind: KindIndexError, Msg: msg, Err: err}
}
