package game

import "fmt"

// InvalidActionError reports an action that is illegal in the current
// betting state. Nothing is mutated; retry policy belongs to the caller.
type InvalidActionError struct {
	Reason string
}

func (e *InvalidActionError) Error() string {
	return "invalid action: " + e.Reason
}

func invalidActionf(format string, args ...any) error {
	return &InvalidActionError{Reason: fmt.Sprintf(format, args...)}
}

// InvariantError reports a broken engine invariant such as a chip
// conservation failure or a negative pot. It is fatal: any such state is
// evidence of a logic defect, so the tournament aborts rather than
// attempting a silent repair.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Msg
}

func invariantf(format string, args ...any) error {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}
