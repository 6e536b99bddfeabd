package stakemodifier

import "fmt"

// ModifierError reports a failure to compute or verify a stake modifier
// (spec §7's "Modifier*" error family).
type ModifierError struct {
	Op  string
	Err error
}

func (e *ModifierError) Error() string {
	return fmt.Sprintf("stakemodifier: %s: %v", e.Op, e.Err)
}

func (e *ModifierError) Unwrap() error { return e.Err }

func newError(op string, err error) *ModifierError {
	return &ModifierError{Op: op, Err: err}
}
