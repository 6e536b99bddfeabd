package payee

import "fmt"

// PayeeError reports a masternode or superblock payee mismatch (spec §7's
// "Payee*" family).
type PayeeError struct {
	Op     string
	Height uint32
	Err    error
}

func (e *PayeeError) Error() string {
	return fmt.Sprintf("payee: %s: height %d: %v", e.Op, e.Height, e.Err)
}

func (e *PayeeError) Unwrap() error { return e.Err }

func newError(op string, height uint32, err error) *PayeeError {
	return &PayeeError{Op: op, Height: height, Err: err}
}
