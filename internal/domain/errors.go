package domain

import "fmt"

// Op is the handle operation that failed
type Op string

const (
	OpOpen  Op = "open"
	OpRead  Op = "read"
	OpWrite Op = "write"
	OpClose Op = "close"
)

// IOError is the single failure kind of every stage: an open, read, write or
// close on a file handle that did not succeed.
type IOError struct {
	Stage Stage
	Op    Op
	Path  string
	Err   error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
