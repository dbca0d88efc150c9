// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package launcher

import (
	"errors"
	"fmt"
)

// ErrInterrupted is returned by Run when the server process was stopped
// at the operator's request, that is, by canceling Run's context.
var ErrInterrupted = errors.New("interrupted")

// ChildProcessError is returned by Run when the server process exits
// with a non-zero status.
type ChildProcessError struct {
	Command  string
	ExitCode int
	Err      error
}

// Error implements error.
func (e *ChildProcessError) Error() string {
	return fmt.Sprintf("command %q returned non-zero exit status %d: %v", e.Command, e.ExitCode, e.Err)
}

// Unwrap supports errors.Is and errors.As.
func (e *ChildProcessError) Unwrap() error {
	return e.Err
}

// UnexpectedError is returned by Run for any other failure, for example
// if the server binary cannot be found.
type UnexpectedError struct {
	Err error
}

// Error implements error.
func (e *UnexpectedError) Error() string {
	return e.Err.Error()
}

// Unwrap supports errors.Is and errors.As.
func (e *UnexpectedError) Unwrap() error {
	return e.Err
}
