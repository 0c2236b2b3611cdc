// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// trackLocation controls whether call sites are recorded on errors.
var trackLocation = true

// Error is a status code plus a message and an optional cause.
type Error struct {
	Code      Status      `json:"code"`
	Message   string      `json:"message,omitempty"`
	Cause     *Error      `json:"cause,omitempty"`
	CallStack []*CallSite `json:"callStack,omitempty"`
}

// CallSite records the location an error was produced at.
type CallSite struct {
	FuncName string `json:"funcName"`
	File     string `json:"file"`
	Line     int64  `json:"line"`
}

// Error implements error.
func (s Status) Error() string { return s.String() }

// With constructs an error with a message built from the arguments.
func (s Status) With(v ...interface{}) *Error {
	e := s.new()
	e.Message = fmt.Sprint(v...)
	return e
}

// WithFormat constructs an error with a formatted message. If the format
// wraps another error, that error becomes the cause.
func (s Status) WithFormat(format string, args ...interface{}) *Error {
	err := fmt.Errorf(format, args...)

	e := s.new()
	e.Message = err.Error()
	if u, ok := err.(interface{ Unwrap() error }); ok {
		e.setCause(convert(u.Unwrap()))
	}
	return e
}

// WithCauseAndFormat constructs an error with an explicit cause and a
// formatted message.
func (s Status) WithCauseAndFormat(cause error, format string, args ...interface{}) *Error {
	e := s.new()
	e.Message = fmt.Sprintf(format, args...)
	e.setCause(convert(cause))
	return e
}

// Wrap wraps the given error with the status. Wrapping nil returns nil.
func (s Status) Wrap(err error) error {
	if err == nil {
		// The return type must be `error` - otherwise this return
		// statement can cause strange errors
		return nil
	}

	// If err is an Error and we're not going to add anything, return it
	if !trackLocation && !s.IsKnownError() {
		if _, ok := err.(*Error); ok {
			return err
		}
	}

	e := s.new()
	e.setCause(convert(err))
	return e
}

func (s Status) new() *Error {
	e := new(Error)
	e.Code = s
	e.recordCallSite(3)
	return e
}

func convert(err error) *Error {
	if err == nil {
		return nil
	}

	if x := (*Error)(nil); errors.As(err, &x) {
		return x
	}
	if x := Status(0); errors.As(err, &x) {
		return &Error{Code: x, Message: err.Error()}
	}

	e := &Error{Code: UnknownError, Message: err.Error()}
	if u, ok := err.(interface{ Unwrap() error }); ok {
		if err := u.Unwrap(); err != nil {
			e.setCause(convert(err))
		}
	}
	return e
}

func (e *Error) setCause(f *Error) {
	e.Cause = f
	if f == nil {
		return
	}

	if e.Code.IsKnownError() {
		return
	}

	if e.Message != "" {
		// Copy the code
		e.Code = f.Code
		return
	}

	// Inherit everything
	cs := e.CallStack
	*e = *f
	e.CallStack = append(cs, f.CallStack...)
}

func (e *Error) recordCallSite(depth int) {
	if !trackLocation {
		return
	}

	pc, file, line, ok := runtime.Caller(depth)
	if !ok {
		return
	}

	cs := &CallSite{File: file, Line: int64(line)}
	if fn := runtime.FuncForPC(pc); fn != nil {
		cs.FuncName = fn.Name()
	}
	e.CallStack = append(e.CallStack, cs)
}

// Error implements error.
func (e *Error) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the cause, if the error has one, or the status code.
func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Code
}

// Print returns the error message and call stack, for debugging.
func (e *Error) Print() string {
	s := e.Error()
	for _, cs := range e.CallStack {
		s += fmt.Sprintf("\n%s\n    %s:%d", cs.FuncName, cs.File, cs.Line)
	}
	if e.Cause != nil && e.Cause.Error() != e.Error() {
		s += "\ncaused by: " + e.Cause.Print()
	}
	return s
}

// Is returns true if the target is a Status or *Error with the same code.
func (e *Error) Is(target error) bool {
	switch f := target.(type) {
	case *Error:
		return e.Code == f.Code
	case Status:
		return e.Code == f
	}
	return false
}
