package poset

import (
	"errors"
	"fmt"
)

// NotBelongError reports a value that is not an element of a space.
type NotBelongError struct {
	Space  string
	Value  string
	Reason string
}

func (e *NotBelongError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s does not belong to %s: %s", e.Value, e.Space, e.Reason)
	}
	return fmt.Sprintf("%s does not belong to %s", e.Value, e.Space)
}

// NotLeqError reports that a ≤ b does not hold.
//
// The solver uses it both as control flow (feasibility checks) and, when
// extra checks are enabled, as an invariant violation.
type NotLeqError struct {
	Space string
	A, B  string
}

func (e *NotLeqError) Error() string {
	return fmt.Sprintf("%s: %s ≰ %s", e.Space, e.A, e.B)
}

// NotEqualError reports two points (or two spaces) that are not equal.
type NotEqualError struct {
	Space string
	A, B  string
}

func (e *NotEqualError) Error() string {
	return fmt.Sprintf("%s: %s ≠ %s", e.Space, e.A, e.B)
}

// UnboundedError reports a poset without the requested top or bottom.
type UnboundedError struct {
	Space string
	Which string // "top" or "bottom"
}

func (e *UnboundedError) Error() string {
	return fmt.Sprintf("%s has no %s element", e.Space, e.Which)
}

// UninhabitedError reports an empty space where an element was required.
type UninhabitedError struct {
	Space string
}

func (e *UninhabitedError) Error() string {
	return fmt.Sprintf("%s is empty", e.Space)
}

// NotJoinableError reports that a join does not exist.
type NotJoinableError struct {
	Space string
	A, B  string
}

func (e *NotJoinableError) Error() string {
	return fmt.Sprintf("%s: join of %s and %s is undefined", e.Space, e.A, e.B)
}

// NotMeetableError reports that a meet does not exist.
type NotMeetableError struct {
	Space string
	A, B  string
}

func (e *NotMeetableError) Error() string {
	return fmt.Sprintf("%s: meet of %s and %s is undefined", e.Space, e.A, e.B)
}

// IsNotBelong returns true if err wraps a *NotBelongError.
func IsNotBelong(err error) bool {
	var e *NotBelongError
	return errors.As(err, &e)
}

// IsNotLeq returns true if err wraps a *NotLeqError.
func IsNotLeq(err error) bool {
	var e *NotLeqError
	return errors.As(err, &e)
}

// IsNotEqual returns true if err wraps a *NotEqualError.
func IsNotEqual(err error) bool {
	var e *NotEqualError
	return errors.As(err, &e)
}

// IsUnbounded returns true if err wraps an *UnboundedError.
func IsUnbounded(err error) bool {
	var e *UnboundedError
	return errors.As(err, &e)
}

// IsNotJoinable returns true if err wraps a *NotJoinableError.
func IsNotJoinable(err error) bool {
	var e *NotJoinableError
	return errors.As(err, &e)
}

func notBelong(s Space, x Point, reason string) error {
	return &NotBelongError{Space: s.String(), Value: fmt.Sprintf("%v", x), Reason: reason}
}
