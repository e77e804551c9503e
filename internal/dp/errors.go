package dp

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFeasible reports that no implementation satisfies a query.
	ErrNotFeasible = errors.New("not feasible")

	// ErrFeasible reports that an implementation was expected to be
	// infeasible but is not.
	ErrFeasible = errors.New("unexpectedly feasible")

	// ErrNeedsApproximation reports a query that cannot be answered exactly
	// by the DP that received it. It is propagated unchanged.
	ErrNeedsApproximation = errors.New("needs approximation")
)

// StructureErrorCode categorizes construction-time errors.
type StructureErrorCode string

const (
	// ErrCodeSpaceMismatch indicates incompatible spaces at a composition.
	ErrCodeSpaceMismatch StructureErrorCode = "SPACE_MISMATCH"

	// ErrCodeMalformedLoop indicates a loop whose feedback spaces differ.
	ErrCodeMalformedLoop StructureErrorCode = "MALFORMED_LOOP"

	// ErrCodeDisconnected indicates a port with no connection.
	ErrCodeDisconnected StructureErrorCode = "DISCONNECTED"

	// ErrCodeDuplicateConnection indicates a port fed more than once.
	ErrCodeDuplicateConnection StructureErrorCode = "DUPLICATE_CONNECTION"

	// ErrCodeDuplicateName indicates a node or port name used twice.
	ErrCodeDuplicateName StructureErrorCode = "DUPLICATE_NAME"

	// ErrCodeUnknownNode indicates a reference to a missing node or port.
	ErrCodeUnknownNode StructureErrorCode = "UNKNOWN_NODE"

	// ErrCodeInvalidValue indicates a leaf built with a value outside its
	// space.
	ErrCodeInvalidValue StructureErrorCode = "INVALID_VALUE"
)

// StructureError reports a DP or network that cannot be built.
type StructureError struct {
	// Code identifies the error category.
	Code StructureErrorCode

	// Where names the DP, node or port involved.
	Where string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *StructureError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Where != "" {
		msg = fmt.Sprintf("%s (at %s)", msg, e.Where)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructureError) Unwrap() error { return e.Err }

// NewStructureError creates a StructureError.
func NewStructureError(code StructureErrorCode, where, message string, cause error) *StructureError {
	return &StructureError{Code: code, Where: where, Message: message, Err: cause}
}

// IsStructureError reports whether err is a StructureError with the code.
// An empty code matches any StructureError.
func IsStructureError(err error, code StructureErrorCode) bool {
	var se *StructureError
	if errors.As(err, &se) {
		return code == "" || se.Code == code
	}
	return false
}

// IterationLimitError reports a Kleene iteration that did not converge
// within the configured cap.
type IterationLimitError struct {
	// DP names the loop that was iterating.
	DP string

	// Iterations is the number of iterations performed.
	Iterations int

	// Limit is the configured cap.
	Limit int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("%s: iteration limit reached (%d >= %d)", e.DP, e.Iterations, e.Limit)
}

// IsIterationLimit reports whether err is an IterationLimitError.
// Uses errors.As to handle wrapped errors.
func IsIterationLimit(err error) bool {
	var ie *IterationLimitError
	return errors.As(err, &ie)
}

// IsNotFeasible reports whether err wraps ErrNotFeasible.
func IsNotFeasible(err error) bool {
	return errors.Is(err, ErrNotFeasible)
}

// notFeasible wraps ErrNotFeasible with the DP and query.
func notFeasible(d DP, f, r any) error {
	return fmt.Errorf("%s: %w for f=%s r=%s", d, ErrNotFeasible, d.FunSpace().Format(f), d.ResSpace().Format(r))
}

// wrap adds the implicated sub-DP to err, keeping the cause reachable.
func wrap(err error, op string, d DP) error {
	return fmt.Errorf("%s in %s: %w", op, d, err)
}
