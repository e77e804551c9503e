package graph

import (
	"errors"
	"fmt"

	"github.com/afcarl/mcdp/internal/dp"
)

// WiringError reports a graph that is not completely and consistently
// wired. It unwraps to a *dp.StructureError with the same code.
type WiringError struct {
	// Code identifies the problem.
	Code dp.StructureErrorCode

	// Node and Port locate the problem. Node is Boundary for external
	// ports.
	Node, Port string

	// Message is a human-readable description.
	Message string
}

func (e *WiringError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("%s: %s (node %s)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s (port %s.%s)", e.Code, e.Message, e.Node, e.Port)
}

func (e *WiringError) Unwrap() error {
	return dp.NewStructureError(e.Code, e.Node+"."+e.Port, e.Message, nil)
}

// IsWiringError reports whether err is a WiringError.
// Uses errors.As to handle wrapped errors.
func IsWiringError(err error) bool {
	var we *WiringError
	return errors.As(err, &we)
}

// CutSearchError reports that the minimum-cut search explored its state
// budget without finding a cut.
type CutSearchError struct {
	// States is the number of states expanded.
	States int

	// Limit is the configured cap.
	Limit int

	// Cycles is the number of simple cycles to break.
	Cycles int
}

func (e *CutSearchError) Error() string {
	return fmt.Sprintf("cut search exceeded %d states (%d expanded, %d cycles)", e.Limit, e.States, e.Cycles)
}

// IsCutSearchError reports whether err is a CutSearchError.
func IsCutSearchError(err error) bool {
	var ce *CutSearchError
	return errors.As(err, &ce)
}

func wiring(code dp.StructureErrorCode, node, port, format string, args ...any) *WiringError {
	return &WiringError{Code: code, Node: node, Port: port, Message: fmt.Sprintf(format, args...)}
}
