package loader

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeNoModels    = "E007" // Document declares no models

	ErrCodeInvalidSpace      = "E201" // Unparseable space
	ErrCodeInvalidPoint      = "E202" // Point not in its space
	ErrCodeUnknownDP         = "E203" // Unknown leaf type
	ErrCodeInvalidDP         = "E204" // Leaf rejected its parameters
	ErrCodeInvalidPort       = "E205" // Missing or malformed port
	ErrCodeInvalidConnection = "E206" // Malformed endpoint
	ErrCodeUnknownModel      = "E207" // Node references a missing model
	ErrCodeModelCycle        = "E208" // Models reference each other
	ErrCodeInvalidGraph      = "E209" // Graph validation failed
)

// LoadError reports a problem in a model document.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error     // underlying cause, if any
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is a *LoadError with the given code. An
// empty code matches any LoadError.
func IsLoadError(err error, code string) bool {
	var le *LoadError
	if !errors.As(err, &le) {
		return false
	}
	return code == "" || le.Code == code
}

func loadErr(code string, pos token.Pos, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// fromCUE converts a CUE evaluation error, keeping the position of the
// first error.
func fromCUE(code string, err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error(), Err: err}
	}
	first := errs[0]
	out := &LoadError{Code: code, Message: first.Error(), Err: err}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		out.Pos = positions[0]
	}
	return out
}
