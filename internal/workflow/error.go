package workflow

import (
	"fmt"
	"strings"
)

// CompensationError reports a failed step whose compensation failed too.
// It unwraps to the execution error.
type CompensationError struct {
	step             string
	executionErr     error
	compensationErrs []error
}

func (e *CompensationError) Step() string {
	return e.step
}

func (e *CompensationError) ExecutionError() error {
	return e.executionErr
}

func (e *CompensationError) CompensationErrors() []error {
	return e.compensationErrs
}

func (e *CompensationError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "step '%s' failed: %s; compensation failed:", e.step, e.executionErr)

	for idx, err := range e.compensationErrs {
		if idx > 0 {
			sb.WriteString(",")
		}

		fmt.Fprintf(&sb, " [%d] %s", idx, err)
	}

	return sb.String()
}

func (e *CompensationError) Unwrap() error {
	return e.executionErr
}

func NewCompensationError(step string, executionErr error, compensationErrs ...error) *CompensationError {
	return &CompensationError{
		step:             step,
		executionErr:     executionErr,
		compensationErrs: compensationErrs,
	}
}

var _ error = &CompensationError{}
