package rescue

import (
	"fmt"

	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
)

// PanicError carries a value recovered from a panicking handler together with
// the stack at the point of recovery.
type PanicError struct {
	Value any
	stack []string
}

// NewPanicError wraps a recovered value. skip is the number of frames above
// the caller to omit from the stack.
func NewPanicError(v any, skip int) *PanicError {
	return &PanicError{Value: v, stack: domainerrors.CurrentStack(skip + 1)}
}

func (p *PanicError) Error() string {
	if err, ok := p.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(p.Value)
}

// Unwrap exposes a panicked error value.
func (p *PanicError) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}

// StackTrace implements errors.StackTracer.
func (p *PanicError) StackTrace() []string {
	return p.stack
}

// Class returns the Go type of the panic value.
func (p *PanicError) Class() string {
	return fmt.Sprintf("%T", p.Value)
}
