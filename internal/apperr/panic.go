package apperr

import (
	"fmt"
)

// PanicError is a recovered panic. If the panic value was an error it is
// exposed through Unwrap, so its own capabilities still apply.
type PanicError struct {
	Value any
	stack string
}

// Panic wraps a recovered value together with the stack captured at recovery.
func Panic(value any, stack []byte) *PanicError {
	return &PanicError{Value: value, stack: string(stack)}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func (e *PanicError) StackTrace() string { return e.stack }
