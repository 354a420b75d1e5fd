package apperr

import (
	"fmt"
	"runtime"
	"strings"
)

const maxStackDepth = 32

// stack is a captured call stack, formatted lazily.
type stack []uintptr

func callers(skip int) stack {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+2, pcs)
	return stack(pcs[:n])
}

func (s stack) String() string {
	if len(s) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(s)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}
