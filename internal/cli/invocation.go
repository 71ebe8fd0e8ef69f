package cli

import (
	"errors"
	"fmt"
	"io"
)

var ErrUsage = errors.New("usage")

// UsageError reports a command line that names no input file.
// It satisfies errors.Is(err, ErrUsage).
type UsageError struct {
	Program string
}

func (e *UsageError) Error() string {
	if e == nil || e.Program == "" {
		return "usage: missing input path"
	}
	return e.Program + ": missing input path"
}

func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

// Invocation is the resolved input/output pair for one run. Output is
// always set once resolution succeeds.
type Invocation struct {
	Program string
	Input   string
	Output  string
}

// ResolveInvocation maps positional arguments to an Invocation. The second
// argument defaults to the first; anything after it is ignored.
func ResolveInvocation(program string, args []string) (Invocation, error) {
	if len(args) == 0 {
		return Invocation{}, &UsageError{Program: program}
	}
	inv := Invocation{Program: program, Input: args[0], Output: args[0]}
	if len(args) > 1 {
		inv.Output = args[1]
	}
	return inv, nil
}

func printUsage(w io.Writer, program string) {
	fmt.Fprintln(w, "Sort the dictionary")
	fmt.Fprintf(w, "Usage: %s [inputVal] ([outputVal])\n", program)
}
