package kubectl

import (
	"context"
	"strings"
	"sync"
)

// Call is one invocation recorded by FakeRunner.
type Call struct {
	Name string
	Args []string
}

// String joins the arguments the way a shell would show them.
func (c Call) String() string {
	return strings.Join(c.Args, " ")
}

// FakeRunner records invocations instead of running processes.
type FakeRunner struct {
	// Respond decides the outcome of each call. Nil means every call exits
	// 0 with empty output.
	Respond func(args []string) (Result, error)

	mu    sync.Mutex
	calls []Call
}

var _ Runner = (*FakeRunner)(nil)

// Run records the call and returns Respond's outcome.
func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})
	f.mu.Unlock()

	if f.Respond == nil {
		return Result{}, nil
	}
	return f.Respond(args)
}

// Calls returns the recorded invocations in order.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Commands returns each recorded invocation's arguments joined by spaces.
func (f *FakeRunner) Commands() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// FailWhen returns a Respond func that exits 1 with stderr for every call
// whose joined arguments contain substr, and succeeds with stdout otherwise.
func FailWhen(substr, stderr, stdout string) func([]string) (Result, error) {
	return func(args []string) (Result, error) {
		if strings.Contains(strings.Join(args, " "), substr) {
			return Result{Stderr: stderr, ExitCode: 1}, nil
		}
		return Result{Stdout: stdout}, nil
	}
}
