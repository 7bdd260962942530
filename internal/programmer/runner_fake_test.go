package programmer

import "context"

type runCall struct {
	name string
	args []string
}

type fakeRunner struct {
	results  []Result
	runCalls []runCall
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) Result {
	copied := append([]string(nil), args...)
	f.runCalls = append(f.runCalls, runCall{name: name, args: copied})
	if len(f.results) == 0 {
		return Result{}
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res
}
