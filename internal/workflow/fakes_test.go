package workflow

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/buckleypaul/guardflash/internal/serial"
)

type fakeProgrammer struct {
	programErr      error
	programCalls    int
	disconnectCalls int
	events          *[]string
}

func (f *fakeProgrammer) ProgramErr(_ context.Context, toolPath, firmwarePath string) error {
	f.programCalls++
	f.record("program")
	return f.programErr
}

func (f *fakeProgrammer) Disconnect(_ context.Context, toolPath string) {
	f.disconnectCalls++
	f.record("disconnect")
}

func (f *fakeProgrammer) record(ev string) {
	if f.events != nil {
		*f.events = append(*f.events, ev)
	}
}

// fakePort serves a fixed boot log and then EOF.
type fakePort struct {
	r      io.Reader
	closed int
	events *[]string
}

func newFakePort(lines []string, events *[]string) *fakePort {
	return &fakePort{r: strings.NewReader(strings.Join(lines, "\r\n") + "\r\n"), events: events}
}

func (p *fakePort) Read(b []byte) (int, error) { return p.r.Read(b) }

func (p *fakePort) Close() error {
	p.closed++
	if p.events != nil {
		*p.events = append(*p.events, "close")
	}
	return nil
}

type fakeOpener struct {
	port  *fakePort
	err   error
	calls []string
}

func (o *fakeOpener) open(name string) (serial.Port, error) {
	o.calls = append(o.calls, name)
	if o.err != nil {
		return nil, o.err
	}
	return o.port, nil
}

type fakeReader struct {
	lines []string
	err   error
	calls int
}

func (r *fakeReader) ReadUntilSentinel(context.Context, io.Reader) ([]string, error) {
	r.calls++
	return r.lines, r.err
}

type sleepRecorder struct {
	waits []time.Duration
	err   error
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return s.err
}
