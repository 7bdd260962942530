// Package notify delivers operator-facing notices. The TUI, the headless
// CLI and tests each plug in their own Notifier.
package notify

import (
	"sync"

	"github.com/buckleypaul/guardflash/internal/logger"
)

// Kind classifies a notice.
type Kind int

const (
	KindError Kind = iota
	KindInfo
	KindSuccess
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindInfo:
		return "info"
	case KindSuccess:
		return "success"
	}
	return "unknown"
}

// Notice is a single operator-facing message.
type Notice struct {
	Kind  Kind
	Title string
	Body  string
}

// Notifier surfaces notices to the operator.
type Notifier interface {
	Error(title, body string)
	Info(title, body string)
	Success(title, body string)
}

// Func adapts a function to the Notifier interface.
type Func func(Notice)

func (f Func) Error(title, body string)   { f(Notice{Kind: KindError, Title: title, Body: body}) }
func (f Func) Info(title, body string)    { f(Notice{Kind: KindInfo, Title: title, Body: body}) }
func (f Func) Success(title, body string) { f(Notice{Kind: KindSuccess, Title: title, Body: body}) }

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) add(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *Recorder) Error(title, body string) {
	r.add(Notice{Kind: KindError, Title: title, Body: body})
}

func (r *Recorder) Info(title, body string) {
	r.add(Notice{Kind: KindInfo, Title: title, Body: body})
}

func (r *Recorder) Success(title, body string) {
	r.add(Notice{Kind: KindSuccess, Title: title, Body: body})
}

// Notices returns a copy of the recorded notices in arrival order.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Errors returns only the error notices.
func (r *Recorder) Errors() []Notice {
	var out []Notice
	for _, n := range r.Notices() {
		if n.Kind == KindError {
			out = append(out, n)
		}
	}
	return out
}

// Log writes notices through the diagnostic logger.
type Log struct {
	L *logger.Logger
}

func (n Log) Error(title, body string) { n.L.Errorw(body, "title", title) }
func (n Log) Info(title, body string)  { n.L.Infow(body, "title", title) }
func (n Log) Success(title, body string) {
	n.L.Infow(body, "title", title, "kind", KindSuccess.String())
}

// Multi fans a notice out to every notifier in order.
type Multi []Notifier

func (m Multi) Error(title, body string) {
	for _, n := range m {
		n.Error(title, body)
	}
}

func (m Multi) Info(title, body string) {
	for _, n := range m {
		n.Info(title, body)
	}
}

func (m Multi) Success(title, body string) {
	for _, n := range m {
		n.Success(title, body)
	}
}

// Nop discards every notice.
type Nop struct{}

func (Nop) Error(string, string)   {}
func (Nop) Info(string, string)    {}
func (Nop) Success(string, string) {}
