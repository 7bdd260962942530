package workflow

import (
	"fmt"
	"time"
)

// Outcome is the final state of a run.
type Outcome int

const (
	// OutcomeError means the run stopped before a verdict could be reached.
	OutcomeError Outcome = iota
	OutcomeFail
	OutcomePass
)

func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeFail:
		return "fail"
	default:
		return "error"
	}
}

// Verdict summarises one run.
type Verdict struct {
	Outcome    Outcome
	Message    string
	Version    string
	RawVoltage int
	Voltage    float64
	StartedAt  time.Time
	Duration   time.Duration
	Err        error
}

// Passed reports whether the device passed.
func (v Verdict) Passed() bool { return v.Outcome == OutcomePass }

const (
	noBatteryMessage = "Fail: No Battery Connected"
	resultTitle      = "Result"
	errorTitle       = "Error"
)

func passMessage(version string, voltage float64) string {
	return fmt.Sprintf("Pass: Firmware Version %s, Battery Voltage %.2fV", version, voltage)
}
