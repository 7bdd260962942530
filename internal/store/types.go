package store

import "time"

// Record captures the result of one flash-and-verify run.
type Record struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	Port       string
	Firmware   string
	Outcome    string
	Version    string
	RawVoltage int
	Voltage    float64
	Message    string
}
