// Package bootlog extracts the firmware version and battery reading from
// the device's post-flash boot log.
package bootlog

import (
	"fmt"
	"strconv"
	"strings"
)

// Markers searched for in each boot log line.
const (
	VersionMarker = "EFloodGuardLP"
	BatteryMarker = "Battery Voltage"
)

// Result is what Parse found in a boot log.
type Result struct {
	Version    string
	RawVoltage int
}

// FieldError reports a marker line whose value could not be extracted.
type FieldError struct {
	Field string
	Line  string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s in %q: %v", e.Field, e.Line, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

var (
	errNoParen = fmt.Errorf("no '(' after marker")
	errNoColon = fmt.Errorf("no ':' separator")
)

// Parse scans lines once. For each marker the last matching line wins;
// lines matching neither marker are ignored. A marker line whose value is
// malformed stops the scan with a *FieldError.
func Parse(lines []string) (Result, error) {
	var res Result
	for _, line := range lines {
		if strings.Contains(line, VersionMarker) {
			v, err := parseVersion(line)
			if err != nil {
				return Result{}, &FieldError{Field: "version", Line: line, Err: err}
			}
			res.Version = v
		}
		if strings.Contains(line, BatteryMarker) {
			raw, err := parseRaw(line)
			if err != nil {
				return Result{}, &FieldError{Field: "battery voltage", Line: line, Err: err}
			}
			res.RawVoltage = raw
		}
	}
	return res, nil
}

// parseVersion returns the text between the first '(' and the ')' that
// follows it. A missing ')' takes the rest of the line.
func parseVersion(line string) (string, error) {
	_, rest, ok := strings.Cut(line, "(")
	if !ok {
		return "", errNoParen
	}
	v, _, _ := strings.Cut(rest, ")")
	return v, nil
}

// parseRaw reads the integer between the first and second ':'.
func parseRaw(line string) (int, error) {
	parts := strings.Split(line, ":")
	if len(parts) < 2 {
		return 0, errNoColon
	}
	return strconv.Atoi(strings.TrimSpace(parts[1]))
}
