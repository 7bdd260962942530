// Package programmer drives the vendor command-line flashing tool over SWD.
package programmer

import (
	"context"
	"fmt"
	"strings"

	"github.com/buckleypaul/guardflash/internal/logger"
	"github.com/buckleypaul/guardflash/internal/notify"
)

// Fixed connection settings passed to the tool.
var connectArgs = []string{"-c", "port=SWD"}

var flashArgs = []string{"freq=8000", "mode=NORMAL", "speed=Reliable"}

// ProgramArgs returns the argument vector that downloads firmware to the device.
func ProgramArgs(firmwarePath string) []string {
	args := append([]string(nil), connectArgs...)
	args = append(args, flashArgs...)
	return append(args, "-d", firmwarePath)
}

// DisconnectArgs returns the argument vector that releases the debug link.
func DisconnectArgs() []string {
	return append(append([]string(nil), connectArgs...), "dis")
}

// ExitError reports a tool invocation that finished with a nonzero status.
type ExitError struct {
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d: %s", e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Programmer flashes and disconnects a device through an external tool.
type Programmer struct {
	runner   Runner
	log      *logger.Logger
	notifier notify.Notifier
}

// New creates a Programmer. A nil runner means ExecRunner.
func New(r Runner, log *logger.Logger, n notify.Notifier) *Programmer {
	if r == nil {
		r = ExecRunner{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if n == nil {
		n = notify.Nop{}
	}
	return &Programmer{runner: r, log: log, notifier: n}
}

// Program downloads firmwarePath with the tool at toolPath. It returns true
// only when the tool exits with status 0; every failure is surfaced to the
// operator before returning false.
func (p *Programmer) Program(ctx context.Context, toolPath, firmwarePath string) bool {
	return p.ProgramErr(ctx, toolPath, firmwarePath) == nil
}

// ProgramErr is Program with the failure returned for callers that need it.
func (p *Programmer) ProgramErr(ctx context.Context, toolPath, firmwarePath string) error {
	toolPath = ResolveTool(toolPath)
	args := ProgramArgs(firmwarePath)
	res := p.runner.Run(ctx, toolPath, args...)

	p.log.Infow("program device",
		"command", commandLine(toolPath, args),
		"stdout", res.Stdout,
		"exit_code", res.ExitCode,
		"duration", res.Duration,
	)

	if res.Err != nil {
		p.notifier.Error("Error", fmt.Sprintf("An error occurred: %v", res.Err))
		return fmt.Errorf("run %s: %w", toolPath, res.Err)
	}
	if res.ExitCode != 0 {
		p.notifier.Error("Error", "Programming failed: "+res.Stderr)
		return &ExitError{ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return nil
}

// Disconnect releases the SWD link. The outcome is reported to the operator
// only; nothing is returned to the caller.
func (p *Programmer) Disconnect(ctx context.Context, toolPath string) {
	toolPath = ResolveTool(toolPath)
	args := DisconnectArgs()
	res := p.runner.Run(ctx, toolPath, args...)

	p.log.Infow("disconnect device",
		"command", commandLine(toolPath, args),
		"stdout", res.Stdout,
		"exit_code", res.ExitCode,
	)

	switch {
	case res.Err != nil:
		p.notifier.Error("Error", fmt.Sprintf("An error occurred: %v", res.Err))
	case res.ExitCode != 0:
		p.notifier.Error("Error", "Disconnection failed: "+res.Stderr)
	default:
		p.notifier.Info("Success", "Disconnection successful.")
	}
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
