//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/buckleypaul/guardflash/internal/config"
	"github.com/buckleypaul/guardflash/internal/logger"
	"github.com/buckleypaul/guardflash/internal/notify"
	"github.com/buckleypaul/guardflash/internal/programmer"
	"github.com/buckleypaul/guardflash/internal/serial"
	"github.com/buckleypaul/guardflash/internal/workflow"
)

// benchConfig returns the bench setup from the environment, or skips the
// test if any part of it is missing.
func benchConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Config{
		ToolPath:     os.Getenv("GUARDFLASH_TOOL"),
		FirmwarePath: os.Getenv("GUARDFLASH_FIRMWARE"),
		SerialPort:   os.Getenv("GUARDFLASH_PORT"),
	}
	if cfg.ToolPath == "" || cfg.FirmwarePath == "" || cfg.SerialPort == "" {
		t.Skip("GUARDFLASH_TOOL, GUARDFLASH_FIRMWARE and GUARDFLASH_PORT must be set; skipping bench tests")
	}
	return cfg
}

// TestIntegrationProgramAndDisconnect flashes the attached board with the
// real vendor tool and releases the link.
func TestIntegrationProgramAndDisconnect(t *testing.T) {
	cfg := benchConfig(t)

	rec := &notify.Recorder{}
	p := programmer.New(programmer.ExecRunner{}, logger.Stderr(logger.DebugLevel), rec)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := p.ProgramErr(ctx, cfg.ToolPath, cfg.FirmwarePath); err != nil {
		t.Fatalf("programming failed: %v (notices: %+v)", err, rec.Notices())
	}
	p.Disconnect(ctx, cfg.ToolPath)
	if errs := rec.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected error notices: %+v", errs)
	}
}

// TestIntegrationFullRun runs the whole workflow against the bench and
// expects a verdict (pass or fail), not an aborted run.
func TestIntegrationFullRun(t *testing.T) {
	cfg := benchConfig(t)
	log := logger.Stderr(logger.DebugLevel)
	rec := &notify.Recorder{}

	wf := workflow.New(
		programmer.New(programmer.ExecRunner{}, log, rec),
		serial.DefaultOpener,
		serial.NewLineReader(log),
		rec,
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	v := wf.Run(ctx, cfg)
	t.Logf("verdict: %s %q (version=%q raw=%d voltage=%.3f) in %s",
		v.Outcome, v.Message, v.Version, v.RawVoltage, v.Voltage, v.Duration)

	if v.Outcome == workflow.OutcomeError {
		t.Fatalf("run aborted: %v (notices: %+v)", v.Err, rec.Notices())
	}
}
