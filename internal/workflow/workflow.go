// Package workflow sequences a single flash-and-verify run: open the serial
// link, program the device, release the debug link, collect the boot log
// and judge the battery reading.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/buckleypaul/guardflash/internal/bootlog"
	"github.com/buckleypaul/guardflash/internal/config"
	"github.com/buckleypaul/guardflash/internal/logger"
	"github.com/buckleypaul/guardflash/internal/notify"
	"github.com/buckleypaul/guardflash/internal/serial"
)

// PostProgramDelay lets the device reboot before the debug link is released.
const PostProgramDelay = 5 * time.Second

// ErrMissingInput is returned when a required setting is empty.
var ErrMissingInput = errors.New("tool path, firmware path and serial port are required")

// ErrNoData is returned when the boot log read finished with no lines.
var ErrNoData = errors.New("no data received from the serial port")

// Programmer flashes and releases the device.
type Programmer interface {
	ProgramErr(ctx context.Context, toolPath, firmwarePath string) error
	Disconnect(ctx context.Context, toolPath string)
}

// LogReader collects the boot log from an open port.
type LogReader interface {
	ReadUntilSentinel(ctx context.Context, src io.Reader) ([]string, error)
}

// Workflow runs the flash-and-verify sequence. All steps block.
type Workflow struct {
	programmer Programmer
	open       serial.Opener
	reader     LogReader
	notifier   notify.Notifier
	log        *logger.Logger

	// Sleep waits for d or until ctx is done. Replaced in tests.
	Sleep            func(ctx context.Context, d time.Duration) error
	SettleDelay      time.Duration
	PostProgramDelay time.Duration
	Now              func() time.Time
}

// New wires a Workflow. Nil notifier and logger are replaced with no-ops.
func New(p Programmer, open serial.Opener, r LogReader, n notify.Notifier, log *logger.Logger) *Workflow {
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Workflow{
		programmer:       p,
		open:             open,
		reader:           r,
		notifier:         n,
		log:              log,
		Sleep:            sleep,
		SettleDelay:      serial.SettleDelay,
		PostProgramDelay: PostProgramDelay,
		Now:              time.Now,
	}
}

// Run executes one run against cfg. Once the port is open it is closed
// before Run returns, whatever happened in between.
func (w *Workflow) Run(ctx context.Context, cfg config.Config) Verdict {
	start := w.Now()
	v := w.run(ctx, cfg)
	v.StartedAt = start
	v.Duration = w.Now().Sub(start)
	return v
}

func (w *Workflow) run(ctx context.Context, cfg config.Config) Verdict {
	w.log.Infow("running",
		"tool", cfg.ToolPath,
		"firmware", cfg.FirmwarePath,
		"port", cfg.SerialPort,
	)

	if cfg.ToolPath == "" || cfg.FirmwarePath == "" || cfg.SerialPort == "" {
		msg := "Please provide STM32_CLI Directory, ELF File, and Serial Port."
		w.notifier.Error(errorTitle, msg)
		return Verdict{Outcome: OutcomeError, Message: msg, Err: ErrMissingInput}
	}

	port, err := w.open(cfg.SerialPort)
	if err != nil {
		return w.fail(fmt.Sprintf("Failed to open serial port: %v", err), err)
	}
	defer w.closePort(port, cfg.SerialPort)

	if err := w.Sleep(ctx, w.SettleDelay); err != nil {
		return w.fail(fmt.Sprintf("Run cancelled: %v", err), err)
	}
	w.log.Infow("serial port opened", "port", cfg.SerialPort)

	if err := w.programmer.ProgramErr(ctx, cfg.ToolPath, cfg.FirmwarePath); err != nil {
		// The programmer has already told the operator why.
		return Verdict{Outcome: OutcomeError, Message: "Programming failed", Err: err}
	}

	if err := w.Sleep(ctx, w.PostProgramDelay); err != nil {
		return w.fail(fmt.Sprintf("Run cancelled: %v", err), err)
	}

	w.programmer.Disconnect(ctx, cfg.ToolPath)

	lines, err := w.reader.ReadUntilSentinel(ctx, port)
	if err != nil {
		return w.fail(fmt.Sprintf("An error occurred while reading the serial port: %v", err), err)
	}
	if len(lines) == 0 {
		return w.fail("Failed to read from the serial port.", ErrNoData)
	}

	parsed, err := bootlog.Parse(lines)
	if err != nil {
		return w.fail(fmt.Sprintf("Failed to parse serial log: %v", err), err)
	}
	voltage := bootlog.ToVoltage(parsed.RawVoltage)

	w.log.Infow("boot log parsed",
		"version", parsed.Version,
		"raw_voltage", parsed.RawVoltage,
		"battery_voltage", voltage,
	)

	v := Verdict{
		Version:    parsed.Version,
		RawVoltage: parsed.RawVoltage,
		Voltage:    voltage,
	}
	if !bootlog.BatteryPresent(voltage) {
		v.Outcome = OutcomeFail
		v.Message = noBatteryMessage
		w.notifier.Info(resultTitle, v.Message)
		return v
	}
	v.Outcome = OutcomePass
	v.Message = passMessage(parsed.Version, voltage)
	w.notifier.Success(resultTitle, v.Message)
	return v
}

func (w *Workflow) fail(msg string, err error) Verdict {
	w.notifier.Error(errorTitle, msg)
	return Verdict{Outcome: OutcomeError, Message: msg, Err: err}
}

func (w *Workflow) closePort(port serial.Port, name string) {
	if err := port.Close(); err != nil {
		w.log.Warnw("close serial port", "port", name, "err", err)
		return
	}
	w.log.Infow("serial port closed", "port", name)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
