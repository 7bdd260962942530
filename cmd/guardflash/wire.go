package main

import (
	"context"
	"errors"

	"github.com/buckleypaul/guardflash/internal/config"
	"github.com/buckleypaul/guardflash/internal/logger"
	"github.com/buckleypaul/guardflash/internal/notify"
	"github.com/buckleypaul/guardflash/internal/pages"
	"github.com/buckleypaul/guardflash/internal/programmer"
	"github.com/buckleypaul/guardflash/internal/serial"
	"github.com/buckleypaul/guardflash/internal/store"
	"github.com/buckleypaul/guardflash/internal/workflow"
)

// newRunFunc builds the production workflow. Runs rejected for missing
// settings never touch the hardware and are not recorded.
func newRunFunc(log *logger.Logger, hist *store.Store) pages.RunFunc {
	return func(ctx context.Context, cfg config.Config, n notify.Notifier, onLine func(string)) workflow.Verdict {
		prog := programmer.New(programmer.ExecRunner{}, log, n)
		reader := serial.NewLineReader(log)
		reader.OnLine = onLine
		wf := workflow.New(prog, serial.DefaultOpener, reader, n, log)

		v := wf.Run(ctx, cfg)

		if hist != nil && !errors.Is(v.Err, workflow.ErrMissingInput) {
			if _, err := hist.Add(context.WithoutCancel(ctx), recordFor(cfg, v)); err != nil {
				log.Warnw("record run", "err", err)
			}
		}
		return v
	}
}

func recordFor(cfg config.Config, v workflow.Verdict) store.Record {
	return store.Record{
		StartedAt:  v.StartedAt,
		Duration:   v.Duration,
		Port:       cfg.SerialPort,
		Firmware:   cfg.FirmwarePath,
		Outcome:    v.Outcome.String(),
		Version:    v.Version,
		RawVoltage: v.RawVoltage,
		Voltage:    v.Voltage,
		Message:    v.Message,
	}
}

// openHistory returns nil when history is disabled.
func openHistory(opts *rootOptions) (*store.Store, error) {
	if !opts.history {
		return nil, nil
	}
	return store.Open(opts.configDir)
}
