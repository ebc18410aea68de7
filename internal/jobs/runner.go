// Package jobs runs the periodic maintenance of the visit schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const jobTimeout = 2 * time.Minute

// Maintainer is the part of the visit service the jobs drive.
type Maintainer interface {
	RebuildIndex(ctx context.Context) (int, error)
	ExpireContracts(ctx context.Context) (int64, error)
}

type Config struct {
	RebuildSpec string
	ExpirySpec  string
	Location    *time.Location
}

type Runner struct {
	cron   *cron.Cron
	target Maintainer
	log    zerolog.Logger
}

func NewRunner(target Maintainer, cfg Config, log zerolog.Logger) (*Runner, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	log = log.With().Str("component", "jobs").Logger()
	cronLog := cronLogger{log: log}

	r := &Runner{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		target: target,
		log:    log,
	}

	if _, err := r.cron.AddFunc(cfg.RebuildSpec, r.job("rebuild-index", r.rebuildIndex)); err != nil {
		return nil, fmt.Errorf("schedule index rebuild %q: %w", cfg.RebuildSpec, err)
	}
	if _, err := r.cron.AddFunc(cfg.ExpirySpec, r.job("expire-contracts", r.expireContracts)); err != nil {
		return nil, fmt.Errorf("schedule contract expiry %q: %w", cfg.ExpirySpec, err)
	}
	return r, nil
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop prevents new runs and waits for running ones until ctx is done.
func (r *Runner) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce expires contracts and then rebuilds the index, synchronously.
func (r *Runner) RunOnce(ctx context.Context) error {
	if err := r.expireContracts(ctx); err != nil {
		return err
	}
	return r.rebuildIndex(ctx)
}

func (r *Runner) job(name string, fn func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			r.log.Error().Err(err).Str("job", name).Msg("job failed")
			return
		}
		r.log.Debug().Str("job", name).Dur("duration", time.Since(start)).Msg("job finished")
	}
}

func (r *Runner) rebuildIndex(ctx context.Context) error {
	n, err := r.target.RebuildIndex(ctx)
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	r.log.Info().Int("visits", n).Msg("schedule index rebuilt")
	return nil
}

func (r *Runner) expireContracts(ctx context.Context) error {
	n, err := r.target.ExpireContracts(ctx)
	if err != nil {
		return fmt.Errorf("expire contracts: %w", err)
	}
	if n > 0 {
		r.log.Info().Int64("contracts", n).Msg("contracts expired")
	}
	return nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
