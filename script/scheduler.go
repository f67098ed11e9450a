package script

import (
	"context"
	log "log/slog"
	"time"

	"github.com/mauritsl/restapir"
	"github.com/mauritsl/restapir/authctx"
	"github.com/robfig/cron/v3"
)

// startupDelay is how long a script scheduler waits before its first
// RunOnStartup activation, giving the rest of the process (storage
// connections, other scripts' registrations) time to come up.
const startupDelay = 2 * time.Second

// Scheduler drives a Runtime's cron-based and startup activations. A
// Runtime already rejects concurrent Run calls via its own atomic.Bool, so
// the scheduler's only job is to fire at the right times and not pile up
// activations while one is still in flight.
type Scheduler struct {
	runtime *Runtime
	cron    *cron.Cron
}

// NewScheduler builds a Scheduler for runtime. Call Start to begin
// activation per the underlying Definition's Schedule/RunOnStartup.
func NewScheduler(runtime *Runtime) *Scheduler {
	return &Scheduler{
		runtime: runtime,
		cron:    cron.New(cron.WithSeconds()),
	}
}

// Start registers the cron schedule (if any) and fires the startup run (if
// configured) after startupDelay, then returns immediately; both run on
// background goroutines until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	name := s.runtime.def.Name

	if s.runtime.def.Schedule != "" {
		_, err := s.cron.AddFunc(s.runtime.def.Schedule, func() {
			s.fire(ctx, name)
		})
		if err != nil {
			return restapir.Newf(restapir.ParseError, "script: invalid schedule for %q: %v", name, err)
		}
		s.cron.Start()
	}

	if s.runtime.def.RunOnStartup {
		go func() {
			restapir.Sleep(ctx, startupDelay)
			if ctx.Err() != nil {
				return
			}
			s.fire(ctx, name)
		}()
	}

	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()

	return nil
}

// fire runs one activation, logging and swallowing a ConcurrentRun error as
// an expected skip rather than a failure.
func (s *Scheduler) fire(ctx context.Context, name string) {
	_, err := s.runtime.Run(ctx, authctx.Admin(), nil)
	if err == nil {
		return
	}
	if scriptErr, ok := err.(restapir.Error); ok && scriptErr.Code == restapir.ConcurrentRun {
		log.Debug("script: skipped scheduled run, already in progress", "script", name)
		return
	}
	log.Warn("script: scheduled run failed", "script", name, "error", err)
}
