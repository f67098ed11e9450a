package restapir

import (
	"context"
	"fmt"
	log "log/slog"
	"math/rand"
	"time"
)

// Now returns the current time. Exists so tests can reason about elapsed
// time consistently with TimedOut without reaching for time.Now directly
// everywhere.
func Now() time.Time {
	return time.Now()
}

// jitterRNG is the random source used for sleep jitter. It is seeded once at
// package init time.
var jitterRNG = rand.New(rand.NewSource(time.Now().UnixNano()))

// SetJitterRNG overrides the RNG used for sleep jitter. Useful for
// deterministic tests.
func SetJitterRNG(r *rand.Rand) {
	if r != nil {
		jitterRNG = r
	}
}

// TimedOut returns an error if the context is done or if the elapsed time
// since startTime exceeds maxTime.
func TimedOut(ctx context.Context, name string, startTime time.Time, maxTime time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if Now().Sub(startTime) > maxTime {
		return fmt.Errorf("%s timed out (maxTime=%v)", name, maxTime)
	}
	return nil
}

// RandomSleepWithUnit sleeps for a random multiple (1..4) of the provided
// unit duration. Nothing in this module calls it; the script DSL's `delay`
// substep and the startup delay sleep the exact configured duration via
// Sleep.
func RandomSleepWithUnit(ctx context.Context, unit time.Duration) {
	multiplier := time.Duration(jitterRNG.Intn(4) + 1)
	d := multiplier * unit
	log.Debug("sleep jitter", "multiplier", multiplier, "unit", unit, "duration", d)
	Sleep(ctx, d)
}

// Sleep blocks for the specified duration or until the context is done,
// whichever happens first.
func Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
