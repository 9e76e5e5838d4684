// Package clock paces the emulation loop in frames.
package clock

import (
	"context"
	"time"
)

// Clock decides when the next frame may start.
type Clock interface {
	// Wait blocks until the next frame is due. It returns ctx.Err() if the
	// context is done first.
	Wait(ctx context.Context) error

	// Stop releases the clock's resources.
	Stop()
}

// Limiter is a real-time Clock that releases one frame per frame period.
// Frames missed while the caller was busy are dropped, not queued.
type Limiter struct {
	ticker *time.Ticker
}

// NewLimiter creates a Limiter for the given configuration.
func NewLimiter(config *Config) *Limiter {
	return &Limiter{ticker: time.NewTicker(config.FrameDuration())}
}

// Wait implements Clock.
func (l *Limiter) Wait(ctx context.Context) error {
	select {
	case <-l.ticker.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop implements Clock.
func (l *Limiter) Stop() {
	l.ticker.Stop()
}

// Free is a Clock that never waits. It runs the emulation as fast as the
// host can go, which is what tests and headless runs want.
type Free struct{}

// Wait implements Clock.
func (Free) Wait(ctx context.Context) error {
	return ctx.Err()
}

// Stop implements Clock.
func (Free) Stop() {}
