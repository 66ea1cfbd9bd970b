package guests

import (
	"context"
	"time"

	"resume-insights/internal/shared/telemetry"
)

// Sweeper periodically removes guest records past the retention window.
type Sweeper struct {
	Ledger    *Ledger
	Interval  time.Duration
	Retention time.Duration
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
// A non-positive Interval disables the sweeper.
func (s *Sweeper) Run(ctx context.Context) {
	if s == nil || s.Ledger == nil || s.Interval <= 0 || s.Retention <= 0 {
		telemetry.Info("guests.sweeper_disabled", nil)
		return
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	n, err := s.Ledger.Sweep(ctx, s.Retention)
	if err != nil {
		if ctx.Err() == nil {
			telemetry.Error("guests.sweep_failed", map[string]any{"error": err})
		}
		return
	}
	telemetry.Info("guests.swept", map[string]any{
		"deleted":   n,
		"retention": s.Retention.String(),
	})
}
