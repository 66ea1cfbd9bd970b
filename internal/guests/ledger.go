package guests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resume-insights/internal/identity"
	"resume-insights/internal/shared/metrics"
	"resume-insights/internal/shared/telemetry"
)

// Ledger enforces the guest quota on top of a Store.
type Ledger struct {
	store Store
	now   func() time.Time
	newID func() string
}

// NewLedger wires a ledger around store.
func NewLedger(store Store) *Ledger {
	return &Ledger{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return "guest_" + uuid.NewString() },
	}
}

// CheckAndConsume admits one analysis for id if its quota allows it. Any store
// failure denies the request.
func (l *Ledger) CheckAndConsume(ctx context.Context, id identity.Identity) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Error("guests.ledger_panic", map[string]any{
				"error":      fmt.Sprint(rec),
				"ip_address": id.NetworkAddress,
			})
			metrics.IncGuestLedgerError()
			metrics.IncGuestRejected()
			res = unavailable()
		}
	}()

	rec, allowed, err := l.store.Consume(ctx, id, Quota, l.newID(), l.now())
	if err != nil {
		telemetry.Error("guests.consume_failed", map[string]any{
			"error":        err,
			"ip_address":   id.NetworkAddress,
			"has_hardware": id.HardwareTag != "",
		})
		metrics.IncGuestLedgerError()
		metrics.IncGuestRejected()
		return unavailable()
	}
	if !allowed {
		metrics.IncGuestRejected()
		return Result{
			Allowed:         false,
			RecordID:        rec.ID,
			UsageCountAfter: rec.AnalysisCount,
			Message:         LimitMessage,
		}
	}

	metrics.IncGuestAdmitted()
	telemetry.Info("guests.admitted", map[string]any{
		"guest_id":       rec.ID,
		"analysis_count": rec.AnalysisCount,
	})
	return Result{
		Allowed:         true,
		RecordID:        rec.ID,
		UsageCountAfter: rec.AnalysisCount,
	}
}

// Status reports whether id could still run a free analysis. It never mutates the store.
func (l *Ledger) Status(ctx context.Context, id identity.Identity) (Status, error) {
	rec, ok, err := l.store.Lookup(ctx, id)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrStore, err)
	}
	used := 0
	if ok {
		used = rec.AnalysisCount
	}
	if used >= Quota {
		return Status{Allowed: false, Message: LimitMessage, RequiresLogin: true}, nil
	}
	return Status{Allowed: true, RemainingAnalyses: Quota - used}, nil
}

// Sweep deletes records whose last use is older than olderThan.
func (l *Ledger) Sweep(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := l.now().Add(-olderThan)
	n, err := l.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStore, err)
	}
	metrics.AddGuestSwept(n)
	return n, nil
}

func unavailable() Result {
	return Result{Allowed: false, Message: UnavailableMessage}
}
