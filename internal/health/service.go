package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Status is the health payload.
type Status struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Provider string `json:"provider"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB                 *sql.DB
	ProviderConfigured bool
}

// NewService constructs a new health service. db may be nil when running on
// in-memory stores.
func NewService(db *sql.DB, providerConfigured bool) *Service {
	return &Service{DB: db, ProviderConfigured: providerConfigured}
}

// Check reports "ok" unless the database is configured and unreachable.
func (s *Service) Check(ctx context.Context) Status {
	out := Status{Status: "ok", Storage: "memory", Provider: "unconfigured"}
	if s.ProviderConfigured {
		out.Provider = "configured"
	}
	if s.DB == nil {
		return out
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		out.Status = "degraded"
		out.Storage = "unreachable"
		return out
	}
	out.Storage = "postgres"
	return out
}
