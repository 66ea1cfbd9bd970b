package guests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"resume-insights/internal/identity"
)

// PGStore is a Postgres-backed Store.
type PGStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed guest usage store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

const selectGuestColumns = `
SELECT id, ip_address, mac_address, user_agent, analysis_count, last_analysis_at, created_at, updated_at
FROM guest_usage`

func (s *PGStore) Consume(ctx context.Context, id identity.Identity, quota int, newID string, now time.Time) (rec Record, allowed bool, err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, false, fmt.Errorf("begin guest usage tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// Serialize every caller that shares either key, including callers with no row yet.
	for _, key := range lockKeys(id) {
		if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return Record{}, false, fmt.Errorf("lock guest usage: %w", err)
		}
	}

	query, args := lookupQuery(id)
	rec, err = scanRecord(tx.QueryRowContext(ctx, query+" FOR UPDATE", args...))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		rec = Record{
			ID:             newID,
			NetworkAddress: id.NetworkAddress,
			HardwareTag:    id.HardwareTag,
			UserAgent:      id.UserAgent,
			AnalysisCount:  1,
			LastAnalysisAt: now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if _, err = tx.ExecContext(ctx, `
INSERT INTO guest_usage (id, ip_address, mac_address, user_agent, analysis_count, last_analysis_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, 1, $5, $5, $5)`,
			rec.ID, rec.NetworkAddress, nullString(rec.HardwareTag), nullString(rec.UserAgent), now); err != nil {
			return Record{}, false, fmt.Errorf("insert guest usage: %w", err)
		}
	case err != nil:
		return Record{}, false, fmt.Errorf("lookup guest usage: %w", err)
	case rec.AnalysisCount >= quota:
		if err = tx.Commit(); err != nil {
			return Record{}, false, fmt.Errorf("commit guest usage: %w", err)
		}
		return rec, false, nil
	default:
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
UPDATE guest_usage
SET analysis_count = analysis_count + 1, last_analysis_at = $2, updated_at = $2
WHERE id = $1 AND analysis_count < $3`, rec.ID, now, quota)
		if err != nil {
			return Record{}, false, fmt.Errorf("increment guest usage: %w", err)
		}
		affected, raErr := res.RowsAffected()
		if raErr != nil {
			err = fmt.Errorf("increment guest usage: %w", raErr)
			return Record{}, false, err
		}
		if affected == 0 {
			if err = tx.Commit(); err != nil {
				return Record{}, false, fmt.Errorf("commit guest usage: %w", err)
			}
			return rec, false, nil
		}
		rec.AnalysisCount++
		rec.LastAnalysisAt = now
		rec.UpdatedAt = now
	}

	if err = tx.Commit(); err != nil {
		return Record{}, false, fmt.Errorf("commit guest usage: %w", err)
	}
	return rec, true, nil
}

func (s *PGStore) Lookup(ctx context.Context, id identity.Identity) (Record, bool, error) {
	query, args := lookupQuery(id)
	rec, err := scanRecord(s.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("lookup guest usage: %w", err)
	}
	return rec, true, nil
}

func (s *PGStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM guest_usage WHERE last_analysis_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep guest usage: %w", err)
	}
	return res.RowsAffected()
}

// lookupQuery matches on the hardware tag only when the caller sent one.
func lookupQuery(id identity.Identity) (string, []any) {
	if id.HardwareTag == "" {
		return selectGuestColumns + `
WHERE ip_address = $1
ORDER BY last_analysis_at DESC
LIMIT 1`, []any{id.NetworkAddress}
	}
	return selectGuestColumns + `
WHERE ip_address = $1 OR mac_address = $2
ORDER BY last_analysis_at DESC
LIMIT 1`, []any{id.NetworkAddress, id.HardwareTag}
}

func lockKeys(id identity.Identity) []string {
	keys := []string{"ip:" + id.NetworkAddress}
	if id.HardwareTag != "" {
		keys = append(keys, "mac:"+id.HardwareTag)
	}
	sort.Strings(keys)
	return keys
}

func scanRecord(row *sql.Row) (Record, error) {
	var (
		rec     Record
		mac, ua sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.NetworkAddress, &mac, &ua, &rec.AnalysisCount, &rec.LastAnalysisAt, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	rec.HardwareTag = mac.String
	rec.UserAgent = ua.String
	return rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
