package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-insights/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// NewPGRepo constructs a PGRepo.
func NewPGRepo(conn *sql.DB) *PGRepo {
	return &PGRepo{DB: conn}
}

const entryColumns = `id, user_id, resume_text, education_score, leadership_score, overall_score,
       experience_level, years_of_experience, missing_skills, suggestions, full_analysis, created_at`

// Create inserts an entry. A duplicate id returns ErrConflict.
func (r *PGRepo) Create(ctx context.Context, e Entry) error {
	const query = `
INSERT INTO analysis_history (
	id, user_id, resume_text, education_score, leadership_score, overall_score,
	experience_level, years_of_experience, missing_skills, suggestions, full_analysis, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	missing, err := json.Marshal(e.MissingSkills)
	if err != nil {
		return err
	}
	suggestions, err := json.Marshal(e.Suggestions)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.ResumeText,
		e.EducationScore,
		e.LeadershipScore,
		e.OverallScore,
		e.ExperienceLevel,
		e.YearsOfExperience,
		string(missing),
		string(suggestions),
		string(e.FullAnalysis),
		e.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// List returns a page of entries newest first and the user's total count.
func (r *PGRepo) List(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM analysis_history WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}
	query := `
SELECT ` + entryColumns + `
FROM analysis_history
WHERE user_id = $1
ORDER BY created_at DESC, id
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list history: %w", err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Get returns one of the user's entries.
func (r *PGRepo) Get(ctx context.Context, id, userID string) (Entry, error) {
	query := `
SELECT ` + entryColumns + `
FROM analysis_history
WHERE id = $1 AND user_id = $2`
	e, err := scanEntry(r.DB.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get history entry: %w", err)
	}
	return e, nil
}

// Timeline returns every entry of the user oldest first, without resume text.
func (r *PGRepo) Timeline(ctx context.Context, userID string) ([]Entry, error) {
	const query = `
SELECT id, user_id, '' AS resume_text, education_score, leadership_score, overall_score,
       experience_level, years_of_experience, missing_skills, suggestions, full_analysis, created_at
FROM analysis_history
WHERE user_id = $1
ORDER BY created_at ASC, id`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("history timeline: %w", err)
	}
	return scanEntries(rows)
}

// Delete removes one of the user's entries and reports whether it existed.
func (r *PGRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM analysis_history WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete history entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAll removes every entry of the user.
func (r *PGRepo) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM analysis_history WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete history: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e           Entry
		missing     []byte
		suggestions []byte
		full        []byte
	)
	if err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.ResumeText,
		&e.EducationScore,
		&e.LeadershipScore,
		&e.OverallScore,
		&e.ExperienceLevel,
		&e.YearsOfExperience,
		&missing,
		&suggestions,
		&full,
		&e.CreatedAt,
	); err != nil {
		return Entry{}, err
	}
	e.MissingSkills = decodeStrings(missing)
	e.Suggestions = decodeStrings(suggestions)
	if len(full) > 0 {
		e.FullAnalysis = json.RawMessage(append([]byte(nil), full...))
	} else {
		e.FullAnalysis = json.RawMessage("{}")
	}
	return e, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	out := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeStrings(raw []byte) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
