package history

import "context"

// Repo persists history entries. Every read and delete is scoped by user.
type Repo interface {
	Create(ctx context.Context, e Entry) error
	List(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error)
	Get(ctx context.Context, id, userID string) (Entry, error)
	// Timeline returns the user's entries oldest first, without resume text.
	Timeline(ctx context.Context, userID string) ([]Entry, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
	DeleteAll(ctx context.Context, userID string) (int64, error)
}
