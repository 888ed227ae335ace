// Package identity resolves the user behind a request from the session the
// auth middleware places on the context, and keeps user metadata in the
// backend's users table.
package identity

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/backend"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type sessionKey struct{}

// Session is what a validated access token proves about the caller.
type Session struct {
	UserID string
	Role   string
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok && s.UserID != ""
}

// Directory implements backend.Identity on top of the users table.
type Directory struct {
	db backend.DBTX
}

func NewDirectory(db backend.DBTX) *Directory {
	return &Directory{db: db}
}

func (d *Directory) CurrentUser(ctx context.Context) (*backend.User, error) {
	s, ok := SessionFrom(ctx)
	if !ok {
		return nil, backend.ErrUnauthenticated
	}

	query := `SELECT id, email, user_metadata FROM users WHERE id = $1`

	u := &backend.User{Role: s.Role}
	err := d.db.QueryRow(ctx, query, s.UserID).Scan(&u.ID, &u.Email, &u.Metadata)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, backend.ErrUnauthenticated
		}
		return nil, backend.Wrap("get user", err)
	}
	if u.Metadata == nil {
		u.Metadata = map[string]any{}
	}
	return u, nil
}

// UpdateMetadata merges data into the current user's metadata.
func (d *Directory) UpdateMetadata(ctx context.Context, data map[string]any) error {
	s, ok := SessionFrom(ctx)
	if !ok {
		return backend.ErrUnauthenticated
	}

	query := `
		UPDATE users
		SET user_metadata = COALESCE(user_metadata, '{}'::jsonb) || $2::jsonb,
		    updated_at = now()
		WHERE id = $1`

	tag, err := d.db.Exec(ctx, query, s.UserID, data)
	if err != nil {
		return backend.Wrap("update user metadata", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update user metadata: %w", backend.ErrNotFound)
	}
	return nil
}

// Register creates the account for email, or returns the existing one's id.
// Only development tooling calls it; production accounts come from the
// identity provider.
func (d *Directory) Register(ctx context.Context, email string, metadata map[string]any) (string, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}

	query := `
		INSERT INTO users (id, email, user_metadata)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING id`

	var id string
	if err := d.db.QueryRow(ctx, query, uuid.NewString(), email, metadata).Scan(&id); err != nil {
		return "", backend.Wrap("register user", err)
	}
	return id, nil
}
