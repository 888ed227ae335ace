package backend

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DBTX is the subset of pgxpool.Pool used by the repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UploadOptions mirrors the knobs the storage backends accept on write.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	Upsert       bool
}

// Bucket is one named storage bucket.
type Bucket interface {
	Upload(ctx context.Context, path string, body io.Reader, opts UploadOptions) error
	Remove(ctx context.Context, paths ...string) error
	// PublicURL builds the public link for path without a network call.
	PublicURL(path string) string
}

// Storage hands out buckets by name.
type Storage interface {
	From(bucket string) Bucket
}

// User is the authenticated identity behind a request.
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Role     string         `json:"role"`
	Metadata map[string]any `json:"user_metadata"`
}

// FullName returns the display name kept in the identity metadata, if any.
func (u *User) FullName() string {
	if u == nil || u.Metadata == nil {
		return ""
	}
	name, _ := u.Metadata["full_name"].(string)
	return name
}

// Identity resolves and updates the current user.
type Identity interface {
	// CurrentUser returns ErrUnauthenticated when ctx carries no session.
	CurrentUser(ctx context.Context) (*User, error)
	UpdateMetadata(ctx context.Context, data map[string]any) error
}

// File is an uploaded file as handed over by the HTTP layer.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Client is the single handle to the external backend: tables, storage
// buckets and identity.
type Client struct {
	DB      DBTX
	Storage Storage
	Auth    Identity
	Logger  *zap.SugaredLogger
}

func NewClient(db DBTX, storage Storage, auth Identity, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{DB: db, Storage: storage, Auth: auth, Logger: logger}
}
