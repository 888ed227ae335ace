package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/backend"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

const (
	AvatarBucket = "avatars"
	// max-age in seconds sent with avatar uploads
	avatarCacheControl = "3600"
)

type Store interface {
	// Current returns the caller's profile, or a synthesized default when
	// none has been saved. Only ErrUnauthenticated and backend failures are
	// errors.
	Current(ctx context.Context) (*Lookup, error)
	Update(ctx context.Context, in UpdateInput) (*UpdateResult, error)
	// AvatarURL maps a stored avatar path to its public URL, or to the
	// placeholder when path is empty.
	AvatarURL(path string) string
}

type Repository struct {
	db          backend.DBTX
	auth        backend.Identity
	avatars     backend.Bucket
	logger      *zap.SugaredLogger
	placeholder string
	names       *avatarNamer
	now         func() time.Time
}

func NewRepository(c *backend.Client, placeholder string) Store {
	if placeholder == "" {
		placeholder = DefaultPlaceholderAvatar
	}
	r := &Repository{
		db:          c.DB,
		auth:        c.Auth,
		logger:      c.Logger,
		placeholder: placeholder,
		names:       newAvatarNamer(),
		now:         time.Now,
	}
	if c.Storage != nil {
		r.avatars = c.Storage.From(AvatarBucket)
	}
	return r
}

func (r *Repository) AvatarURL(path string) string {
	if path == "" || r.avatars == nil {
		return r.placeholder
	}
	return r.avatars.PublicURL(path)
}

type profileRow struct {
	id        string
	fullName  pgtype.Text
	phone     pgtype.Text
	avatar    pgtype.Text
	updatedAt pgtype.Timestamptz
}

func (row *profileRow) dest() []any {
	return []any{&row.id, &row.fullName, &row.phone, &row.avatar, &row.updatedAt}
}

func (row *profileRow) profile() Profile {
	p := Profile{
		ID:        row.id,
		FullName:  row.fullName.String,
		Phone:     row.phone.String,
		AvatarURL: row.avatar.String,
	}
	if row.updatedAt.Valid {
		t := row.updatedAt.Time
		p.UpdatedAt = &t
	}
	return p
}

func (r *Repository) Current(ctx context.Context) (*Lookup, error) {
	user, err := r.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	var row profileRow
	err = r.db.QueryRow(ctx,
		`SELECT id, full_name, phone, avatar_url, updated_at FROM profiles WHERE id = $1`,
		user.ID,
	).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &Lookup{
				Profile: Profile{
					ID:        user.ID,
					FullName:  user.FullName(),
					AvatarURL: r.placeholder,
				},
				Source: SourceSynthesized,
			}, nil
		}
		return nil, backend.Wrap("get profile", err)
	}

	p := row.profile()
	p.AvatarURL = r.AvatarURL(p.AvatarURL)
	return &Lookup{Profile: p, Source: SourceStored}, nil
}

// Update saves the profile form. The steps run in order and are not rolled
// back: an avatar uploaded before a later failure stays in the bucket.
func (r *Repository) Update(ctx context.Context, in UpdateInput) (*UpdateResult, error) {
	user, err := r.auth.CurrentUser(ctx)
	if err != nil {
		return nil, &backend.UpdateError{Err: err}
	}

	var newAvatar string
	if in.File != nil {
		newAvatar, err = r.uploadAvatar(ctx, user.ID, in.File)
		if err != nil {
			return nil, &backend.UpdateError{Err: err}
		}
	}

	if err := r.auth.UpdateMetadata(ctx, map[string]any{"full_name": in.FullName}); err != nil {
		return nil, &backend.UpdateError{Err: err}
	}

	result := &UpdateResult{}

	if newAvatar != "" {
		if old := r.storedAvatar(ctx, user.ID); old != "" && old != newAvatar {
			if err := r.avatars.Remove(ctx, old); err != nil {
				r.logger.Warnw("delete old avatar failed", "user_id", user.ID, "path", old, "error", err)
				result.CleanupWarning = fmt.Errorf("delete old avatar %s: %w", old, err)
			}
		}
	}

	cols := []string{"id", "full_name", "phone", "updated_at"}
	vals := []any{user.ID, in.FullName, in.Phone, r.now().UTC()}
	if newAvatar != "" {
		cols = append(cols, "avatar_url")
		vals = append(vals, newAvatar)
	}

	var row profileRow
	if err := r.db.QueryRow(ctx, upsertQuery(cols), vals...).Scan(row.dest()...); err != nil {
		r.logger.Errorw("profile upsert failed", "user_id", user.ID, "error", err)
		return nil, backend.Wrap("upsert profile", err)
	}

	result.Profile = row.profile()
	result.AvatarURL = r.AvatarURL(result.AvatarURL)
	return result, nil
}

func (r *Repository) uploadAvatar(ctx context.Context, userID string, file *backend.File) (string, error) {
	if r.avatars == nil {
		return "", &backend.UploadError{Msg: "upload avatar image", Err: errors.New("no storage configured")}
	}

	path, err := r.names.path(userID, file.Name, r.now())
	if err != nil {
		return "", &backend.UploadError{Msg: "build avatar path", Err: err}
	}

	err = r.avatars.Upload(ctx, path, file.Body, backend.UploadOptions{
		ContentType:  file.ContentType,
		CacheControl: avatarCacheControl,
		Upsert:       true,
	})
	if err != nil {
		r.logger.Errorw("avatar upload failed", "user_id", userID, "path", path, "error", err)
		return "", &backend.UploadError{Msg: "upload avatar image", Err: err}
	}

	if r.avatars.PublicURL(path) == "" {
		return "", &backend.UploadError{Msg: "could not build public URL for avatar"}
	}
	return path, nil
}

// storedAvatar is best effort: a missing row or a failed read yields "".
func (r *Repository) storedAvatar(ctx context.Context, userID string) string {
	var avatar pgtype.Text
	err := r.db.QueryRow(ctx, `SELECT avatar_url FROM profiles WHERE id = $1`, userID).Scan(&avatar)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warnw("read stored avatar failed", "user_id", userID, "error", err)
		}
		return ""
	}
	return avatar.String
}

// upsertQuery writes only the given columns so an omitted avatar_url keeps
// its stored value.
func upsertQuery(cols []string) string {
	placeholders := make([]string, len(cols))
	var sets []string
	for i, c := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if c != "id" {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}
	return fmt.Sprintf(`
		INSERT INTO profiles (%s)
		VALUES (%s)
		ON CONFLICT (id) DO UPDATE SET %s
		RETURNING id, full_name, phone, avatar_url, updated_at`,
		strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(sets, ", "))
}
