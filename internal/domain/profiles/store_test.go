package profiles

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"storefront/internal/backend"
	"storefront/internal/objstore"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uid = "6f2d7c1e-4a8b-4f0e-9c3d-2b1a0e9f8d7c"

var profileCols = []string{"id", "full_name", "phone", "avatar_url", "updated_at"}

type fakeIdentity struct {
	user        *backend.User
	metadataErr error
	metadata    []map[string]any
}

func (f *fakeIdentity) CurrentUser(ctx context.Context) (*backend.User, error) {
	if f.user == nil {
		return nil, backend.ErrUnauthenticated
	}
	return f.user, nil
}

func (f *fakeIdentity) UpdateMetadata(ctx context.Context, data map[string]any) error {
	if f.metadataErr != nil {
		return f.metadataErr
	}
	f.metadata = append(f.metadata, data)
	return nil
}

type fixture struct {
	repo  *Repository
	mock  pgxmock.PgxPoolIface
	mem   *objstore.Memory
	ident *fakeIdentity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mem := objstore.NewMemory("http://storage.local")
	ident := &fakeIdentity{user: &backend.User{ID: uid, Metadata: map[string]any{"full_name": "Ana Souza"}}}
	repo := NewRepository(backend.NewClient(mock, mem, ident, nil), "").(*Repository)
	repo.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return &fixture{repo: repo, mock: mock, mem: mem, ident: ident}
}

func avatarURL(path string) string {
	return "http://storage.local/storage/v1/object/public/avatars/" + path
}

func TestCurrentUnauthenticated(t *testing.T) {
	f := newFixture(t)
	f.ident.user = nil

	_, err := f.repo.Current(context.Background())
	assert.ErrorIs(t, err, backend.ErrUnauthenticated)
}

func TestCurrentSynthesizesDefault(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(regexp.QuoteMeta(`FROM profiles WHERE id = $1`)).
		WithArgs(uid).
		WillReturnError(pgx.ErrNoRows)

	got, err := f.repo.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceSynthesized, got.Source)
	assert.Equal(t, uid, got.ID)
	assert.Equal(t, "Ana Souza", got.FullName)
	assert.Empty(t, got.Phone)
	assert.Equal(t, DefaultPlaceholderAvatar, got.AvatarURL)
}

func TestCurrentResolvesStoredAvatar(t *testing.T) {
	f := newFixture(t)
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.mock.ExpectQuery(`FROM profiles`).
		WithArgs(uid).
		WillReturnRows(pgxmock.NewRows(profileCols).
			AddRow(uid, "Ana", "(11) 91234-5678", "public/"+uid+"/a.png", updated))

	got, err := f.repo.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceStored, got.Source)
	assert.Equal(t, avatarURL("public/"+uid+"/a.png"), got.AvatarURL)
	assert.Equal(t, "(11) 91234-5678", got.Phone)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, updated.Equal(*got.UpdatedAt))
}

func TestCurrentWithoutAvatarUsesPlaceholder(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(`FROM profiles`).
		WithArgs(uid).
		WillReturnRows(pgxmock.NewRows(profileCols).AddRow(uid, "Ana", "", nil, nil))

	got, err := f.repo.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultPlaceholderAvatar, got.AvatarURL)
}

func TestCurrentBackendFailure(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(`FROM profiles`).WithArgs(uid).WillReturnError(errors.New("permission denied"))

	_, err := f.repo.Current(context.Background())
	var be *backend.Error
	assert.True(t, errors.As(err, &be))
}

func TestAvatarURL(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, DefaultPlaceholderAvatar, f.repo.AvatarURL(""))
	assert.Equal(t, avatarURL("public/x.png"), f.repo.AvatarURL("public/x.png"))

	custom := NewRepository(backend.NewClient(nil, nil, nil, nil), "https://cdn/avatar.png")
	assert.Equal(t, "https://cdn/avatar.png", custom.AvatarURL(""))
}

func TestUpdateWithoutFileOmitsAvatar(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(`INSERT INTO profiles \(id, full_name, phone, updated_at\)\s+VALUES \(\$1, \$2, \$3, \$4\)\s+ON CONFLICT \(id\) DO UPDATE SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone, updated_at = EXCLUDED.updated_at\s+RETURNING`).
		WithArgs(uid, "Ana Lima", "(21) 99876-5432", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(profileCols).
			AddRow(uid, "Ana Lima", "(21) 99876-5432", "public/"+uid+"/old.png", time.Now()))

	res, err := f.repo.Update(context.Background(), UpdateInput{FullName: "Ana Lima", Phone: "(21) 99876-5432"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", res.FullName)
	assert.Equal(t, avatarURL("public/"+uid+"/old.png"), res.AvatarURL)
	assert.NoError(t, res.CleanupWarning)
	assert.Equal(t, []map[string]any{{"full_name": "Ana Lima"}}, f.ident.metadata)
	assert.Empty(t, f.mem.Paths(AvatarBucket))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateWithFileReplacesOldAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := "public/" + uid + "/old.png"
	require.NoError(t, f.mem.From(AvatarBucket).Upload(ctx, old, strings.NewReader("old"), backend.UploadOptions{}))

	f.mock.ExpectQuery(regexp.QuoteMeta(`SELECT avatar_url FROM profiles WHERE id = $1`)).
		WithArgs(uid).
		WillReturnRows(pgxmock.NewRows([]string{"avatar_url"}).AddRow(old))
	f.mock.ExpectQuery(`INSERT INTO profiles \(id, full_name, phone, updated_at, avatar_url\)`).
		WithArgs(uid, "Ana", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(profileCols).
			AddRow(uid, "Ana", "", "public/"+uid+"/new.png", time.Now()))

	res, err := f.repo.Update(ctx, UpdateInput{
		FullName: "Ana",
		File:     &backend.File{Name: "me.PNG", ContentType: "image/png", Body: strings.NewReader("new")},
	})
	require.NoError(t, err)
	assert.NoError(t, res.CleanupWarning)
	assert.Equal(t, avatarURL("public/"+uid+"/new.png"), res.AvatarURL)

	paths := f.mem.Paths(AvatarBucket)
	require.Len(t, paths, 1)
	assert.Regexp(t, `^public/`+uid+`/1700000000000_[a-z0-9]{10,}\.png$`, paths[0])

	obj, _ := f.mem.Get(AvatarBucket, paths[0])
	assert.Equal(t, backend.UploadOptions{ContentType: "image/png", CacheControl: "3600", Upsert: true}, obj.Opts)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateCleanupFailureIsAWarning(t *testing.T) {
	f := newFixture(t)
	f.mem.RemoveErr = errors.New("access denied")

	f.mock.ExpectQuery(`SELECT avatar_url FROM profiles`).
		WithArgs(uid).
		WillReturnRows(pgxmock.NewRows([]string{"avatar_url"}).AddRow("public/" + uid + "/old.png"))
	f.mock.ExpectQuery(`INSERT INTO profiles`).
		WithArgs(uid, "Ana", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(profileCols).AddRow(uid, "Ana", "", "public/"+uid+"/new.png", time.Now()))

	res, err := f.repo.Update(context.Background(), UpdateInput{
		FullName: "Ana",
		File:     &backend.File{Name: "a.png", Body: strings.NewReader("x")},
	})
	require.NoError(t, err)
	require.Error(t, res.CleanupWarning)
	assert.Contains(t, res.CleanupWarning.Error(), "access denied")
}

func TestUpdateFirstAvatarSkipsCleanup(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(`SELECT avatar_url FROM profiles`).WithArgs(uid).WillReturnError(pgx.ErrNoRows)
	f.mock.ExpectQuery(`INSERT INTO profiles`).
		WithArgs(uid, "Ana", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(profileCols).AddRow(uid, "Ana", "", "public/"+uid+"/new.png", time.Now()))

	res, err := f.repo.Update(context.Background(), UpdateInput{
		FullName: "Ana",
		File:     &backend.File{Name: "a.png", Body: strings.NewReader("x")},
	})
	require.NoError(t, err)
	assert.NoError(t, res.CleanupWarning)
	assert.Len(t, f.mem.Paths(AvatarBucket), 1)
}

func TestUpdateUploadFailureLeavesRowUntouched(t *testing.T) {
	f := newFixture(t)
	f.mem.UploadErr = errors.New("payload too large")

	_, err := f.repo.Update(context.Background(), UpdateInput{
		FullName: "Ana",
		File:     &backend.File{Name: "a.png", Body: strings.NewReader("x")},
	})
	var upErr *backend.UploadError
	require.True(t, errors.As(err, &upErr))
	var updErr *backend.UpdateError
	assert.True(t, errors.As(err, &updErr))
	assert.Contains(t, err.Error(), "payload too large")

	assert.Empty(t, f.ident.metadata)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateUnauthenticated(t *testing.T) {
	f := newFixture(t)
	f.ident.user = nil

	_, err := f.repo.Update(context.Background(), UpdateInput{FullName: "Ana"})
	assert.ErrorIs(t, err, backend.ErrUnauthenticated)
	var updErr *backend.UpdateError
	assert.True(t, errors.As(err, &updErr))
}

func TestUpdateMetadataFailure(t *testing.T) {
	f := newFixture(t)
	cause := errors.New("identity service down")
	f.ident.metadataErr = cause

	_, err := f.repo.Update(context.Background(), UpdateInput{FullName: "Ana"})
	assert.ErrorIs(t, err, cause)
	var updErr *backend.UpdateError
	assert.True(t, errors.As(err, &updErr))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpsertQuery(t *testing.T) {
	q := upsertQuery([]string{"id", "full_name"})
	assert.Contains(t, q, "INSERT INTO profiles (id, full_name)")
	assert.Contains(t, q, "VALUES ($1, $2)")
	assert.Contains(t, q, "DO UPDATE SET full_name = EXCLUDED.full_name")
	assert.NotContains(t, q, "id = EXCLUDED.id")
}
