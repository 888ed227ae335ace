package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/backend"
	"storefront/internal/domain/categories"
	"storefront/internal/domain/products"
	"storefront/internal/domain/profiles"
	"storefront/internal/domain/storage"
	"storefront/internal/identity"
	"storefront/internal/params"
	"storefront/internal/ratelimiter"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type fakeCategories struct {
	list      []*categories.Category
	err       error
	renamed   map[int64]string
	removeErr error
}

func (f *fakeCategories) List(ctx context.Context) ([]*categories.Category, error) {
	return f.list, f.err
}

func (f *fakeCategories) Create(ctx context.Context, name string) (*categories.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := &categories.Category{ID: int64(len(f.list) + 1), Name: name}
	f.list = append(f.list, c)
	return c, nil
}

func (f *fakeCategories) Rename(ctx context.Context, id int64, name string) (*categories.Category, error) {
	for _, c := range f.list {
		if c.ID == id {
			c.Name = name
			return c, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (f *fakeCategories) Remove(ctx context.Context, id int64) error {
	return f.removeErr
}

type fakeProducts struct {
	page     *products.Page
	groups   []*products.CategoryGroup
	product  *products.Product
	uploaded []backend.File
	err      error
}

func (f *fakeProducts) ListPage(ctx context.Context, page, pageSize int) (*products.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, err := params.New(page, pageSize)
	if err != nil {
		return nil, err
	}
	out := &products.Page{Products: f.page.Products, Pagination: p}
	out.ComputeMeta(len(f.page.Products))
	return out, nil
}

func (f *fakeProducts) ListGroupedByCategory(ctx context.Context) ([]*products.CategoryGroup, error) {
	return f.groups, f.err
}

func (f *fakeProducts) GetByID(ctx context.Context, id int64) (*products.Product, error) {
	if f.product == nil || f.product.ID != id {
		return nil, backend.ErrNotFound
	}
	return f.product, nil
}

func (f *fakeProducts) Create(ctx context.Context, in products.Input) (*products.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return in.Normalize()
}

func (f *fakeProducts) Update(ctx context.Context, id int64, in products.Input) (*products.Record, error) {
	rec, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	rec.ID = &id
	return rec, nil
}

func (f *fakeProducts) Remove(ctx context.Context, id int64) error { return f.err }

func (f *fakeProducts) UploadImage(ctx context.Context, file backend.File) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploaded = append(f.uploaded, file)
	return "http://cdn.local/products/" + file.Name, nil
}

type fakeProfiles struct {
	lookup *profiles.Lookup
	result *profiles.UpdateResult
	got    []profiles.UpdateInput
	err    error
}

func (f *fakeProfiles) Current(ctx context.Context) (*profiles.Lookup, error) {
	if _, ok := identity.SessionFrom(ctx); !ok {
		return nil, backend.ErrUnauthenticated
	}
	return f.lookup, f.err
}

func (f *fakeProfiles) Update(ctx context.Context, in profiles.UpdateInput) (*profiles.UpdateResult, error) {
	f.got = append(f.got, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeProfiles) AvatarURL(path string) string { return path }

type testApp struct {
	app        *application
	categories *fakeCategories
	products   *fakeProducts
	profiles   *fakeProfiles
	handler    http.Handler
}

func newTestApplication(t *testing.T) *testApp {
	t.Helper()

	cats := &fakeCategories{}
	prods := &fakeProducts{page: &products.Page{}}
	profs := &fakeProfiles{}

	app := &application{
		config: config{
			addr: ":8080",
			env:  "test",
			auth: authConfig{basic: basicConfig{user: "ops", pass: "secret"}},
			rateLimiter: ratelimiter.Config{
				RequestsPerTimeFrame: 100,
				TimeFrame:            time.Minute,
			},
		},
		logger:        zap.NewNop().Sugar(),
		authenticator: auth.NewJWTAuthenticator(testSecret, "storefront", "storefront"),
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(100, time.Minute),
		store: &storage.Container{
			Categories: cats,
			Products:   prods,
			Profiles:   profs,
		},
	}

	return &testApp{app: app, categories: cats, products: prods, profiles: profs, handler: app.mount()}
}

func (ta *testApp) token(t *testing.T, role string) string {
	t.Helper()
	tok, err := ta.app.authenticator.GenerateToken("6f2d7c1e-4a8b-4f0e-9c3d-2b1a0e9f8d7c", role)
	require.NoError(t, err)
	return tok
}

func (ta *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(t *testing.T, method, target string, body any, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, file *formFile, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile(file.field, file.name)
		require.NoError(t, err)
		_, err = fw.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
