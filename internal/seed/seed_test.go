package seed

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/backend"
	"storefront/internal/domain/categories"
	"storefront/internal/domain/products"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memCategories struct {
	categories.Store
	created []*categories.Category
	err     error
}

func (m *memCategories) Create(ctx context.Context, name string) (*categories.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	c := &categories.Category{ID: int64(len(m.created) + 1), Name: name}
	m.created = append(m.created, c)
	return c, nil
}

type memProducts struct {
	products.Store
	records []*products.Record
}

func (m *memProducts) Create(ctx context.Context, in products.Input) (*products.Record, error) {
	rec, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	m.records = append(m.records, rec)
	return rec, nil
}

func TestFactoryProductIsValid(t *testing.T) {
	f := NewFactory(42)
	for i := 0; i < 20; i++ {
		in := f.Product(7)
		rec, err := in.Normalize()
		require.NoError(t, err)
		assert.NotEmpty(t, rec.Title)
		assert.NotEmpty(t, rec.Description)
		assert.Positive(t, rec.Price)
		assert.Equal(t, int64(7), rec.CategoryID)
	}
}

func TestFactoryIsDeterministic(t *testing.T) {
	a, b := NewFactory(3), NewFactory(3)
	assert.Equal(t, a.CategoryName(1), b.CategoryName(1))
	assert.Equal(t, a.Product(1), b.Product(1))
}

func TestRun(t *testing.T) {
	cats, prods := &memCategories{}, &memProducts{}

	n, err := Run(context.Background(), cats, prods, Options{Categories: 3, ProductsPerCategory: 4, Seed: 1}, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Len(t, cats.created, 3)

	perCategory := map[int64]int{}
	for _, r := range prods.records {
		perCategory[r.CategoryID]++
	}
	assert.Equal(t, map[int64]int{1: 4, 2: 4, 3: 4}, perCategory)
}

func TestRunStopsOnCategoryFailure(t *testing.T) {
	cats := &memCategories{err: &backend.Error{Op: "create category", Code: backend.CodeUniqueViolation}}

	_, err := Run(context.Background(), cats, &memProducts{}, Options{Categories: 1, ProductsPerCategory: 1}, zap.NewNop().Sugar())
	var bErr *backend.Error
	require.True(t, errors.As(err, &bErr))
	assert.Equal(t, backend.CodeUniqueViolation, bErr.Code)
}
