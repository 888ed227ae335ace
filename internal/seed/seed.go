// Package seed fills a development database with demo categories and
// products. It goes through the repositories so the stored rows look like
// ones the admin pages would create.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/domain/categories"
	"storefront/internal/domain/products"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
)

type Options struct {
	Categories          int
	ProductsPerCategory int
	Seed                int64
}

// Factory builds demo entities; the same Seed yields the same data.
type Factory struct {
	faker *gofakeit.Faker
}

func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// CategoryName returns a unique-looking category name; n disambiguates
// repeated faker output.
func (f *Factory) CategoryName(n int) string {
	name := strings.TrimSpace(f.faker.ProductCategory())
	if name == "" {
		name = "Category"
	}
	return fmt.Sprintf("%s %d", name, n)
}

func (f *Factory) Product(categoryID int64) products.Input {
	price := f.faker.Price(1, 500)
	return products.Input{
		Title:       f.faker.ProductName(),
		Description: f.faker.ProductDescription(),
		Price:       json.Number(strconv.FormatFloat(price, 'f', 2, 64)),
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/600/600", f.faker.UUID()),
		CategoryID:  json.Number(strconv.FormatInt(categoryID, 10)),
	}
}

// Run creates opts.Categories categories with opts.ProductsPerCategory
// products each and returns how many products were written.
func Run(ctx context.Context, cats categories.Store, prods products.Store, opts Options, logger *zap.SugaredLogger) (int, error) {
	f := NewFactory(opts.Seed)
	written := 0

	for i := 1; i <= opts.Categories; i++ {
		category, err := cats.Create(ctx, f.CategoryName(i))
		if err != nil {
			return written, fmt.Errorf("seed category %d: %w", i, err)
		}
		logger.Infow("seeded category", "id", category.ID, "name", category.Name)

		for j := 0; j < opts.ProductsPerCategory; j++ {
			if _, err := prods.Create(ctx, f.Product(category.ID)); err != nil {
				return written, fmt.Errorf("seed product in category %d: %w", category.ID, err)
			}
			written++
		}
	}
	return written, nil
}
