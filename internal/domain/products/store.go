package products

import (
	"context"
	"fmt"

	"storefront/internal/backend"
	"storefront/internal/domain/categories"
	"storefront/internal/params"

	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

const (
	ImageBucket = "products"
	imageFolder = "products"
)

// Store is the data access abstraction for the products domain.
type Store interface {
	ListPage(ctx context.Context, page, pageSize int) (*Page, error)
	ListGroupedByCategory(ctx context.Context) ([]*CategoryGroup, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, in Input) (*Record, error)
	// Update replaces every field; partial updates are not supported.
	Update(ctx context.Context, id int64, in Input) (*Record, error)
	Remove(ctx context.Context, id int64) error
	UploadImage(ctx context.Context, file backend.File) (string, error)
}

type Repository struct {
	db         backend.DBTX
	categories categories.Store
	images     backend.Bucket
	logger     *zap.SugaredLogger
}

// NewRepository reads categories through cats for the grouped listing.
func NewRepository(c *backend.Client, cats categories.Store) Store {
	r := &Repository{db: c.DB, categories: cats, logger: c.Logger}
	if c.Storage != nil {
		r.images = c.Storage.From(ImageBucket)
	}
	return r
}

const selectProducts = `
	SELECT p.id, p.title, p.description, p.price, p.image_url, p.category_id, c.name`

const fromProducts = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, extra ...any) (*Product, error) {
	var (
		p                          Product
		description, image, catNam pgtype.Text
	)
	dest := append([]any{&p.ID, &p.Title, &description, &p.Price, &image, &p.CategoryID, &catNam}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.ImageURL = image.String
	if catNam.Valid {
		p.Category = &CategoryRef{Name: catNam.String}
	}
	return &p, nil
}

// ListPage returns the rows [(page-1)*pageSize, page*pageSize-1] ordered by
// title together with the exact total.
func (r *Repository) ListPage(ctx context.Context, page, pageSize int) (*Page, error) {
	p, err := params.New(page, pageSize)
	if err != nil {
		return nil, err
	}

	query := selectProducts + `, COUNT(*) OVER() AS total_count` + fromProducts + `
	ORDER BY p.title ASC, p.id ASC
	LIMIT $1 OFFSET $2`

	from, to := p.Window()
	rows, err := r.db.Query(ctx, query, to-from+1, from)
	if err != nil {
		r.logger.Errorw("list products failed", "page", page, "error", err)
		return nil, backend.Wrap("list products", err)
	}
	defer rows.Close()

	var total int
	list := []*Product{}
	for rows.Next() {
		prod, err := scanProduct(rows, &total)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, prod)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Wrap("list products", err)
	}

	// Paged past the end: no rows, but the total may still be > 0.
	if len(list) == 0 && p.Offset > 0 {
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
			return nil, backend.Wrap("count products", err)
		}
	}

	p.ComputeMeta(total)
	return &Page{Products: list, Pagination: p}, nil
}

// ListGroupedByCategory files every product under its category. Categories
// keep their fetch order and appear even when empty.
func (r *Repository) ListGroupedByCategory(ctx context.Context) ([]*CategoryGroup, error) {
	cats, err := r.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCategoriesUnavailable, err)
	}

	all, err := r.listAll(ctx)
	if err != nil {
		r.logger.Errorw("list products failed", "error", err)
		return nil, err
	}

	return groupByCategory(cats, all), nil
}

func groupByCategory(cats []*categories.Category, all []*Product) []*CategoryGroup {
	groups := make([]*CategoryGroup, 0, len(cats))
	index := make(map[int64]*CategoryGroup, len(cats))
	for _, c := range cats {
		g := &CategoryGroup{Category: *c, Products: []*Product{}}
		groups = append(groups, g)
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = g
		}
	}
	for _, p := range all {
		if g, ok := index[p.CategoryID]; ok {
			g.Products = append(g.Products, p)
		}
	}
	return groups
}

func (r *Repository) listAll(ctx context.Context) ([]*Product, error) {
	rows, err := r.db.Query(ctx, selectProducts+fromProducts+`
	ORDER BY p.title ASC, p.id ASC`)
	if err != nil {
		return nil, backend.Wrap("list products", err)
	}
	defer rows.Close()

	var list []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Wrap("list products", err)
	}
	return list, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, selectProducts+fromProducts+`
	WHERE p.id = $1`, id))
	if err != nil {
		r.logger.Errorw("get product failed", "id", id, "error", err)
		return nil, backend.Wrap("get product", err)
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, in Input) (*Record, error) {
	rec, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO products (title, description, price, image_url, category_id)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.Exec(ctx, query, rec.Title, rec.Description, rec.Price, rec.ImageURL, rec.CategoryID); err != nil {
		r.logger.Errorw("create product failed", "title", rec.Title, "error", err)
		return nil, writeError("create product", err)
	}
	return rec, nil
}

func (r *Repository) Update(ctx context.Context, id int64, in Input) (*Record, error) {
	rec, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE products
		SET title = $1, description = $2, price = $3, image_url = $4, category_id = $5
		WHERE id = $6`

	if _, err := r.db.Exec(ctx, query, rec.Title, rec.Description, rec.Price, rec.ImageURL, rec.CategoryID, id); err != nil {
		r.logger.Errorw("update product failed", "id", id, "error", err)
		return nil, writeError("update product", err)
	}
	rec.ID = &id
	return rec, nil
}

func (r *Repository) Remove(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		r.logger.Errorw("delete product failed", "id", id, "error", err)
		return backend.Wrap("delete product", err)
	}
	return nil
}

// writeError tags a foreign key failure on category_id with
// ErrUnknownCategory; the backend error stays in the chain.
func writeError(op string, err error) error {
	err = backend.Wrap(op, err)
	if backend.HasCode(err, backend.CodeForeignKeyViolation) {
		return fmt.Errorf("%w: %w", ErrUnknownCategory, err)
	}
	return err
}
