package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/backend"
)

var ErrEmptyName = errors.New("category name is required")

// Store is the data access abstraction for categories.
type Store interface {
	List(ctx context.Context) ([]*Category, error)
	Create(ctx context.Context, name string) (*Category, error)
	Rename(ctx context.Context, id int64, name string) (*Category, error)
	// Remove deletes the row only. Products still pointing at it are left to
	// the schema's foreign key, which rejects the delete.
	Remove(ctx context.Context, id int64) error
}

type Repository struct {
	db backend.DBTX
}

func NewRepository(c *backend.Client) Store {
	return &Repository{db: c.DB}
}

func (r *Repository) List(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY id ASC`)
	if err != nil {
		return nil, backend.Wrap("list categories", err)
	}
	defer rows.Close()

	list := []*Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Wrap("list categories", err)
	}
	return list, nil
}

func (r *Repository) Create(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	c := &Category{}
	err := r.db.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id, name`, name).
		Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, backend.Wrap("create category", err)
	}
	return c, nil
}

func (r *Repository) Rename(ctx context.Context, id int64, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	c := &Category{}
	err := r.db.QueryRow(ctx, `UPDATE categories SET name = $1 WHERE id = $2 RETURNING id, name`, name, id).
		Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, backend.Wrap("rename category", err)
	}
	return c, nil
}

func (r *Repository) Remove(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return backend.Wrap("delete category", err)
	}
	return nil
}
