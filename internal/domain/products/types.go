package products

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"storefront/internal/domain/categories"
	"storefront/internal/params"
)

var (
	ErrInvalidPrice      = errors.New("price must be a positive number")
	ErrInvalidCategoryID = errors.New("category_id must be a positive integer")
	// ErrUnknownCategory is returned by Create and Update when category_id
	// names no category.
	ErrUnknownCategory = errors.New("category does not exist")
	// ErrCategoriesUnavailable is returned by ListGroupedByCategory when the
	// category list itself cannot be read.
	ErrCategoriesUnavailable = errors.New("could not fetch categories")
)

// CategoryRef is the joined category name, shaped like the backend's
// embedded relation.
type CategoryRef struct {
	Name string `json:"name"`
}

type Product struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       float64      `json:"price"`
	ImageURL    string       `json:"image_url"`
	CategoryID  int64        `json:"category_id"`
	Category    *CategoryRef `json:"categories"`
}

// Input is a product as submitted by the admin form. Price and CategoryID
// accept JSON numbers or numeric strings.
type Input struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Price       json.Number `json:"price" validate:"required"`
	ImageURL    string      `json:"image_url" validate:"required"`
	CategoryID  json.Number `json:"category_id" validate:"required"`
}

// Record is the normalized input returned by Create and Update. It is built
// from the caller's fields, not read back from the backend.
type Record struct {
	ID          *int64  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	CategoryID  int64   `json:"category_id"`
}

// Normalize coerces price to a float and category_id to an integer.
func (in Input) Normalize() (*Record, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price.String()), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return nil, ErrInvalidPrice
	}

	categoryID, err := parseID(in.CategoryID.String())
	if err != nil {
		return nil, err
	}

	return &Record{
		Title:       in.Title,
		Description: in.Description,
		Price:       price,
		ImageURL:    in.ImageURL,
		CategoryID:  categoryID,
	}, nil
}

// parseID accepts "3" as well as "3.0"; fractional parts are truncated.
// Ids start at 1.
func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		if id < 1 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCategoryID, s)
		}
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	// 2^63 is the first float64 above math.MaxInt64.
	if err != nil || math.IsNaN(f) || f < 1 || f >= math.Exp2(63) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCategoryID, s)
	}
	return int64(f), nil
}

// Page is one window of the title-ordered product list.
type Page struct {
	Products []*Product `json:"products"`
	params.Pagination
}

// CategoryGroup is a category together with the products filed under it.
type CategoryGroup struct {
	categories.Category
	Products []*Product `json:"products"`
}
