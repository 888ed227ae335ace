package storage

import (
	"storefront/internal/backend"
	"storefront/internal/domain/categories"
	"storefront/internal/domain/products"
	"storefront/internal/domain/profiles"
)

// Container groups the repositories built on one backend client.
type Container struct {
	Categories categories.Store
	Products   products.Store
	Profiles   profiles.Store
}

func NewContainer(c *backend.Client, placeholderAvatar string) *Container {
	cats := categories.NewRepository(c)
	return &Container{
		Categories: cats,
		Products:   products.NewRepository(c, cats),
		Profiles:   profiles.NewRepository(c, placeholderAvatar),
	}
}
