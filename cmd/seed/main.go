package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"storefront/internal/auth"
	"storefront/internal/backend"
	"storefront/internal/db"
	"storefront/internal/domain/categories"
	"storefront/internal/domain/products"
	"storefront/internal/identity"
	"storefront/internal/seed"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	categoriesFlag = flag.Int("categories", 4, "Number of categories to create")
	productsFlag   = flag.Int("products", 6, "Products per category")
	seedFlag       = flag.Int64("seed", time.Now().UnixNano(), "Faker seed")
	adminFlag      = flag.String("admin", "admin@storefront.local", "Email of the admin account to create; empty skips it")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()

	pool, err := db.New(os.Getenv("DB_ADDR"), 4, "")
	if err != nil {
		logger.Fatalw("db connection failed", "error", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dir := identity.NewDirectory(pool)
	client := backend.NewClient(pool, nil, dir, logger)

	cats := categories.NewRepository(client)
	n, err := seed.Run(ctx,
		cats,
		products.NewRepository(client, cats),
		seed.Options{Categories: *categoriesFlag, ProductsPerCategory: *productsFlag, Seed: *seedFlag},
		logger,
	)
	if err != nil {
		logger.Fatalw("seed failed", "written", n, "error", err)
	}
	logger.Infow("seed complete", "products", n)

	if *adminFlag == "" {
		return
	}

	userID, err := dir.Register(ctx, *adminFlag, map[string]any{"full_name": "Storefront Admin"})
	if err != nil {
		logger.Fatalw("register admin failed", "error", err)
	}

	iss := os.Getenv("AUTH_TOKEN_ISS")
	if iss == "" {
		iss = "storefront"
	}
	token, err := auth.NewJWTAuthenticator(os.Getenv("AUTH_TOKEN_SECRET"), iss, iss).GenerateToken(userID, "admin")
	if err != nil {
		logger.Fatalw("token failed", "error", err)
	}
	fmt.Printf("admin %s (%s)\nbearer token: %s\n", *adminFlag, userID, token)
}
