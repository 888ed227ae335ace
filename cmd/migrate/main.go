package main

import (
	"flag"
	"log"
	"os"

	"storefront/internal/db"

	"github.com/joho/godotenv"
)

var downFlag = flag.Bool("down", false, "Revert every migration instead of applying them")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	addr := os.Getenv("DB_ADDR")
	if addr == "" {
		log.Fatal("DB_ADDR is empty")
	}

	if err := db.Migrate(addr, *downFlag); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if *downFlag {
		log.Println("migrations reverted")
		return
	}
	log.Println("migrations applied")
}
