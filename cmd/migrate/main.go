package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"salesdash/adapters/postgres"
	"salesdash/internal/migration"
)

type variantCount struct {
	Variant string `db:"variant"`
	Count   int    `db:"n"`
}

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if len(os.Args) > 1 {
		databaseURL = os.Args[1]
	}
	if databaseURL == "" {
		log.Fatal("Usage: migrate <database_url>  (or set DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	log.Printf("Running prediction log migrations v%s on %s", runner.Version(), db.DriverName())
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	var counts []variantCount
	if err := db.SelectContext(ctx, &counts,
		`SELECT variant, COUNT(*) AS n FROM predictions GROUP BY variant ORDER BY variant`); err != nil {
		log.Fatalf("Failed to read prediction log: %v", err)
	}
	for _, c := range counts {
		log.Printf("  %s: %d logged predictions", c.Variant, c.Count)
	}
	log.Printf("Migration complete")
}
