package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/StephenStolk/analyseX-sub001/adapters/db/postgres/migrations"
	"github.com/StephenStolk/analyseX-sub001/adapters/postgres"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [status]")
	}
	databaseURL := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, databaseURL, 2, 1)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	migrator := migrations.NewMigrator(db)

	if len(os.Args) > 2 && os.Args[2] == "status" {
		statuses, err := migrator.Status(ctx)
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			log.Printf("%-30s %s", s.Name, state)
		}
		return
	}

	applied, err := migrator.Up(ctx)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Applied %d migrations", len(applied))
	for _, name := range applied {
		log.Printf("  %s", name)
	}
}
