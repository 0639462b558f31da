package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"quotestudio/internal/infra"
	"quotestudio/internal/migrations"
)

func main() {
	var dryRun bool
	flag.BoolVar(&dryRun, "dry-run", false, "list embedded migrations without applying them")
	flag.Parse()

	_ = godotenv.Load()

	ms, err := migrations.Load()
	if err != nil {
		exitWithError(err)
	}
	if dryRun {
		for _, m := range ms {
			fmt.Println(m.Version)
		}
		return
	}

	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		exitWithError(fmt.Errorf("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		exitWithError(fmt.Errorf("open database: %w", err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		exitWithError(fmt.Errorf("ping database: %w", err))
	}

	logger := infra.CLILogger("migrate")
	applied, err := migrations.Apply(ctx, db, ms, logger)
	if err != nil {
		exitWithError(err)
	}
	if len(applied) == 0 {
		fmt.Println("schema up to date")
		return
	}
	fmt.Printf("applied %d migration(s): %s\n", len(applied), strings.Join(applied, ", "))
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
