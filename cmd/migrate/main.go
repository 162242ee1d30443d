package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"gatefold.io/internal/migrate"
)

func main() {
	var (
		dsn = flag.String("dsn", os.Getenv("GATEFOLD_PG_DSN"), "postgres connection string")
		dir = flag.String("migrations", "ops/migrations/sql", "migrations directory")
	)
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}
	if *dsn == "" {
		log.Fatal("missing -dsn (or GATEFOLD_PG_DSN)")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping postgres: %v", err)
	}

	runner := migrate.NewRunner(db, *dir)
	switch cmd {
	case "up":
		err = runner.Apply(ctx)
	case "down":
		err = runner.Rollback(ctx)
	case "status":
		var applied []string
		applied, err = runner.History(ctx)
		for _, name := range applied {
			fmt.Println(name)
		}
	default:
		log.Fatalf("unknown command %q (want up, down or status)", cmd)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}
