package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fadedpez/placebo/internal/config"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/pkg/db/migrations"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	createCmd := flag.NewFlagSet("create", flag.ExitOnError)
	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)

	migrationsDir := createCmd.String("dir", "pkg/db/migrations/sql", "Directory to store migrations")

	defaultDB := ""
	if cfg, err := config.Load(); err == nil {
		defaultDB = cfg.SQLitePath
		logging.Init(logging.ParseLevel(cfg.LogLevel), true)
	}
	migrateDB := migrateCmd.String("db", defaultDB, "Path to SQLite database")
	statusDB := statusCmd.String("db", defaultDB, "Path to SQLite database")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "create":
		createCmd.Parse(os.Args[2:])
		if createCmd.NArg() < 1 {
			fmt.Println("Error: Missing migration description")
			createCmd.Usage()
			os.Exit(1)
		}
		createNewMigration(*migrationsDir, createCmd.Arg(0))

	case "migrate":
		migrateCmd.Parse(os.Args[2:])
		applyMigrations(ctx, *migrateDB)

	case "status":
		statusCmd.Parse(os.Args[2:])
		showStatus(ctx, *statusDB)

	case "help":
		printUsage()

	default:
		fmt.Printf("Error: Unknown command '%s'\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/migration create DESCRIPTION  - Create a new migration")
	fmt.Println("  go run ./cmd/migration migrate [-db PATH]  - Apply pending migrations")
	fmt.Println("  go run ./cmd/migration status [-db PATH]   - List pending migrations")
	fmt.Println("  go run ./cmd/migration help                - Show this help")
	fmt.Println("\nExamples:")
	fmt.Println("  go run ./cmd/migration create \"add reward redemptions\"")
	fmt.Println("  go run ./cmd/migration migrate -db data/placebo.db")
}

func createNewMigration(dir, description string) {
	filePath, err := migrations.CreateMigration(dir, description)
	if err != nil {
		log.Fatalf("Error creating migration: %v", err)
	}

	fmt.Printf("Created migration file: %s\n", filePath)
	fmt.Println("Edit this file to add your database schema changes, then rebuild so it is embedded.")
}

func open(dbPath string) *sql.DB {
	if dbPath == "" {
		log.Fatal("No database path. Pass -db or set SQLITE_PATH")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatalf("Error creating database directory: %v", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	return db
}

func applyMigrations(ctx context.Context, dbPath string) {
	db := open(dbPath)
	defer db.Close()

	applied, err := migrations.NewMigrator(db, migrations.Embedded()).MigrateUp(ctx)
	if err != nil {
		log.Fatalf("Error applying migrations: %v", err)
	}

	fmt.Printf("Applied %d migration(s) to %s\n", applied, dbPath)
}

func showStatus(ctx context.Context, dbPath string) {
	db := open(dbPath)
	defer db.Close()

	pending, err := migrations.NewMigrator(db, migrations.Embedded()).Pending(ctx)
	if err != nil {
		log.Fatalf("Error reading migrations: %v", err)
	}

	if len(pending) == 0 {
		fmt.Println("Database is up to date")
		return
	}
	fmt.Printf("%d pending migration(s):\n", len(pending))
	for _, m := range pending {
		fmt.Printf("  %s %s\n", m.Version, m.Description)
	}
}
