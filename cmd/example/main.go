package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	categoryattrs "github.com/goliatone/go-category-attributes"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dsn := flag.String("dsn", "file:category_attributes.db?_fk=1", "sqlite DSN")
	uploadsDir := flag.String("uploads", filepath.Join("public", "uploads", "categories"), "image upload directory")
	flag.Parse()

	if err := run(*addr, *dsn, *uploadsDir); err != nil {
		log.Fatalf("example: %v", err)
	}
}

func run(addr, dsn, uploadsDir string) error {
	ctx := context.Background()

	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := applyMigrations(ctx, db); err != nil {
		return err
	}

	cfg := categoryattrs.DefaultConfig()
	cfg.Uploads.Dir = uploadsDir
	cfg.Logging.Format = "console"

	module, err := categoryattrs.New(db, cfg)
	if err != nil {
		return fmt.Errorf("build module: %w", err)
	}

	mux := http.NewServeMux()
	if err := module.RegisterRoutes(mux); err != nil {
		return fmt.Errorf("register routes: %w", err)
	}
	// Serve uploaded images the way the host would.
	mux.Handle("GET "+cfg.Uploads.PublicPrefix+"/", http.StripPrefix(cfg.Uploads.PublicPrefix+"/", http.FileServer(http.Dir(uploadsDir))))

	if err := os.MkdirAll(uploadsDir, 0o775); err != nil {
		return fmt.Errorf("create uploads directory: %w", err)
	}

	log.Printf("category attribute endpoints listening on %s under %s", addr, cfg.HTTP.BasePath)
	return http.ListenAndServe(addr, mux)
}

func applyMigrations(ctx context.Context, db *bun.DB) error {
	const dir = "data/sql/migrations"
	entries, err := categoryattrs.GetMigrationsFS().ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	for _, entry := range entries {
		raw, err := categoryattrs.GetMigrationsFS().ReadFile(dir + "/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := db.ExecContext(ctx, string(raw)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		log.Printf("applied migration %s", entry.Name())
	}
	return nil
}
