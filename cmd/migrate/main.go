package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/pageza/pantry/backend/config"
	"github.com/pageza/pantry/backend/internal/database"
)

func main() {
	rollback := flag.Bool("rollback", false, "Roll back the last migration")
	status := flag.Bool("status", false, "Print migration status and exit")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal("failed to load config", zap.Error(err))
		}
		if cfg.DBDriver != "postgres" {
			log.Fatal("migrations only run against postgres; sqlite is auto-migrated on startup")
		}
		dsn = cfg.DSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.SetupGoose(); err != nil {
		log.Fatal("failed to set up goose", zap.Error(err))
	}

	ctx := context.Background()
	switch {
	case *status:
		err = goose.StatusContext(ctx, db, ".")
	case *rollback:
		err = goose.DownContext(ctx, db, ".")
	default:
		err = goose.UpContext(ctx, db, ".")
	}
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		log.Fatal("failed to read schema version", zap.Error(err))
	}
	log.Info("migrations complete", zap.Int64("version", version))
}
