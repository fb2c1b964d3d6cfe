package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/jobs"
)

// appEnv bundles the shared runtime pieces the commands need.
type appEnv struct {
	pool  *pgxpool.Pool
	store jobs.Store
}

func initEnv(ctx context.Context) (*appEnv, error) {
	if cfg.Database.URL == "" {
		return nil, eris.New("database url not configured, set GEOVAR_DATABASE_URL or database.url in config.yaml")
	}

	pool, err := db.Connect(ctx, cfg.Database.URL, &cfg.Database.Pool)
	if err != nil {
		return nil, err
	}

	var store jobs.Store
	switch cfg.Queue.Driver {
	case "postgres":
		store = jobs.NewPostgres(pool, nil)
	case "sqlite":
		store, err = jobs.NewSQLite(cfg.Queue.SQLitePath)
		if err != nil {
			pool.Close()
			return nil, err
		}
	default:
		pool.Close()
		return nil, eris.Errorf("unknown queue driver %q, valid drivers are: postgres, sqlite", cfg.Queue.Driver)
	}

	return &appEnv{pool: pool, store: store}, nil
}

func (e *appEnv) Close() {
	e.store.Close() //nolint:errcheck
	e.pool.Close()
}
