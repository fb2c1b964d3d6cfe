package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopyFrom bulk-inserts rows into a table using the PostgreSQL COPY
// protocol. Border shapefile loads run through here; COPY is the only
// sensible way to move a few hundred thousand geometries.
func CopyFrom(ctx context.Context, pool Pool, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	copySource := pgx.CopyFromRows(rows)
	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, copySource)
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}

	return n, nil
}

// Truncate empties a table before a full reload.
func Truncate(ctx context.Context, pool Pool, table string) error {
	if _, err := pool.Exec(ctx, "TRUNCATE TABLE "+pgx.Identifier{table}.Sanitize()); err != nil {
		return eris.Wrapf(err, "db: truncate %s", table)
	}
	return nil
}
