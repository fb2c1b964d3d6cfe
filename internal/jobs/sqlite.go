package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite. Used for
// single-machine batch runs where standing up postgres just for the
// queue is not worth it; the calculators still need postgres.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "jobs: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqldb.Exec(pragma); err != nil {
			sqldb.Close()
			return nil, eris.Wrapf(err, "jobs: sqlite exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqldb}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS geovar_jobs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	variable   TEXT NOT NULL,
	params     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_geovar_jobs_status ON geovar_jobs(status);
CREATE INDEX IF NOT EXISTS idx_geovar_jobs_variable ON geovar_jobs(variable);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "jobs: sqlite migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Enqueue(ctx context.Context, kind Kind, variable string, params Params) (*Job, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, eris.Wrap(err, "jobs: marshal params")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO geovar_jobs (id, kind, variable, params, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, string(kind), variable, string(paramsJSON), string(StatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "jobs: sqlite insert job")
	}

	return &Job{
		ID:        id,
		Kind:      kind,
		Variable:  variable,
		Params:    params,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ClaimNext selects the oldest queued job and flips it to running.
// SQLite has no SKIP LOCKED; contention between in-process workers is
// resolved by the conditional UPDATE, looping until a claim sticks or
// the queue drains.
func (s *SQLiteStore) ClaimNext(ctx context.Context) (*Job, error) {
	for {
		row := s.db.QueryRowContext(ctx,
			`SELECT id, kind, variable, params, created_at FROM geovar_jobs
			 WHERE status = 'queued' ORDER BY created_at LIMIT 1`,
		)

		var j Job
		var paramsJSON string
		err := row.Scan(&j.ID, &j.Kind, &j.Variable, &paramsJSON, &j.CreatedAt)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "jobs: sqlite select queued")
		}
		if err := json.Unmarshal([]byte(paramsJSON), &j.Params); err != nil {
			return nil, eris.Wrap(err, "jobs: unmarshal params")
		}

		now := time.Now().UTC()
		res, err := s.db.ExecContext(ctx,
			`UPDATE geovar_jobs SET status = 'running', updated_at = ? WHERE id = ? AND status = 'queued'`,
			now, j.ID,
		)
		if err != nil {
			return nil, eris.Wrap(err, "jobs: sqlite claim")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, eris.Wrap(err, "jobs: rows affected")
		}
		if n == 0 {
			// lost the race, try the next queued job
			continue
		}
		j.Status = StatusRunning
		j.UpdatedAt = now
		return &j, nil
	}
}

func (s *SQLiteStore) Complete(ctx context.Context, jobID string, result json.RawMessage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE geovar_jobs SET result = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(result), string(StatusComplete), time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "jobs: sqlite complete job %s", jobID)
	}
	return checkRowsAffected(res, jobID)
}

func (s *SQLiteStore) Fail(ctx context.Context, jobID string, meta ErrorMeta) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return eris.Wrap(err, "jobs: marshal error meta")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE geovar_jobs SET error = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(metaJSON), string(StatusFailed), time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "jobs: sqlite fail job %s", jobID)
	}
	return checkRowsAffected(res, jobID)
}

func (s *SQLiteStore) Get(ctx context.Context, jobID string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, variable, params, status, result, error, created_at, updated_at
		 FROM geovar_jobs WHERE id = ?`,
		jobID,
	)

	var j Job
	var paramsJSON string
	var resultJSON, errorJSON sql.NullString
	err := row.Scan(&j.ID, &j.Kind, &j.Variable, &paramsJSON, &j.Status, &resultJSON, &errorJSON, &j.CreatedAt, &j.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "jobs: sqlite get job %s", jobID)
	}

	if err := json.Unmarshal([]byte(paramsJSON), &j.Params); err != nil {
		return nil, eris.Wrap(err, "jobs: unmarshal params")
	}
	if resultJSON.Valid {
		j.Result = json.RawMessage(resultJSON.String)
	}
	if errorJSON.Valid {
		j.Error = &ErrorMeta{}
		if err := json.Unmarshal([]byte(errorJSON.String), j.Error); err != nil {
			return nil, eris.Wrap(err, "jobs: unmarshal error meta")
		}
	}
	return &j, nil
}

func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Job, error) {
	query := `SELECT id, kind, variable, params, status, result, error, created_at, updated_at
	          FROM geovar_jobs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Variable != "" {
		query += ` AND variable = ?`
		args = append(args, filter.Variable)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "jobs: sqlite list jobs")
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var j Job
		var paramsJSON string
		var resultJSON, errorJSON sql.NullString

		if err := rows.Scan(&j.ID, &j.Kind, &j.Variable, &paramsJSON, &j.Status, &resultJSON, &errorJSON, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "jobs: sqlite scan job")
		}
		if err := json.Unmarshal([]byte(paramsJSON), &j.Params); err != nil {
			return nil, eris.Wrap(err, "jobs: unmarshal params")
		}
		if resultJSON.Valid {
			j.Result = json.RawMessage(resultJSON.String)
		}
		if errorJSON.Valid {
			j.Error = &ErrorMeta{}
			if err := json.Unmarshal([]byte(errorJSON.String), j.Error); err != nil {
				return nil, eris.Wrap(err, "jobs: unmarshal error meta")
			}
		}
		out = append(out, j)
	}
	return out, eris.Wrap(rows.Err(), "jobs: sqlite list jobs iterate")
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("job not found: %s", id)
	}
	return nil
}
