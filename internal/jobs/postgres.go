package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
)

// PostgresStore implements Store on the same database the calculators
// query, so a single connection string runs the whole service.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres wraps an existing pool. The pool stays owned by the
// caller unless closeFn is provided.
func NewPostgres(pool db.Pool, closeFn func()) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: closeFn}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS geovar_jobs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	variable   TEXT NOT NULL,
	params     JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     JSONB,
	error      JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_geovar_jobs_status ON geovar_jobs(status);
CREATE INDEX IF NOT EXISTS idx_geovar_jobs_variable ON geovar_jobs(variable);
CREATE INDEX IF NOT EXISTS idx_geovar_jobs_created_at ON geovar_jobs(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "jobs: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Enqueue(ctx context.Context, kind Kind, variable string, params Params) (*Job, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, eris.Wrap(err, "jobs: marshal params")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO geovar_jobs (id, kind, variable, params, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, string(kind), variable, paramsJSON, string(StatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "jobs: insert job")
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

func (s *PostgresStore) ClaimNext(ctx context.Context) (*Job, error) {
	var j Job
	var paramsJSON []byte

	err := s.pool.QueryRow(ctx,
		`UPDATE geovar_jobs SET status = 'running', updated_at = now()
		 WHERE id = (
			SELECT id FROM geovar_jobs
			WHERE status = 'queued'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, kind, variable, params, status, created_at, updated_at`,
	).Scan(&j.ID, &j.Kind, &j.Variable, &paramsJSON, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "jobs: claim next")
	}
	if err := json.Unmarshal(paramsJSON, &j.Params); err != nil {
		return nil, eris.Wrap(err, "jobs: unmarshal params")
	}
	return &j, nil
}

func (s *PostgresStore) Complete(ctx context.Context, jobID string, result json.RawMessage) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE geovar_jobs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		[]byte(result), string(StatusComplete), time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "jobs: complete job %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", jobID)
	}
	return nil
}

func (s *PostgresStore) Fail(ctx context.Context, jobID string, meta ErrorMeta) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return eris.Wrap(err, "jobs: marshal error meta")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE geovar_jobs SET error = $1, status = $2, updated_at = $3 WHERE id = $4`,
		metaJSON, string(StatusFailed), time.Now().UTC(), jobID,
	)
	if err != nil {
		return eris.Wrapf(err, "jobs: fail job %s", jobID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", jobID)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, jobID string) (*Job, error) {
	var j Job
	var paramsJSON []byte
	var resultJSON, errorJSON *[]byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, kind, variable, params, status, result, error, created_at, updated_at
		 FROM geovar_jobs WHERE id = $1`,
		jobID,
	).Scan(&j.ID, &j.Kind, &j.Variable, &paramsJSON, &j.Status, &resultJSON, &errorJSON, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "jobs: get job %s", jobID)
	}

	if err := json.Unmarshal(paramsJSON, &j.Params); err != nil {
		return nil, eris.Wrap(err, "jobs: unmarshal params")
	}
	if resultJSON != nil {
		j.Result = json.RawMessage(*resultJSON)
	}
	if errorJSON != nil {
		j.Error = &ErrorMeta{}
		if err := json.Unmarshal(*errorJSON, j.Error); err != nil {
			return nil, eris.Wrap(err, "jobs: unmarshal error meta")
		}
	}
	return &j, nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]Job, error) {
	query := `SELECT id, kind, variable, params, status, result, error, created_at, updated_at
	          FROM geovar_jobs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Variable != "" {
		query += fmt.Sprintf(` AND variable = $%d`, argIdx)
		args = append(args, filter.Variable)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "jobs: list jobs")
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var j Job
		var paramsJSON []byte
		var resultJSON, errorJSON *[]byte

		if err := rows.Scan(&j.ID, &j.Kind, &j.Variable, &paramsJSON, &j.Status, &resultJSON, &errorJSON, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "jobs: scan job")
		}
		if err := json.Unmarshal(paramsJSON, &j.Params); err != nil {
			return nil, eris.Wrap(err, "jobs: unmarshal params")
		}
		if resultJSON != nil {
			j.Result = json.RawMessage(*resultJSON)
		}
		if errorJSON != nil {
			j.Error = &ErrorMeta{}
			if err := json.Unmarshal(*errorJSON, j.Error); err != nil {
				return nil, eris.Wrap(err, "jobs: unmarshal error meta")
			}
		}
		out = append(out, j)
	}
	return out, eris.Wrap(rows.Err(), "jobs: list jobs iterate")
}
