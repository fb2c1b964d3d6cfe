package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgres(mock, nil), mock
}

func TestPostgres_Enqueue(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO geovar_jobs").
		WithArgs(pgxmock.AnyArg(), "border", "emission", []byte(`{"border_type":"jgg","year":2019}`),
			"queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	job, err := st.Enqueue(context.Background(), KindBorder, "emission", Params{BorderType: "jgg", Year: 2019})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, StatusQueued, job.Status)
	assert.Equal(t, "emission", job.Variable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ClaimNext_EmptyQueue(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WillReturnError(pgx.ErrNoRows)

	job, err := st.ClaimNext(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ClaimNext(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "kind", "variable", "params", "status", "created_at", "updated_at"}).
		AddRow("task-1", "point", "rail_distance", []byte(`{"year":2010}`), "running", now, now)
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WillReturnRows(rows)

	job, err := st.ClaimNext(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "task-1", job.ID)
	assert.Equal(t, KindPoint, job.Kind)
	assert.Equal(t, 2010, job.Params.Year)
	assert.Equal(t, StatusRunning, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Get_Unknown(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("FROM geovar_jobs WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := st.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Complete_NotFound(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec("UPDATE geovar_jobs SET result").
		WithArgs([]byte(`[]`), "complete", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := st.Complete(context.Background(), "missing", json.RawMessage(`[]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Fail(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec("UPDATE geovar_jobs SET error").
		WithArgs([]byte(`{"exc_type":"ValueError","exc_message":"invalid year 1999"}`),
			"failed", pgxmock.AnyArg(), "task-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := st.Fail(context.Background(), "task-1", ErrorMeta{ExcType: "ValueError", ExcMessage: "invalid year 1999"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
