package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncc-airhealth/korea-geovariable/internal/jobs"
)

func newTestServer(t *testing.T, apiKey string) (*Server, jobs.Store, pgxmock.PgxPoolIface) {
	t.Helper()
	st, err := jobs.NewSQLite(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return New(st, jobs.NewRunner(mock), apiKey), st, mock
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRoot(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Korea GeoVariable server is running.", body["message"])
}

func TestJobStatus_UnknownTask(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/job_status/not-a-real-task", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "not-a-real-task", body["task_id"])
	assert.Equal(t, "PENDING", body["status"])
	assert.Nil(t, body["result"])
}

func TestSubmitBorder_ReturnsTaskID(t *testing.T) {
	srv, st, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/border/river/?border_type=sgg&year=2020", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	taskID, ok := body["task_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, taskID)

	job, err := st.Get(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusQueued, job.Status)
	assert.Equal(t, "river", job.Variable)
	assert.Equal(t, "sgg", job.Params.BorderType)
	assert.Equal(t, 2020, job.Params.Year)
}

func TestSubmitBorder_InvalidBorderType(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/border/river/?border_type=province&year=2020", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "valid types are: sgg, emd, jgg")
}

func TestSubmitBorder_UnknownVariable(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/border/population/?border_type=sgg&year=2020", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "unknown variable")
	assert.Contains(t, body["error"], "valid variables are:")
}

func TestSubmitBorder_BadYear(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/border/river/?border_type=sgg&year=latest", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "expected an integer")
}

func TestSubmitBorder_Sync(t *testing.T) {
	srv, _, mock := newTestServer(t, "")
	rows := pgxmock.NewRows([]string{"sigungu_cd", "river_area_sum"}).
		AddRow("11010", 1523.4)
	mock.ExpectQuery("river_area_sum").WillReturnRows(rows)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/border/river/?border_type=sgg&year=2020&sync=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"sigungu_cd":"11010","river_area_sum":1523.4}]`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitBorder_SyncValidationError(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/border/river/?border_type=sgg&year=1999&sync=true", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "invalid year 1999")
	assert.Contains(t, body["error"], "valid years are:")
}

func TestSubmitPoint_ReturnsTaskID(t *testing.T) {
	srv, st, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/point/bus_stop_count/?year=2023&buffer_size=500", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	taskID, ok := body["task_id"].(string)
	require.True(t, ok)

	job, err := st.Get(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, jobs.KindPoint, job.Kind)
	assert.Equal(t, 500, job.Params.BufferSize)
}

func TestSubmitPoint_UnknownVariable(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/point/traffic/?year=2020", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "unknown variable")
}

func TestJobStatus_Lifecycle(t *testing.T) {
	srv, st, _ := newTestServer(t, "")
	ctx := context.Background()

	job, err := st.Enqueue(ctx, jobs.KindBorder, "river", jobs.Params{BorderType: "sgg", Year: 2020})
	require.NoError(t, err)

	get := func() map[string]any {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/job_status/"+job.ID, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		return decodeBody(t, rec)
	}

	assert.Equal(t, "PENDING", get()["status"])

	claimed, err := st.ClaimNext(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, "STARTED", get()["status"])

	require.NoError(t, st.Complete(ctx, job.ID, json.RawMessage(`[{"sigungu_cd":"11010","river_area_sum":1.5}]`)))
	body := get()
	assert.Equal(t, "SUCCESS", body["status"])
	require.NotNil(t, body["result"])
}

func TestJobStatus_Failure(t *testing.T) {
	srv, st, _ := newTestServer(t, "")
	ctx := context.Background()

	job, err := st.Enqueue(ctx, jobs.KindBorder, "river", jobs.Params{BorderType: "sgg", Year: 1999})
	require.NoError(t, err)
	require.NoError(t, st.Fail(ctx, job.ID, jobs.ErrorMeta{
		ExcType:    "ValueError",
		ExcMessage: "invalid year 1999, valid years are: 2000, 2005, 2010, 2015, 2020",
	}))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/job_status/"+job.ID, nil))
	body := decodeBody(t, rec)

	assert.Equal(t, "FAILURE", body["status"])
	result, ok := body["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ValueError", result["exc_type"])
	assert.Contains(t, result["exc_message"], "invalid year 1999")
}

func TestAPIKey(t *testing.T) {
	srv, _, _ := newTestServer(t, "secret")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/job_status/task-1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/job_status/task-1", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// root stays open for health checks
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
