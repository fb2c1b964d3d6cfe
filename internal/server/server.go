// Package server exposes the calculation API: submit endpoints that
// enqueue jobs (or run them inline with ?sync=true) and a polling
// endpoint keyed by task id.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ncc-airhealth/korea-geovariable/internal/border"
	"github.com/ncc-airhealth/korea-geovariable/internal/jobs"
	"github.com/ncc-airhealth/korea-geovariable/internal/point"
)

// Server wires the job store and runner behind the HTTP API.
type Server struct {
	store  jobs.Store
	run    jobs.Runner
	apiKey string
}

// New builds a Server. An empty apiKey disables authentication.
func New(store jobs.Store, run jobs.Runner, apiKey string) *Server {
	return &Server{store: store, run: run, apiKey: apiKey}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key"},
	}))

	r.Get("/", s.root)
	r.Group(func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(s.requireAPIKey)
		}
		r.Get("/job_status/{task_id}", s.jobStatus)
		r.Post("/border/{variable}/", s.submitBorder)
		r.Post("/point/{variable}/", s.submitPoint)
	})
	return r
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != s.apiKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Korea GeoVariable server is running.",
	})
}

// jobStatus reports queue state in the shape pollers expect. Unknown
// task ids are reported as PENDING rather than 404, since a freshly
// submitted id may not be visible to the reader yet.
func (s *Server) jobStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")

	response := map[string]any{
		"task_id": taskID,
		"status":  "PENDING",
		"result":  nil,
	}

	job, err := s.store.Get(r.Context(), taskID)
	if err != nil {
		if !errors.Is(err, jobs.ErrNotFound) {
			zap.L().Error("server: job lookup failed", zap.String("task_id", taskID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "job lookup failed"})
			return
		}
		writeJSON(w, http.StatusOK, response)
		return
	}

	switch job.Status {
	case jobs.StatusQueued:
		response["status"] = "PENDING"
	case jobs.StatusRunning:
		response["status"] = "STARTED"
	case jobs.StatusComplete:
		response["status"] = "SUCCESS"
		response["result"] = json.RawMessage(job.Result)
	case jobs.StatusFailed:
		response["status"] = "FAILURE"
		response["result"] = job.Error
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) submitBorder(w http.ResponseWriter, r *http.Request) {
	variable := chi.URLParam(r, "variable")

	bt, err := border.ParseType(r.URL.Query().Get("border_type"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	year, err := intParam(r, "year")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if _, err := border.New(variable, bt, year); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.submit(w, r, jobs.KindBorder, variable, jobs.Params{
		BorderType: string(bt),
		Year:       year,
	})
}

func (s *Server) submitPoint(w http.ResponseWriter, r *http.Request) {
	variable := chi.URLParam(r, "variable")

	q := r.URL.Query()
	params := jobs.Params{
		EmissionType:  q.Get("emission_type"),
		PollutantType: q.Get("pollutant_type"),
	}
	var err error
	if q.Get("year") != "" {
		if params.Year, err = intParam(r, "year"); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	if q.Get("buffer_size") != "" {
		if params.BufferSize, err = intParam(r, "buffer_size"); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	if _, err := point.New(variable, point.Params{}); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.submit(w, r, jobs.KindPoint, variable, params)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, kind jobs.Kind, variable string, params jobs.Params) {
	if r.URL.Query().Get("sync") == "true" {
		result, err := s.run(r.Context(), &jobs.Job{Kind: kind, Variable: variable, Params: params})
		if err != nil {
			status := http.StatusInternalServerError
			if meta := jobs.FailureMeta(err); meta.ExcType == "ValueError" {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(result) //nolint:errcheck
		return
	}

	job, err := s.store.Enqueue(r.Context(), kind, variable, params)
	if err != nil {
		zap.L().Error("server: enqueue failed", zap.String("variable", variable), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "enqueue failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"task_id": job.ID})
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Errorf("invalid %s %q, expected an integer", name, raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}
