package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"study-match/internal/app"
	"study-match/internal/httputil"
	"study-match/internal/matcher"
	"study-match/internal/queue"
	"study-match/internal/service"
)

type jobRequest struct {
	Request      service.Request `json:"request"`
	ReplySubject string          `json:"reply_subject" validate:"required,max=255"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("matcher listening", "addr", addr,
		"threshold", deps.Config.MatchThreshold, "limit", deps.Config.MatchLimit)
	if err := http.ListenAndServe(addr, newRouter(deps)); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log)
	r.Post("/match", matchHandler(deps))
	if deps.Queue != nil {
		r.Post("/api/matches/jobs", jobHandler(deps))
	}
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return r
}

func matchHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.Request
		if !decode(deps, w, r, &req) {
			return
		}

		resp, err := deps.Service.Match(r.Context(), req)
		if err != nil {
			if errors.Is(err, matcher.ErrMalformedInput) {
				httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
				return
			}
			httputil.Fail(deps.Log, w, "matching failed", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

// jobHandler queues a match for the worker; the result is published to
// reply_subject.
func jobHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var job jobRequest
		if !decode(deps, w, r, &job) {
			return
		}

		payload, err := json.Marshal(job.Request)
		if err != nil {
			httputil.Fail(deps.Log, w, "marshal payload failed", err, http.StatusInternalServerError)
			return
		}
		task := queue.Task{
			ID:      uuid.New(),
			Type:    queue.TaskTypeMatch,
			Payload: payload,
			ReplyTo: job.ReplySubject,
		}
		if err := queue.EnqueueWithRetry(r.Context(), deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			httputil.Fail(deps.Log.With("task_id", task.ID), w, "failed to enqueue match; please retry", err, http.StatusServiceUnavailable)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"task_id": task.ID.String(),
			"status":  "queued",
		})
	}
}

// decode reads and validates a JSON body into v, writing a 400 on failure.
func decode(deps app.Deps, w http.ResponseWriter, r *http.Request, v any) bool {
	body := r.Body
	if limit := deps.Config.MaxBodyBytes; limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
		return false
	}
	if err := deps.Service.Validate(v); err != nil {
		httputil.ValidationError(deps.Log, w, err)
		return false
	}
	return true
}
