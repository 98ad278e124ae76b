package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"study-match/internal/app"
	"study-match/internal/httputil"
	"study-match/internal/matcher"
	"study-match/internal/queue"
	"study-match/internal/service"
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	if deps.Queue == nil {
		deps.Log.Error("worker requires QUEUE_PROVIDER=nats")
		deps.Close()
		os.Exit(1)
	}
	defer deps.Close()
	deps.Log.Info("match worker starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeMatch, func(ctx context.Context, task queue.Task) ([]byte, error) {
			return handleMatch(ctx, deps, task)
		})
	})

	// The health server has no shutdown hook; it ends with the process.
	go func() {
		if err := httputil.ServeHealth(deps.Log, deps.Config.Port, "worker"); err != nil {
			deps.Log.Error("health server stopped", "err", err)
			stop()
		}
	}()

	if err := g.Wait(); err != nil {
		deps.Log.Error("match worker stopped", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("match worker stopped")
}

// handleMatch decodes a match request from the task payload and returns the
// encoded response. Bad input is permanent; only unexpected failures retry.
func handleMatch(ctx context.Context, deps app.Deps, task queue.Task) ([]byte, error) {
	log := deps.Log.With("task_id", task.ID)

	var req service.Request
	if err := json.Unmarshal(task.Payload, &req); err != nil {
		return nil, queue.Permanent(fmt.Errorf("decode match request: %w", err))
	}
	if err := deps.Service.Validate(&req); err != nil {
		return nil, queue.Permanent(fmt.Errorf("invalid match request: %w", err))
	}

	resp, err := deps.Service.Match(ctx, req)
	if err != nil {
		if errors.Is(err, matcher.ErrMalformedInput) {
			return nil, queue.Permanent(err)
		}
		return nil, err
	}
	log.Info("match task completed", "candidates", len(req.Others), "matches", len(resp.Matches), "cached", resp.Cached)
	return json.Marshal(resp)
}
