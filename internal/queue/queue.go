package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"study-match/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

const TaskTypeMatch TaskType = "match"

// ErrPermanent marks a handler failure that must not be retried.
var ErrPermanent = errors.New("permanent task failure")

// Permanent wraps err so the worker drops the task instead of retrying it.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// Task is a unit of work. ReplyTo, when set, is the subject the result is
// published to once the handler succeeds.
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	Payload     []byte
	ReplyTo     string
	Attempts    int
	MaxAttempts int
	NotBefore   time.Time
}

// Handler processes a task and returns the encoded result.
type Handler func(context.Context, Task) ([]byte, error)

// Queue exposes a minimal contract to enqueue and consume tasks.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
}

// EnqueueWithRetry attempts to enqueue with retries and exponential backoff.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = q.Enqueue(ctx, task); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base)):
		}
	}
	return err
}
