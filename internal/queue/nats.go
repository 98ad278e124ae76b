package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"study-match/internal/retry"
)

const (
	defaultMaxAttempts = 5
	maxRetryDelay      = 30 * time.Second
)

// publisher is the subset of *nats.Conn used to send messages.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NewNATS constructs a thin NATS-based queue.
func NewNATS(log *slog.Logger, nc *nats.Conn) Queue {
	return &natsQueue{log: log, nc: nc, pub: nc, retryBase: time.Second}
}

type natsQueue struct {
	log       *slog.Logger
	nc        *nats.Conn
	pub       publisher
	retryBase time.Duration
}

// Subject returns the subject tasks of the given type are published on.
func Subject(taskType TaskType) string {
	return "tasks." + string(taskType)
}

func (q *natsQueue) Enqueue(_ context.Context, task Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Type == "" {
		return errors.New("task type required")
	}
	body, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.pub.Publish(Subject(task.Type), body)
}

// Worker consumes tasks in the "workers-<type>" queue group until ctx ends.
// Messages sent with a reply inbox are answered directly and never retried.
func (q *natsQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	group := "workers-" + string(taskType)
	sub, err := q.nc.QueueSubscribe(Subject(taskType), group, func(msg *nats.Msg) {
		q.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

func (q *natsQueue) handleMessage(ctx context.Context, msg *nats.Msg, handler Handler) {
	var task Task
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		q.log.Error("failed to decode task", "err", err)
		q.respondError(msg.Reply, err)
		return
	}

	// Early deliveries are rescheduled off the subscription goroutine so one
	// delayed task does not hold up the rest of the subject.
	if wait := time.Until(task.NotBefore); wait > 0 {
		time.AfterFunc(wait, func() {
			if ctx.Err() == nil {
				q.handleMessage(ctx, msg, handler)
			}
		})
		return
	}

	result, err := handler(ctx, task)
	if msg.Reply != "" {
		if err != nil {
			q.log.Warn("task failed", "id", task.ID, "type", task.Type, "err", err)
			q.respondError(msg.Reply, err)
			return
		}
		q.publish(msg.Reply, result, task)
		return
	}

	switch {
	case err == nil:
		if task.ReplyTo != "" {
			q.publish(task.ReplyTo, result, task)
		}
	case errors.Is(err, ErrPermanent):
		q.log.Error("task rejected", "id", task.ID, "type", task.Type, "err", err)
		if task.ReplyTo != "" {
			q.respondError(task.ReplyTo, err)
		}
	default:
		q.retryTask(ctx, task, err)
	}
}

func (q *natsQueue) publish(subject string, data []byte, task Task) {
	if err := q.pub.Publish(subject, data); err != nil {
		q.log.Error("failed to publish task result", "id", task.ID, "subject", subject, "err", err)
	}
}

func (q *natsQueue) respondError(subject string, cause error) {
	if subject == "" {
		return
	}
	body, err := json.Marshal(map[string]string{"error": cause.Error()})
	if err != nil {
		return
	}
	if err := q.pub.Publish(subject, body); err != nil {
		q.log.Error("failed to publish task error", "subject", subject, "err", err)
	}
}

func (q *natsQueue) retryTask(ctx context.Context, task Task, handlerErr error) {
	task.Attempts++
	if task.MaxAttempts == 0 {
		task.MaxAttempts = defaultMaxAttempts
	}

	if task.Attempts < task.MaxAttempts {
		delay := retry.CappedBackoff(task.Attempts, q.retryBase, maxRetryDelay)
		task.NotBefore = time.Now().Add(delay)
		q.log.Warn("task failed, retrying", "id", task.ID, "type", task.Type, "attempt", task.Attempts, "delay", delay, "err", handlerErr)
		time.AfterFunc(delay, func() {
			if ctx.Err() != nil {
				return
			}
			if err := q.Enqueue(ctx, task); err != nil {
				q.log.Error("failed to re-enqueue task after failure", "id", task.ID, "type", task.Type, "original_err", handlerErr, "enqueue_err", err)
			}
		})
	} else {
		q.log.Error("task permanently failed", "id", task.ID, "type", task.Type, "original_err", handlerErr)
		if task.ReplyTo != "" {
			q.respondError(task.ReplyTo, handlerErr)
		}
	}
}
