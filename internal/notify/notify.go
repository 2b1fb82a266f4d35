// Package notify pushes timer changes to other clients of the same job so
// they can resync before their next poll.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	r "github.com/redis/go-redis/v9"

	"github.com/andy/jobclock/internal/domain"
)

// Event is published after every committed timer transition
type Event struct {
	JobID   string            `json:"jobId"`
	Version int64             `json:"version"`
	Timer   domain.TimerState `json:"timer"`
}

// Notifier publishes and subscribes to job change events
type Notifier interface {
	Publish(ctx context.Context, job *domain.Job) error
	// Subscribe returns a channel of events for jobID; call the returned
	// function to release the subscription.
	Subscribe(ctx context.Context, jobID string) (<-chan Event, func() error, error)
}

func channel(jobID string) string {
	return "jobclock:job:" + jobID
}

// RedisNotifier uses Redis pub/sub
type RedisNotifier struct{ rdb *r.Client }

// NewRedis wraps an already connected client
func NewRedis(rdb *r.Client) *RedisNotifier { return &RedisNotifier{rdb} }

// Publish sends the job's new state on its channel
func (n *RedisNotifier) Publish(ctx context.Context, job *domain.Job) error {
	payload, err := json.Marshal(Event{JobID: job.ID, Version: job.Version, Timer: job.Timer})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return n.rdb.Publish(ctx, channel(job.ID), payload).Err()
}

// Subscribe streams change events for jobID until the returned func is called
func (n *RedisNotifier) Subscribe(ctx context.Context, jobID string) (<-chan Event, func() error, error) {
	sub := n.rdb.Subscribe(ctx, channel(jobID))
	// Wait for the subscription to be confirmed so no publish is missed
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan Event, 1)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			// Events are nudges to resync; a pending one already covers this
			select {
			case out <- ev:
			default:
			}
		}
	}()

	return out, sub.Close, nil
}

// Nop is used when no Redis address is configured; clients fall back to polling
type Nop struct{}

func (Nop) Publish(context.Context, *domain.Job) error { return nil }

func (Nop) Subscribe(context.Context, string) (<-chan Event, func() error, error) {
	return nil, func() error { return nil }, nil
}
