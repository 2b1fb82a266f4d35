package notify

import (
	"context"
	"testing"

	"github.com/andy/jobclock/internal/domain"
)

func TestChannelIsPerJob(t *testing.T) {
	if channel("a") == channel("b") {
		t.Fatalf("jobs must not share a channel")
	}
	if got := channel("a"); got != "jobclock:job:a" {
		t.Fatalf("unexpected channel %q", got)
	}
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	if err := n.Publish(context.Background(), domain.NewJob("u1", "x", "")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	events, unsubscribe, err := n.Subscribe(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if events != nil {
		t.Fatalf("nop subscription must not deliver events")
	}
	if err := unsubscribe(); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
}
