package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pingloop/messenger/internal/core/ports"
)

type fakeNotifier struct {
	mu        sync.Mutex
	reachable map[string]bool
	pushed    chan ports.PushEvent
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		reachable: make(map[string]bool),
		pushed:    make(chan ports.PushEvent, 16),
	}
}

func (f *fakeNotifier) IsReachable(_ context.Context, userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reachable[userID]
}

func (f *fakeNotifier) Push(_ context.Context, userID, event string, payload any) error {
	f.pushed <- ports.PushEvent{UserID: userID, Event: event, Payload: payload}
	return nil
}

func waitForPush(t *testing.T, ch <-chan ports.PushEvent) ports.PushEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for push")
		return ports.PushEvent{}
	}
}

func TestPushDispatcher_DeliversToReachableUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := newFakeNotifier()
	notifier.reachable["u1"] = true

	d := NewPushDispatcher(2, notifier, zerolog.Nop())
	d.Start(ctx)

	d.Enqueue(ports.PushEvent{UserID: "u1", Event: ports.EventMessage, Payload: "hi"})

	ev := waitForPush(t, notifier.pushed)
	if ev.UserID != "u1" || ev.Event != ports.EventMessage {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestPushDispatcher_SkipsUnreachableUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := newFakeNotifier()
	notifier.reachable["online"] = true

	d := NewPushDispatcher(1, notifier, zerolog.Nop())
	d.Start(ctx)

	// Both events land on the single worker; the offline one must be skipped
	// without blocking the one behind it.
	d.Enqueue(ports.PushEvent{UserID: "offline", Event: ports.EventNotification})
	d.Enqueue(ports.PushEvent{UserID: "online", Event: ports.EventNotification})

	ev := waitForPush(t, notifier.pushed)
	if ev.UserID != "online" {
		t.Fatalf("expected only the online user's event, got %+v", ev)
	}
	select {
	case ev := <-notifier.pushed:
		t.Fatalf("unexpected extra push: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPushDispatcher_SameUserKeepsOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := newFakeNotifier()
	notifier.reachable["u1"] = true

	d := NewPushDispatcher(4, notifier, zerolog.Nop())
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		d.Enqueue(ports.PushEvent{UserID: "u1", Event: ports.EventMessage, Payload: i})
	}

	for i := 0; i < 5; i++ {
		ev := waitForPush(t, notifier.pushed)
		if ev.Payload != i {
			t.Fatalf("out of order: expected %d, got %v", i, ev.Payload)
		}
	}
}

func TestPushDispatcher_EnqueueNeverBlocksWhenFull(t *testing.T) {
	// Workers never started, so the queue only fills.
	notifier := newFakeNotifier()
	d := NewPushDispatcher(1, notifier, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer*2; i++ {
			d.Enqueue(ports.PushEvent{UserID: "u1", Event: ports.EventMessage})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Enqueue blocked on a full queue")
	}
}

func TestPushDispatcher_DefaultWorkerCount(t *testing.T) {
	d := NewPushDispatcher(0, newFakeNotifier(), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
