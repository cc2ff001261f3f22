package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/pingloop/messenger/internal/api/metrics"
	"github.com/pingloop/messenger/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// PushDispatcher routes realtime events to a fixed set of workers using
// consistent hashing on the recipient id, preserving per-user delivery
// ordering while keeping the triggering operation fully decoupled from the
// socket: Enqueue never blocks, and a full queue drops the event rather than
// stalling a send.
type PushDispatcher struct {
	workers  []chan ports.PushEvent
	notifier ports.RealtimeNotifier
	log      zerolog.Logger
}

// NewPushDispatcher creates a PushDispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewPushDispatcher(numWorkers int, notifier ports.RealtimeNotifier, log zerolog.Logger) *PushDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &PushDispatcher{
		workers:  make([]chan ports.PushEvent, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.PushEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *PushDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its recipient. Events
// addressed to the same user keep their order; an overflowing queue drops the
// event, since the durable record remains visible through the notification
// feed regardless.
func (d *PushDispatcher) Enqueue(event ports.PushEvent) {
	idx := d.shardIndex(event.UserID)
	select {
	case d.workers[idx] <- event:
		metrics.PushQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.RealtimePushesTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("user", event.UserID).Str("event", event.Event).Msg("push queue full, event dropped")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *PushDispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *PushDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.PushEvent) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.PushQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			d.deliver(ctx, event)
		}
	}
}

// deliver pushes one event if the recipient is reachable. Failures are logged
// and swallowed; delivery is best-effort by contract.
func (d *PushDispatcher) deliver(ctx context.Context, event ports.PushEvent) {
	if !d.notifier.IsReachable(ctx, event.UserID) {
		metrics.RealtimePushesTotal.WithLabelValues("skipped").Inc()
		return
	}
	if err := d.notifier.Push(ctx, event.UserID, event.Event, event.Payload); err != nil {
		metrics.RealtimePushesTotal.WithLabelValues("failed").Inc()
		d.log.Debug().Err(err).Str("user", event.UserID).Str("event", event.Event).Msg("realtime push failed")
		return
	}
	metrics.RealtimePushesTotal.WithLabelValues("delivered").Inc()
}
