package worker

import (
	"context"
	"time"

	"order-service/internal/logging"
	"order-service/internal/repo"
)

// Sender delivers one event payload. Satisfied by events.Publisher.
type Sender interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// OutboxDispatcher drains undelivered order events into Kafka on a fixed
// interval. Events are written transactionally with their order mutation, so
// a crash between commit and publish only delays delivery, never loses it.
type OutboxDispatcher struct {
	outbox    repo.OutboxRepo
	publisher Sender
	interval  time.Duration
	batchSize int
}

func NewOutboxDispatcher(outbox repo.OutboxRepo, publisher Sender, interval time.Duration) *OutboxDispatcher {
	return &OutboxDispatcher{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: 100,
	}
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	logging.Log(logging.Fields{Service: "outbox", Message: "outbox dispatcher started"})

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.process(ctx); err != nil {
				logging.Log(logging.Fields{Service: "outbox", Status: "error", Error: err.Error()})
			}
		}
	}
}

func (d *OutboxDispatcher) process(ctx context.Context) error {
	pending, err := d.outbox.FetchPending(ctx, d.batchSize)
	if err != nil {
		return err
	}

	for _, rec := range pending {
		if err := d.publisher.Publish(ctx, rec.Key, rec.Payload); err != nil {
			// leave the record pending, the next sweep retries in order
			logging.Log(logging.Fields{
				Service: "outbox",
				Status:  "publish_failed",
				Message: rec.EventID,
				Error:   err.Error(),
			})
			return nil
		}
		if err := d.outbox.MarkSent(ctx, rec.ID); err != nil {
			return err
		}
	}
	return nil
}
