package application

import (
	"context"
	"errors"
	"log"
	"time"

	"rentnotice-cloud/internal/observability/metrics"
)

const defaultDispatchBatch = 50

// Dispatcher relays pending notice emails to an EmailSender.
type Dispatcher struct {
	queue    EmailQueue
	sender   EmailSender
	batch    int
	interval time.Duration
	logger   *log.Logger
}

// NewDispatcher constructs a dispatcher. interval <= 0 defaults to one minute.
func NewDispatcher(queue EmailQueue, sender EmailSender, interval time.Duration, logger *log.Logger) (*Dispatcher, error) {
	if queue == nil {
		return nil, errors.New("email dispatcher: nil queue")
	}
	if sender == nil {
		return nil, errors.New("email dispatcher: nil sender")
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Dispatcher{queue: queue, sender: sender, batch: defaultDispatchBatch, interval: interval, logger: logger}, nil
}

// Dispatch delivers one batch of pending emails. A failed delivery is marked
// failed and left for the operator; it is not retried here.
func (d *Dispatcher) Dispatch(ctx context.Context) (sent int, failed int, err error) {
	pending, err := d.queue.ListPending(ctx, d.batch)
	if err != nil {
		return 0, 0, err
	}
	for _, msg := range pending {
		if err := ctx.Err(); err != nil {
			return sent, failed, err
		}
		if sendErr := d.sender.Send(ctx, msg); sendErr != nil {
			failed++
			metrics.IncEmailDispatch(metrics.ResultError)
			if err := d.queue.MarkFailed(ctx, msg.ID, sendErr.Error()); err != nil {
				d.logf("email mark failed error: id=%s err=%v", msg.ID, err)
			}
			d.logf("email send failed: id=%s notice=%s err=%v", msg.ID, msg.NoticeID, sendErr)
			continue
		}
		sent++
		metrics.IncEmailDispatch(metrics.ResultSuccess)
		if err := d.queue.MarkSent(ctx, msg.ID); err != nil {
			d.logf("email mark sent error: id=%s err=%v", msg.ID, err)
		}
	}
	return sent, failed, nil
}

// Run dispatches on every tick until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sent, failed, err := d.Dispatch(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				d.logf("email dispatch error: %v", err)
				continue
			}
			if sent > 0 || failed > 0 {
				d.logf("email dispatch: sent=%d failed=%d", sent, failed)
			}
		}
	}
}

func (d *Dispatcher) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}
