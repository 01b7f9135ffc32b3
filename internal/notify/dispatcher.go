package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"foodtruck-market/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher sends notifications in the background. Send never blocks the
// caller and never reports failures; they are logged and counted.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, timeout time.Duration, m *metrics.Metrics, log *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		notifier: notifier,
		timeout:  timeout,
		metrics:  m,
		log:      log.With(zap.String("component", "notify_dispatcher")),
		now:      time.Now,
	}
}

func (d *Dispatcher) Send(n Notification) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.OccurredAt.IsZero() {
		n.OccurredAt = d.now().UTC()
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.deliver(n); err != nil {
			d.metrics.NotifyFailure(string(n.Type))
			d.log.Warn("Notification not delivered",
				zap.Error(err),
				zap.String("type", string(n.Type)),
				zap.String("booking_id", n.BookingID.String()),
				zap.String("recipient_id", n.RecipientID.String()),
			)
		}
	}()
}

func (d *Dispatcher) deliver(n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()

	// detached from the request so a finished HTTP call does not cancel delivery
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	return d.notifier.Notify(ctx, n)
}

// Wait blocks until in-flight notifications finish
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
