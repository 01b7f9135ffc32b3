package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"foodtruck-market/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []Notification
	err   error
	panic bool
	block chan struct{}
}

func (r *recordingNotifier) Notify(ctx context.Context, n Notification) error {
	if r.panic {
		panic("boom")
	}
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func TestDispatcher_FillsEnvelope(t *testing.T) {
	rec := &recordingNotifier{}
	d := NewDispatcher(rec, time.Second, nil, zap.NewNop())

	d.Send(Notification{Type: TypeBookingApproved, BookingID: uuid.New()})
	d.Wait()

	require.Len(t, rec.sent, 1)
	assert.NotEqual(t, uuid.Nil, rec.sent[0].ID)
	assert.False(t, rec.sent[0].OccurredAt.IsZero())
}

func TestDispatcher_FailuresAreSwallowedAndCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	d := NewDispatcher(&recordingNotifier{err: errors.New("broker down")}, time.Second, m, zap.NewNop())
	d.Send(Notification{Type: TypeBookingDeclined, BookingID: uuid.New()})

	panicky := NewDispatcher(&recordingNotifier{panic: true}, time.Second, m, zap.NewNop())
	panicky.Send(Notification{Type: TypeBookingDeclined, BookingID: uuid.New()})

	d.Wait()
	panicky.Wait()

	count, err := testutil.GatherAndCount(reg, "booking_notification_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDispatcher_SendDoesNotBlock(t *testing.T) {
	rec := &recordingNotifier{block: make(chan struct{})}
	d := NewDispatcher(rec, 50*time.Millisecond, nil, zap.NewNop())

	start := time.Now()
	d.Send(Notification{Type: TypeBookingRequested, BookingID: uuid.New()})
	assert.Less(t, time.Since(start), 40*time.Millisecond)

	// the notifier gives up at the dispatcher timeout
	d.Wait()
	assert.Empty(t, rec.sent)
}
