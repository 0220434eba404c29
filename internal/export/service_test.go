package export

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pricedesk/pricedesk/internal/pricelist"
	"github.com/pricedesk/pricedesk/jobs"
)

type stubQueue struct {
	tasks     []*asynq.Task
	err       error
	onEnqueue func(*asynq.Task)
}

func (q *stubQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	if q.onEnqueue != nil {
		q.onEnqueue(task)
	}
	return &asynq.TaskInfo{}, nil
}

func newTestService(t *testing.T) (*Service, *stubQueue) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	queue := &stubQueue{}
	return NewService(slog.New(slog.DiscardHandler), rdb, queue), queue
}

func TestTriggerRejectsConcurrentExports(t *testing.T) {
	svc, queue := newTestService(t)
	ctx := context.Background()

	id, err := svc.Trigger(ctx, pricelist.Filter{Category: pricelist.CategoryAll}, 14)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Len(t, queue.tasks, 1)

	// Second trigger while busy is rejected, not queued.
	_, err = svc.Trigger(ctx, pricelist.Filter{}, 14)
	require.ErrorIs(t, err, ErrBusy)
	require.Len(t, queue.tasks, 1)

	st, err := svc.Status(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StatePending, st.State)
}

func TestMarkReadyReleasesBusyFlag(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Trigger(ctx, pricelist.Filter{}, 14)
	require.NoError(t, err)
	require.NoError(t, svc.MarkReady(ctx, id, "/tmp/out.pdf"))

	st, err := svc.Status(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StateReady, st.State)
	require.Equal(t, "/tmp/out.pdf", st.File)

	// A new export may start once the previous one finished.
	_, err = svc.Trigger(ctx, pricelist.Filter{}, 14)
	require.NoError(t, err)
}

func TestMarkFailedSurfacesSingleError(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Trigger(ctx, pricelist.Filter{}, 14)
	require.NoError(t, err)
	require.NoError(t, svc.MarkFailed(ctx, id, "render exploded"))

	st, err := svc.Status(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StateFailed, st.State)
	require.Equal(t, "render exploded", st.Error)

	// Busy flag is cleared on failure too.
	_, err = svc.Trigger(ctx, pricelist.Filter{}, 14)
	require.NoError(t, err)
}

func TestStatusUnknownID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Status(context.Background(), "nope")
	require.ErrorIs(t, err, ErrUnknownExport)
}

func TestTriggerRecordsPendingBeforeEnqueue(t *testing.T) {
	svc, queue := newTestService(t)
	ctx := context.Background()

	// A worker fast enough to finish while the trigger is still in
	// flight must not have its result clobbered by a late pending write.
	queue.onEnqueue = func(task *asynq.Task) {
		var payload jobs.PriceListExportPayload
		require.NoError(t, json.Unmarshal(task.Payload(), &payload))

		st, err := svc.Status(ctx, payload.ExportID)
		require.NoError(t, err)
		require.Equal(t, StatePending, st.State)

		require.NoError(t, svc.MarkReady(ctx, payload.ExportID, "/tmp/fast.pdf"))
	}

	id, err := svc.Trigger(ctx, pricelist.Filter{}, 14)
	require.NoError(t, err)

	st, err := svc.Status(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StateReady, st.State)
	require.Equal(t, "/tmp/fast.pdf", st.File)
}

func TestTriggerClearsBusyOnEnqueueFailure(t *testing.T) {
	svc, queue := newTestService(t)
	ctx := context.Background()

	queue.err = errors.New("queue down")
	_, err := svc.Trigger(ctx, pricelist.Filter{}, 14)
	require.Error(t, err)

	queue.err = nil
	_, err = svc.Trigger(ctx, pricelist.Filter{}, 14)
	require.NoError(t, err)
}
