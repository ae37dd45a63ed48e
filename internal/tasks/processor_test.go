package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gperojohn83-art/Construction/internal/queue"
)

type fakeMaintenance struct {
	calls   []string
	planIDs []string
	err     error
}

func (f *fakeMaintenance) MarkOverdueInvoices(context.Context) (int64, error) {
	f.calls = append(f.calls, "overdue")
	return 2, f.err
}

func (f *fakeMaintenance) ExpirePlans(_ context.Context, taskID string) (int, error) {
	f.calls = append(f.calls, "plans")
	f.planIDs = append(f.planIDs, taskID)
	return 1, f.err
}

func (f *fakeMaintenance) PurgeSessions(context.Context) (int64, error) {
	f.calls = append(f.calls, "sessions")
	return 0, f.err
}

func (f *fakeMaintenance) ExpireInvitations(context.Context) (int64, error) {
	f.calls = append(f.calls, "invitations")
	return 0, f.err
}

type fakeNotifier struct {
	delivered []queue.Task
}

func (f *fakeNotifier) Deliver(_ context.Context, task queue.Task) (int, error) {
	f.delivered = append(f.delivered, task)
	return 1, nil
}

func TestProcessor_Dispatch(t *testing.T) {
	m := &fakeMaintenance{}
	n := &fakeNotifier{}
	p := NewProcessor(m, n, zerolog.Nop())
	ctx := context.Background()

	for _, typ := range []queue.TaskType{
		queue.TaskInvoicesOverdue,
		queue.TaskPlansExpire,
		queue.TaskSessionsPurge,
		queue.TaskInvitationsExpire,
	} {
		require.NoError(t, p.Handle(ctx, queue.Task{ID: "5-0", Type: typ}))
	}
	assert.Equal(t, []string{"overdue", "plans", "sessions", "invitations"}, m.calls)
	assert.Equal(t, []string{"5-0"}, m.planIDs)

	require.NoError(t, p.Handle(ctx, queue.Task{ID: "6-0", Type: queue.TaskNotify, UserID: "u1"}))
	require.Len(t, n.delivered, 1)
	assert.Equal(t, "u1", n.delivered[0].UserID)
}

func TestProcessor_UnknownTypeIsAcked(t *testing.T) {
	p := NewProcessor(&fakeMaintenance{}, &fakeNotifier{}, zerolog.Nop())
	assert.NoError(t, p.Handle(context.Background(), queue.Task{ID: "1-0", Type: "thumbnail"}))
}

func TestProcessor_PropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	p := NewProcessor(&fakeMaintenance{err: boom}, &fakeNotifier{}, zerolog.Nop())

	err := p.Handle(context.Background(), queue.Task{ID: "1-0", Type: queue.TaskSessionsPurge})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sessions.purge")
}
