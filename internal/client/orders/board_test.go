package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	orders    []Order
	listErr   error
	changeErr error
	changes   []Status
}

func (f *fakeSource) List(context.Context) ([]Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]Order(nil), f.orders...), nil
}

func (f *fakeSource) ChangeStatus(_ context.Context, order Order, to Status) (bool, error) {
	if !CanTransition(order.Status, to) {
		return false, nil
	}
	if f.changeErr != nil {
		return false, f.changeErr
	}
	f.changes = append(f.changes, to)
	return true, nil
}

type inbox struct{ got []Notification }

func (i *inbox) notify(n Notification) { i.got = append(i.got, n) }

func newTestBoard(src *fakeSource) (*Board, *inbox) {
	in := &inbox{}
	return NewBoard(src, in.notify, nil), in
}

func TestBoard_LoadAndFilter(t *testing.T) {
	b, _ := newTestBoard(&fakeSource{orders: sampleOrders()})

	require.NoError(t, b.Load(context.Background()))
	assert.Len(t, b.Visible(), 5)

	b.SetQuery("juan")
	b.SetStatus(StatusDone)
	assert.Equal(t, []uint{2, 3}, ids(b.Visible()))

	b.SetStatus("")
	assert.Equal(t, []uint{1, 2, 3}, ids(b.Visible()))
}

func TestBoard_LoadFailureKeepsPreviousData(t *testing.T) {
	src := &fakeSource{orders: sampleOrders()}
	b, in := newTestBoard(src)
	require.NoError(t, b.Load(context.Background()))

	src.listErr = errors.New("connection refused")
	err := b.Load(context.Background())

	assert.Error(t, err)
	assert.Len(t, b.Orders(), 5)
	require.Len(t, in.got, 1)
	assert.Equal(t, MsgLoadFailed, in.got[0].Message)
}

func TestBoard_AdvanceWalksTheChain(t *testing.T) {
	src := &fakeSource{orders: []Order{{ID: 1, Status: StatusPending}}}
	b, in := newTestBoard(src)
	ctx := context.Background()
	require.NoError(t, b.Load(ctx))

	require.NoError(t, b.Advance(ctx, 1))
	assert.Equal(t, StatusProgress, b.Orders()[0].Status)

	require.NoError(t, b.Advance(ctx, 1))
	assert.Equal(t, StatusDone, b.Orders()[0].Status)

	// terminal: nothing sent, nothing shown
	require.NoError(t, b.Advance(ctx, 1))
	assert.Equal(t, StatusDone, b.Orders()[0].Status)

	assert.Equal(t, []Status{StatusProgress, StatusDone}, src.changes)
	assert.Equal(t, []Notification{
		{Message: MsgInProgress, Color: "tertiary"},
		{Message: MsgCompleted, Color: "success"},
	}, in.got)
}

func TestBoard_AdvanceFailureLeavesStateAlone(t *testing.T) {
	src := &fakeSource{orders: []Order{{ID: 1, Status: StatusProgress}}, changeErr: errors.New("boom")}
	b, in := newTestBoard(src)
	ctx := context.Background()
	require.NoError(t, b.Load(ctx))

	err := b.Advance(ctx, 1)

	assert.Error(t, err)
	assert.Equal(t, StatusProgress, b.Orders()[0].Status)
	require.Len(t, in.got, 1)
	assert.Equal(t, Notification{Message: MsgChangeFailed, Color: "danger"}, in.got[0])
}

func TestBoard_AdvanceUnknownOrder(t *testing.T) {
	b, _ := newTestBoard(&fakeSource{})

	assert.ErrorIs(t, b.Advance(context.Background(), 42), ErrOrderNotLoaded)
}
