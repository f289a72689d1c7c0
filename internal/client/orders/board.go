package orders

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Notification messages
const (
	MsgInProgress   = "Orden marcada como En Proceso"
	MsgCompleted    = "Orden completada exitosamente"
	MsgChangeFailed = "Error al cambiar el estado de la orden"
	MsgLoadFailed   = "Error al obtener órdenes"
)

// Notification is a transient message for the user. Color follows Status.Color.
type Notification struct {
	Message string
	Color   string
}

// Notifier delivers notifications
type Notifier func(Notification)

// Source is what the board needs from the API
type Source interface {
	List(ctx context.Context) ([]Order, error)
	ChangeStatus(ctx context.Context, order Order, to Status) (bool, error)
}

// ErrOrderNotLoaded is returned by Advance for ids the board does not hold
var ErrOrderNotLoaded = errors.New("order not loaded")

// Board holds the order screen state: the loaded orders plus the search
// query and status filter applied to them.
type Board struct {
	source Source
	notify Notifier
	logger *zap.Logger

	mu     sync.Mutex
	data   []Order
	query  string
	status Status
}

// NewBoard creates a board. notify and logger may be nil.
func NewBoard(source Source, notify Notifier, logger *zap.Logger) *Board {
	if notify == nil {
		notify = func(Notification) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{source: source, notify: notify, logger: logger}
}

// Load fetches the orders. On failure the previous data stays in place.
func (b *Board) Load(ctx context.Context) error {
	rows, err := b.source.List(ctx)

	if err == nil {
		b.mu.Lock()
		b.data = rows
		b.mu.Unlock()
	}

	if err != nil {
		b.logger.Error("failed to load orders", zap.Error(err))
		b.notify(Notification{Message: MsgLoadFailed, Color: "danger"})
		return err
	}
	return nil
}

// SetQuery sets the free-text search
func (b *Board) SetQuery(q string) {
	b.mu.Lock()
	b.query = q
	b.mu.Unlock()
}

// SetStatus sets the status filter; empty clears it
func (b *Board) SetStatus(s Status) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
}

// Orders returns every loaded order
func (b *Board) Orders() []Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Order(nil), b.data...)
}

// Visible returns the loaded orders after search and status filtering
func (b *Board) Visible() []Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Filter(b.data, b.query, b.status)
}

// Advance moves the order one step forward. Done orders are left alone
// without a request. Local state changes only after the server accepts.
func (b *Board) Advance(ctx context.Context, id uint) error {
	b.mu.Lock()
	idx := b.indexOf(id)
	if idx < 0 {
		b.mu.Unlock()
		return ErrOrderNotLoaded
	}
	order := b.data[idx]
	b.mu.Unlock()

	next, ok := order.Status.Next()
	if !ok {
		return nil
	}

	sent, err := b.source.ChangeStatus(ctx, order, next)
	if err != nil {
		b.logger.Error("failed to change order status",
			zap.Uint("order_id", id),
			zap.String("to", string(next)),
			zap.Error(err),
		)
		b.notify(Notification{Message: MsgChangeFailed, Color: "danger"})
		return err
	}
	if !sent {
		return nil
	}

	b.mu.Lock()
	// the slice may have been replaced by a Load in the meantime
	if i := b.indexOf(id); i >= 0 {
		b.data[i].Status = next
	}
	b.mu.Unlock()

	msg := MsgCompleted
	if next == StatusProgress {
		msg = MsgInProgress
	}
	b.notify(Notification{Message: msg, Color: next.Color()})
	return nil
}

func (b *Board) indexOf(id uint) int {
	for i := range b.data {
		if b.data[i].ID == id {
			return i
		}
	}
	return -1
}
