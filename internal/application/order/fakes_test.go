package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/Pedidos-api/internal/domain"
	"github.com/jhoicas/Pedidos-api/internal/domain/entity"
	"github.com/jhoicas/Pedidos-api/internal/domain/repository"
)

var errNotSupported = errors.New("no soportado en memLedger")

// memRow fila de products con su bloqueo exclusivo.
type memRow struct {
	lock  sync.Mutex
	stock int64
}

// memLedger implementa TxRunner en memoria con semántica de SELECT FOR UPDATE:
// el bloqueo de fila se mantiene hasta Commit/Rollback y las escrituras solo se ven tras Commit.
type memLedger struct {
	mu     sync.Mutex
	rows   map[int64]*memRow
	orders []*entity.Order
	nextID int64

	runs atomic.Int32

	failInsert  error
	failCommit  error
	afterCommit func()
}

func newMemLedger(stocks map[int64]int64) *memLedger {
	l := &memLedger{rows: make(map[int64]*memRow)}
	for id, s := range stocks {
		l.rows[id] = &memRow{stock: s}
	}
	return l
}

func (l *memLedger) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	l.runs.Add(1)
	tx := &memTx{ledger: l, locked: map[int64]*memRow{}, stock: map[int64]int64{}}
	defer tx.release()

	if err := fn(&memProductRepo{tx: tx}, &memOrderRepo{tx: tx}); err != nil {
		return err
	}
	if l.failCommit != nil {
		return fmt.Errorf("commit transaction: %w: %w", domain.ErrTransaction, l.failCommit)
	}
	tx.commit()
	if l.afterCommit != nil {
		l.afterCommit()
	}
	return nil
}

// holdLock bloquea la fila desde fuera, como otra transacción en curso.
func (l *memLedger) holdLock(id int64) (release func()) {
	row := l.rows[id]
	row.lock.Lock()
	return row.lock.Unlock
}

func (l *memLedger) stockOf(id int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows[id].stock
}

func (l *memLedger) committedOrders() []*entity.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*entity.Order, len(l.orders))
	copy(out, l.orders)
	return out
}

func (l *memLedger) hasOrder(id int64) bool {
	for _, o := range l.committedOrders() {
		if o.ID == id {
			return true
		}
	}
	return false
}

type memTx struct {
	ledger *memLedger
	locked map[int64]*memRow
	stock  map[int64]int64
	orders []*entity.Order
}

func (tx *memTx) lockRow(ctx context.Context, id int64) (*memRow, error) {
	if row, ok := tx.locked[id]; ok {
		return row, nil
	}
	tx.ledger.mu.Lock()
	row := tx.ledger.rows[id]
	tx.ledger.mu.Unlock()
	if row == nil {
		return nil, nil
	}
	for !row.lock.TryLock() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("get product for update: %w: %w", domain.ErrTimeout, ctx.Err())
		case <-time.After(200 * time.Microsecond):
		}
	}
	tx.locked[id] = row
	return row, nil
}

func (tx *memTx) commit() {
	l := tx.ledger
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, s := range tx.stock {
		l.rows[id].stock = s
	}
	l.orders = append(l.orders, tx.orders...)
}

func (tx *memTx) release() {
	for _, row := range tx.locked {
		row.lock.Unlock()
	}
	tx.locked = nil
}

type memProductRepo struct {
	tx *memTx
}

func (r *memProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	row, err := r.tx.lockRow(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	stock, ok := r.tx.stock[id]
	if !ok {
		r.tx.ledger.mu.Lock()
		stock = row.stock
		r.tx.ledger.mu.Unlock()
	}
	return &entity.Product{ID: id, Stock: stock}, nil
}

func (r *memProductRepo) UpdateStock(_ context.Context, id int64, stock int64) error {
	if _, ok := r.tx.locked[id]; !ok {
		return errors.New("update sin bloqueo de fila")
	}
	if stock < 0 {
		return fmt.Errorf("update stock: %w: check constraint products_stock_check", domain.ErrTransaction)
	}
	r.tx.stock[id] = stock
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	l := r.tx.ledger
	l.mu.Lock()
	defer l.mu.Unlock()
	row := l.rows[id]
	if row == nil {
		return nil, nil
	}
	return &entity.Product{ID: id, Stock: row.stock}, nil
}

func (r *memProductRepo) Create(context.Context, *entity.Product) error { return errNotSupported }
func (r *memProductRepo) Update(context.Context, *entity.Product) error { return errNotSupported }
func (r *memProductRepo) Delete(context.Context, int64) error           { return errNotSupported }
func (r *memProductRepo) List(context.Context, int, int) ([]*entity.Product, error) {
	return nil, errNotSupported
}

type memOrderRepo struct {
	tx *memTx
}

func (r *memOrderRepo) Create(_ context.Context, o *entity.Order) error {
	l := r.tx.ledger
	if l.failInsert != nil {
		return fmt.Errorf("insert order: %w: %w", domain.ErrTransaction, l.failInsert)
	}
	l.mu.Lock()
	l.nextID++
	o.ID = l.nextID
	l.mu.Unlock()
	o.CreatedAt = time.Now()
	r.tx.orders = append(r.tx.orders, o)
	return nil
}

func (r *memOrderRepo) GetByID(context.Context, int64) (*entity.Order, error) {
	return nil, errNotSupported
}

func (r *memOrderRepo) List(context.Context, int, int) ([]*entity.Order, error) {
	return nil, errNotSupported
}

// fakeDispatcher registra los IDs encolados.
type fakeDispatcher struct {
	mu        sync.Mutex
	ids       []int64
	err       error
	onEnqueue func(ctx context.Context, orderID int64)
}

func (d *fakeDispatcher) Enqueue(ctx context.Context, orderID int64) error {
	if d.onEnqueue != nil {
		d.onEnqueue(ctx, orderID)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, orderID)
	return d.err
}

func (d *fakeDispatcher) enqueued() []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]int64, len(d.ids))
	copy(out, d.ids)
	return out
}
