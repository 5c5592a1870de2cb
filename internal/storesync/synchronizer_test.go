package storesync

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/entity"
	"storefront/pkg/logger"
)

var errUnavailable = errors.New("connection refused")

type fakeAPI struct {
	mu        sync.Mutex
	products  []entity.Product
	fail      error
	failWrite error

	listCalls  atomic.Int32
	orderCalls atomic.Int32
	statsCalls atomic.Int32

	// when set, ListProducts reports on started and waits on release
	gate chan chan []entity.Product
}

func (f *fakeAPI) setProducts(products ...entity.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = products
}

func (f *fakeAPI) ListProducts(ctx context.Context) ([]entity.Product, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	gate := f.gate
	fail := f.fail
	products := f.products
	f.mu.Unlock()

	if gate != nil {
		release := make(chan []entity.Product)
		gate <- release
		products = <-release
	}
	if fail != nil {
		return nil, fail
	}
	return products, nil
}

func (f *fakeAPI) ListOrders(ctx context.Context) ([]entity.Order, error) {
	f.orderCalls.Add(1)
	return []entity.Order{{OrderID: "ORD-00000001", Status: entity.OrderStatusPending}}, nil
}

func (f *fakeAPI) GetStats(ctx context.Context) (entity.Stats, error) {
	f.statsCalls.Add(1)
	return entity.Stats{TotalOrders: 1}, nil
}

func (f *fakeAPI) CreateProduct(ctx context.Context, input ProductInput) (*entity.Product, error) {
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	p := entity.Product{ID: "new", Name: input.Name, Price: input.Price}
	f.mu.Lock()
	f.products = append(append([]entity.Product{}, f.products...), p)
	f.mu.Unlock()
	return &p, nil
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*entity.Product, error) {
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	return &entity.Product{ID: id}, nil
}

func (f *fakeAPI) UpdateProductStock(ctx context.Context, id string, stock int) (*entity.Product, error) {
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	return &entity.Product{ID: id, Stock: stock}, nil
}

func (f *fakeAPI) CreateOrder(ctx context.Context, input OrderInput) (*entity.Order, error) {
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	return &entity.Order{OrderID: "ORD-ABCDEF12", Status: entity.OrderStatusPending}, nil
}

func (f *fakeAPI) UpdateOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) (*entity.Order, error) {
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	return &entity.Order{OrderID: orderID, Status: status}, nil
}

func (f *fakeAPI) ListCategories(ctx context.Context) ([]entity.Category, error) {
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	return []entity.Category{{Slug: "electronics"}}, nil
}

func (f *fakeAPI) CreateCategory(ctx context.Context, input CategoryInput) (*entity.Category, error) {
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	return &entity.Category{Name: input.Name}, nil
}

func (f *fakeAPI) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*entity.Category, error) {
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	return &entity.Category{ID: id, Name: input.Name}, nil
}

type recorder struct {
	mu    sync.Mutex
	snaps []*Snapshot
}

func (r *recorder) listen(s *Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *recorder) last() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

type notifications struct {
	mu  sync.Mutex
	all []Notification
}

func (n *notifications) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.all = append(n.all, note)
}

func (n *notifications) levels() []Level {
	n.mu.Lock()
	defer n.mu.Unlock()
	levels := make([]Level, len(n.all))
	for i, note := range n.all {
		levels[i] = note.Level
	}
	return levels
}

func init() {
	logger.SetOutput(io.Discard)
}

func TestSubscribeCallsListenerWithCurrentSnapshot(t *testing.T) {
	s := NewSynchronizer(&fakeAPI{})
	assert.Equal(t, StateUninitialized, s.State())

	var rec recorder
	unsubscribe := s.Subscribe(rec.listen)
	defer unsubscribe()

	require.Equal(t, 1, rec.count())
	assert.Same(t, s.Snapshot(), rec.last())
	assert.Empty(t, rec.last().Products)
}

func TestRefreshNotifiesEveryListenerWithSameSnapshot(t *testing.T) {
	api := &fakeAPI{}
	api.setProducts(entity.Product{ID: "p1", Name: "Lamp"})
	s := NewSynchronizer(api)

	var first, second recorder
	s.Subscribe(first.listen)
	s.Subscribe(second.listen)

	require.NoError(t, s.Refresh(context.Background()))

	require.Equal(t, 2, first.count())
	require.Equal(t, 2, second.count())
	assert.Same(t, first.last(), second.last())
	assert.Equal(t, []entity.Product{{ID: "p1", Name: "Lamp"}}, first.last().Products)
	assert.Equal(t, StateIdle, s.State())
}

func TestListenersRunInSubscriptionOrder(t *testing.T) {
	s := NewSynchronizer(&fakeAPI{})

	var order []int
	s.Subscribe(func(*Snapshot) { order = append(order, 1) })
	s.Subscribe(func(*Snapshot) { order = append(order, 2) })
	s.Subscribe(func(*Snapshot) { order = append(order, 3) })
	order = nil

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestUnsubscribedListenerIsNotCalled(t *testing.T) {
	s := NewSynchronizer(&fakeAPI{})

	var rec recorder
	unsubscribe := s.Subscribe(rec.listen)
	unsubscribe()
	unsubscribe()

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 1, rec.count())
}

func TestListenerUnsubscribedDuringDispatchIsSkipped(t *testing.T) {
	s := NewSynchronizer(&fakeAPI{})

	var rec recorder
	var unsubscribeSecond func()
	s.Subscribe(func(*Snapshot) {
		if unsubscribeSecond != nil {
			unsubscribeSecond()
		}
	})
	unsubscribeSecond = s.Subscribe(rec.listen)

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 1, rec.count())
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	s := NewSynchronizer(&fakeAPI{})

	s.Subscribe(func(*Snapshot) { panic("boom") })
	var rec recorder
	s.Subscribe(rec.listen)

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 2, rec.count())
}

func TestFailedSyncKeepsSnapshot(t *testing.T) {
	api := &fakeAPI{}
	api.setProducts(entity.Product{ID: "p1"})
	s := NewSynchronizer(api)
	require.NoError(t, s.Refresh(context.Background()))
	good := s.Snapshot()

	var rec recorder
	s.Subscribe(rec.listen)

	api.mu.Lock()
	api.fail = errUnavailable
	api.mu.Unlock()

	err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, errUnavailable)
	assert.Same(t, good, s.Snapshot())
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, StateIdle, s.State())
}

func TestFirstFailedSyncStaysUninitialized(t *testing.T) {
	s := NewSynchronizer(&fakeAPI{fail: errUnavailable})
	assert.Error(t, s.Refresh(context.Background()))
	assert.Equal(t, StateUninitialized, s.State())
}

func TestAdminScopeFetchesOrdersAndStats(t *testing.T) {
	api := &fakeAPI{}
	s := NewSynchronizer(api, WithAdminScope(true))
	require.NoError(t, s.Refresh(context.Background()))

	snap := s.Snapshot()
	assert.Len(t, snap.Orders, 1)
	assert.Equal(t, 1, snap.Stats.TotalOrders)

	customer := NewSynchronizer(api)
	require.NoError(t, customer.Refresh(context.Background()))
	assert.Empty(t, customer.Snapshot().Orders)
	assert.Equal(t, int32(1), api.orderCalls.Load())
	assert.Equal(t, int32(1), api.statsCalls.Load())
}

func TestConcurrentRefreshSharesOneSync(t *testing.T) {
	api := &fakeAPI{gate: make(chan chan []entity.Product)}
	s := NewSynchronizer(api)

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	refresh := func() {
		defer wg.Done()
		errs <- s.Refresh(context.Background())
	}

	wg.Add(1)
	go refresh()
	release := <-api.gate
	assert.Equal(t, StateSyncing, s.State())

	wg.Add(2)
	go refresh()
	go refresh()
	time.Sleep(100 * time.Millisecond)

	release <- []entity.Product{{ID: "p1"}}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), api.listCalls.Load())
	assert.Len(t, s.Snapshot().Products, 1)
}

func TestSupersededSyncResultIsDropped(t *testing.T) {
	api := &fakeAPI{gate: make(chan chan []entity.Product)}
	s := NewSynchronizer(api)

	var rec recorder
	s.Subscribe(rec.listen)

	stale := make(chan error, 1)
	go func() { stale <- s.Refresh(context.Background()) }()
	staleRelease := <-api.gate

	added := make(chan error, 1)
	go func() {
		_, err := s.AddProduct(context.Background(), ProductInput{Name: "Lamp"})
		added <- err
	}()
	freshRelease := <-api.gate

	freshRelease <- []entity.Product{{ID: "fresh"}}
	require.NoError(t, <-added)

	staleRelease <- []entity.Product{{ID: "stale"}}
	require.NoError(t, <-stale)

	assert.Equal(t, []entity.Product{{ID: "fresh"}}, s.Snapshot().Products)
	assert.Equal(t, []entity.Product{{ID: "fresh"}}, rec.last().Products)
	assert.Equal(t, 2, rec.count())
}

func TestMutationResyncsBeforeReturning(t *testing.T) {
	api := &fakeAPI{}
	notes := &notifications{}
	s := NewSynchronizer(api, WithNotifier(notes))

	var rec recorder
	s.Subscribe(rec.listen)

	product, err := s.AddProduct(context.Background(), ProductInput{Name: "Lamp", Price: 20})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", product.Name)

	require.Equal(t, 2, rec.count())
	require.Len(t, rec.last().Products, 1)
	assert.Equal(t, "Lamp", rec.last().Products[0].Name)
	assert.Equal(t, []Level{LevelInfo}, notes.levels())
}

func TestFailedMutationNotifiesAndKeepsSnapshot(t *testing.T) {
	api := &fakeAPI{failWrite: &APIError{Status: 409, Code: "CONFLICT", Message: "Insufficient stock"}}
	notes := &notifications{}
	s := NewSynchronizer(api, WithNotifier(notes))
	before := s.Snapshot()

	var rec recorder
	s.Subscribe(rec.listen)

	_, err := s.AddOrder(context.Background(), OrderInput{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 409, apiErr.Status)

	assert.Same(t, before, s.Snapshot())
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, int32(0), api.listCalls.Load())
	assert.Equal(t, []Level{LevelError}, notes.levels())
}

func TestMutationWithFailedResyncWarns(t *testing.T) {
	api := &fakeAPI{fail: errUnavailable}
	notes := &notifications{}
	s := NewSynchronizer(api, WithNotifier(notes))

	order, err := s.UpdateOrderStatus(context.Background(), "ORD-1", entity.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, order.Status)
	assert.Equal(t, []Level{LevelWarning, LevelInfo}, notes.levels())
}

func TestEveryMutationResyncs(t *testing.T) {
	api := &fakeAPI{}
	s := NewSynchronizer(api)
	ctx := context.Background()

	_, err := s.UpdateProduct(ctx, "p1", ProductPatch{})
	require.NoError(t, err)
	_, err = s.UpdateProductStock(ctx, "p1", 3)
	require.NoError(t, err)
	_, err = s.AddCategory(ctx, CategoryInput{Name: "Lamps"})
	require.NoError(t, err)
	_, err = s.UpdateCategory(ctx, "c1", CategoryInput{Name: "Lights"})
	require.NoError(t, err)

	assert.Equal(t, int32(4), api.listCalls.Load())

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
	assert.Equal(t, int32(4), api.listCalls.Load())
}

func TestStartSyncsImmediatelyAndStopIsIdempotent(t *testing.T) {
	api := &fakeAPI{}
	s := NewSynchronizer(api, WithInterval(time.Hour))

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, int32(1), api.listCalls.Load())
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)

	s.Stop()
	s.Stop()

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	assert.Equal(t, int32(2), api.listCalls.Load())
}

func TestTimerSyncsOnInterval(t *testing.T) {
	api := &fakeAPI{}
	s := NewSynchronizer(api, WithInterval(time.Second))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return api.listCalls.Load() >= 2
	}, 5*time.Second, 50*time.Millisecond)
}

func TestCancelledContextStopsTimer(t *testing.T) {
	api := &fakeAPI{}
	s := NewSynchronizer(api, WithInterval(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.cron == nil
	}, 2*time.Second, 10*time.Millisecond)

	calls := api.listCalls.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, calls, api.listCalls.Load())
}

func TestStopDuringFirstSyncCancelsTimer(t *testing.T) {
	api := &fakeAPI{gate: make(chan chan []entity.Product)}
	s := NewSynchronizer(api, WithInterval(time.Second))

	started := make(chan error, 1)
	go func() { started <- s.Start(context.Background()) }()

	release := <-api.gate
	s.Stop()

	api.mu.Lock()
	api.gate = nil
	api.mu.Unlock()
	release <- []entity.Product{{ID: "p1"}}
	require.NoError(t, <-started)

	time.Sleep(2500 * time.Millisecond)
	assert.Equal(t, int32(1), api.listCalls.Load())

	s.mu.Lock()
	assert.Nil(t, s.cron)
	s.mu.Unlock()
}

func TestWithIntervalFloorsAtOneSecond(t *testing.T) {
	s := NewSynchronizer(&fakeAPI{}, WithInterval(10*time.Millisecond))
	assert.Equal(t, time.Second, s.Interval())

	s = NewSynchronizer(&fakeAPI{}, WithInterval(0))
	assert.Equal(t, DefaultInterval, s.Interval())
}
