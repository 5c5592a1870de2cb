package storesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"storefront/internal/domain/entity"
	"storefront/pkg/logger"
)

const (
	DefaultInterval = 30 * time.Second

	refreshKey = "refresh"
)

var ErrAlreadyStarted = errors.New("synchronizer already started")

type State int

const (
	StateUninitialized State = iota
	StateSyncing
	StateIdle
)

func (s State) String() string {
	switch s {
	case StateSyncing:
		return "syncing"
	case StateIdle:
		return "idle"
	default:
		return "uninitialized"
	}
}

// Snapshot is the whole cached store state. A published snapshot is never
// modified; every sync builds a new one.
type Snapshot struct {
	Products []entity.Product `json:"products"`
	Orders   []entity.Order   `json:"orders"`
	Stats    entity.Stats     `json:"stats"`
	SyncedAt time.Time        `json:"synced_at"`
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Products: []entity.Product{},
		Orders:   []entity.Order{},
	}
}

type Listener func(*Snapshot)

// API is the part of the catalog API the synchronizer uses. *Client
// implements it.
type API interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
	ListOrders(ctx context.Context) ([]entity.Order, error)
	GetStats(ctx context.Context) (entity.Stats, error)
	CreateProduct(ctx context.Context, input ProductInput) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*entity.Product, error)
	UpdateProductStock(ctx context.Context, id string, stock int) (*entity.Product, error)
	CreateOrder(ctx context.Context, input OrderInput) (*entity.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) (*entity.Order, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*entity.Category, error)
	UpdateCategory(ctx context.Context, id string, input CategoryInput) (*entity.Category, error)
}

type subscription struct {
	listener Listener
	active   bool
}

type SyncOption func(*Synchronizer)

// WithInterval sets the background refresh period. cron schedules in whole
// seconds, so anything below one second is raised to one second.
func WithInterval(d time.Duration) SyncOption {
	return func(s *Synchronizer) {
		if d > 0 {
			s.interval = max(d, time.Second)
		}
	}
}

// WithAdminScope makes every sync also fetch orders and stats.
func WithAdminScope(admin bool) SyncOption {
	return func(s *Synchronizer) {
		s.adminScope = admin
	}
}

func WithNotifier(n Notifier) SyncOption {
	return func(s *Synchronizer) {
		if n != nil {
			s.notifier = n
		}
	}
}

// Synchronizer keeps a snapshot of the catalog API, refreshes it on an
// interval and hands every new snapshot to its listeners.
type Synchronizer struct {
	api        API
	notifier   Notifier
	interval   time.Duration
	adminScope bool

	group singleflight.Group

	// publishMu keeps listener dispatch in snapshot order.
	publishMu sync.Mutex

	mu         sync.Mutex
	snapshot   *Snapshot
	synced     bool
	state      State
	running    int
	generation uint64
	subs       []*subscription
	cron       *cron.Cron
	stopped    chan struct{}
}

func NewSynchronizer(api API, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		api:      api,
		notifier: LogNotifier{},
		interval: DefaultInterval,
		snapshot: emptySnapshot(),
		state:    StateUninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synchronizer) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Synchronizer) Interval() time.Duration {
	return s.interval
}

// Subscribe calls listener right away with the current snapshot and then after
// every successful sync. Listeners run in subscription order. A listener must
// not call Subscribe or Refresh synchronously.
func (s *Synchronizer) Subscribe(listener Listener) (unsubscribe func()) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	sub := &subscription{listener: listener, active: true}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	current := s.snapshot
	s.mu.Unlock()

	s.deliver(sub, current)

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(sub) })
	}
}

func (s *Synchronizer) remove(sub *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.active = false
	for i, candidate := range s.subs {
		if candidate == sub {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *Synchronizer) isActive(sub *subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sub.active
}

func (s *Synchronizer) deliver(sub *subscription, snap *Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Snapshot listener panicked: %v", r)
		}
	}()
	sub.listener(snap)
}

func (s *Synchronizer) publish(snap *Snapshot) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	if s.snapshot != snap {
		// a newer snapshot was stored and will be published by its own sync
		s.mu.Unlock()
		return
	}
	subs := make([]*subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		if !s.isActive(sub) {
			continue
		}
		s.deliver(sub, snap)
	}
}

// Refresh syncs now. Callers that arrive while a sync is running share its
// result instead of starting another one.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	ch := s.group.DoChan(refreshKey, func() (interface{}, error) {
		return nil, s.sync(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// forceRefresh starts a new sync even when one is already running. The
// running one is superseded and its result dropped.
func (s *Synchronizer) forceRefresh(ctx context.Context) error {
	s.group.Forget(refreshKey)
	return s.Refresh(ctx)
}

func (s *Synchronizer) beginSync() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.running++
	s.state = StateSyncing
	return s.generation
}

func (s *Synchronizer) endSync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running--
	if s.running > 0 {
		return
	}
	if s.synced {
		s.state = StateIdle
	} else {
		s.state = StateUninitialized
	}
}

func (s *Synchronizer) sync(ctx context.Context) error {
	gen := s.beginSync()
	defer s.endSync()

	started := time.Now()
	snap, err := s.fetch(ctx)
	if err != nil {
		logger.LogSyncError("sync", err)
		return err
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		logger.Debug("Dropping superseded sync result: generation=%d latest=%d", gen, s.generation)
		return nil
	}
	s.snapshot = snap
	s.synced = true
	s.mu.Unlock()

	logger.Debug("Store synced: products=%d orders=%d took=%s", len(snap.Products), len(snap.Orders), time.Since(started))
	s.publish(snap)
	return nil
}

func (s *Synchronizer) fetch(ctx context.Context) (*Snapshot, error) {
	snap := emptySnapshot()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		products, err := s.api.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		if products != nil {
			snap.Products = products
		}
		return nil
	})

	if s.adminScope {
		g.Go(func() error {
			orders, err := s.api.ListOrders(gctx)
			if err != nil {
				return fmt.Errorf("list orders: %w", err)
			}
			if orders != nil {
				snap.Orders = orders
			}
			return nil
		})
		g.Go(func() error {
			stats, err := s.api.GetStats(gctx)
			if err != nil {
				return fmt.Errorf("get stats: %w", err)
			}
			snap.Stats = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.SyncedAt = time.Now().UTC()
	return snap, nil
}

func (s *Synchronizer) notify(level Level, format string, args ...interface{}) {
	s.notifier.Notify(Notification{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		Time:    time.Now().UTC(),
	})
}

// mutate runs call against the API and resyncs on success. A failed call is
// reported and returned with the snapshot left as it was. A failed resync is
// only reported.
func mutate[T any](ctx context.Context, s *Synchronizer, action string, call func(context.Context) (T, error)) (T, error) {
	result, err := call(ctx)
	if err != nil {
		logger.LogSyncError(action, err)
		s.notify(LevelError, "Failed to %s: %v", action, err)
		var zero T
		return zero, fmt.Errorf("%s: %w", action, err)
	}

	if err := s.forceRefresh(ctx); err != nil {
		s.notify(LevelWarning, "Saved, but the store could not be refreshed after %s: %v", action, err)
	}
	return result, nil
}

func (s *Synchronizer) AddProduct(ctx context.Context, input ProductInput) (*entity.Product, error) {
	product, err := mutate(ctx, s, "add product", func(ctx context.Context) (*entity.Product, error) {
		return s.api.CreateProduct(ctx, input)
	})
	if err == nil {
		s.notify(LevelInfo, "Product %q added", product.Name)
	}
	return product, err
}

func (s *Synchronizer) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*entity.Product, error) {
	product, err := mutate(ctx, s, "update product", func(ctx context.Context) (*entity.Product, error) {
		return s.api.UpdateProduct(ctx, id, patch)
	})
	if err == nil {
		s.notify(LevelInfo, "Product %q updated", product.Name)
	}
	return product, err
}

func (s *Synchronizer) UpdateProductStock(ctx context.Context, id string, stock int) (*entity.Product, error) {
	product, err := mutate(ctx, s, "update stock", func(ctx context.Context) (*entity.Product, error) {
		return s.api.UpdateProductStock(ctx, id, stock)
	})
	if err == nil {
		s.notify(LevelInfo, "Stock for %q set to %d", product.Name, product.Stock)
	}
	return product, err
}

func (s *Synchronizer) AddOrder(ctx context.Context, input OrderInput) (*entity.Order, error) {
	order, err := mutate(ctx, s, "place order", func(ctx context.Context) (*entity.Order, error) {
		return s.api.CreateOrder(ctx, input)
	})
	if err == nil {
		s.notify(LevelInfo, "Order %s placed", order.OrderID)
	}
	return order, err
}

func (s *Synchronizer) UpdateOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) (*entity.Order, error) {
	order, err := mutate(ctx, s, "update order status", func(ctx context.Context) (*entity.Order, error) {
		return s.api.UpdateOrderStatus(ctx, orderID, status)
	})
	if err == nil {
		s.notify(LevelInfo, "Order %s is now %s", order.OrderID, order.Status)
	}
	return order, err
}

func (s *Synchronizer) AddCategory(ctx context.Context, input CategoryInput) (*entity.Category, error) {
	category, err := mutate(ctx, s, "add category", func(ctx context.Context) (*entity.Category, error) {
		return s.api.CreateCategory(ctx, input)
	})
	if err == nil {
		s.notify(LevelInfo, "Category %q added", category.Name)
	}
	return category, err
}

func (s *Synchronizer) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*entity.Category, error) {
	category, err := mutate(ctx, s, "update category", func(ctx context.Context) (*entity.Category, error) {
		return s.api.UpdateCategory(ctx, id, input)
	})
	if err == nil {
		s.notify(LevelInfo, "Category %q updated", category.Name)
	}
	return category, err
}

// ListCategories reads straight from the API. Categories are not part of the
// snapshot.
func (s *Synchronizer) ListCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.api.ListCategories(ctx)
	if err != nil {
		logger.LogSyncError("list categories", err)
		s.notify(LevelError, "Failed to load categories: %v", err)
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Start syncs once and then every interval until Stop is called or ctx is
// done. Scheduled syncs never overlap, and their failures are only logged.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.cron != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.scheduledSync(ctx) }); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("schedule sync: %w", err)
	}
	stopped := make(chan struct{})
	s.cron = c
	s.stopped = stopped
	s.mu.Unlock()

	logger.Info("Store synchronizer started: interval=%s admin_scope=%t", s.interval, s.adminScope)
	s.scheduledSync(ctx)

	// Stop may have run during the first sync
	s.mu.Lock()
	if s.cron != c {
		s.mu.Unlock()
		return nil
	}
	c.Start()
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stopped:
		}
	}()

	return nil
}

func (s *Synchronizer) scheduledSync(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	// the error is already logged by sync
	_ = s.Refresh(ctx)
}

// Stop cancels the timer and waits for a running scheduled sync. It is safe to
// call more than once.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	c := s.cron
	stopped := s.stopped
	s.cron = nil
	s.stopped = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	close(stopped)
	<-c.Stop().Done()
	logger.Info("Store synchronizer stopped")
}
