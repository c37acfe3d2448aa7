package geo

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultLoadTimeout bounds a single reference load.
const DefaultLoadTimeout = 20 * time.Second

// State describes the lifecycle of the reference index.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Loader fetches entries from a Source and folds them into an Index.
type Loader struct {
	source Source
}

// NewLoader wraps the source.
func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// Load fetches once. Failures yield an empty index together with the error so
// callers can always render the returned index.
func (l *Loader) Load(ctx context.Context) (*Index, error) {
	if l == nil || l.source == nil {
		return Empty(), errors.New("geo: source not configured")
	}
	entries, err := l.source.Fetch(ctx)
	if err != nil {
		return Empty(), err
	}
	return Build(entries), nil
}

// LoadObserver is notified after each completed load.
type LoadObserver func(outcome string, elapsed time.Duration)

// CatalogOption customises a Catalog.
type CatalogOption func(*Catalog)

// WithTimeout overrides DefaultLoadTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) CatalogOption {
	return func(c *Catalog) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger attaches a logger for load outcomes.
func WithLogger(logger *zap.Logger) CatalogOption {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers a callback invoked after every load.
func WithObserver(fn LoadObserver) CatalogOption {
	return func(c *Catalog) {
		c.observer = fn
	}
}

// Catalog owns the reference index for the lifetime of the process.
type Catalog struct {
	loader   *Loader
	timeout  time.Duration
	logger   *zap.Logger
	observer LoadObserver
	group    singleflight.Group
	now      func() time.Time

	mu       sync.RWMutex
	index    *Index
	state    State
	err      error
	inFlight bool
	loadedAt time.Time
}

// NewCatalog constructs an idle catalog backed by the source.
func NewCatalog(source Source, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		loader:  NewLoader(source),
		timeout: DefaultLoadTimeout,
		logger:  zap.NewNop(),
		now:     time.Now,
		index:   Empty(),
		state:   StateIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Load fetches the reference data and replaces the whole index. Calls made
// while a load is in flight wait for that load instead of starting another.
// Cancelling ctx stops the wait, not the shared fetch.
func (c *Catalog) Load(ctx context.Context) (*Index, error) {
	ch := c.group.DoChan("geo", func() (any, error) {
		return c.load(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		idx, _ := res.Val.(*Index)
		if idx == nil {
			idx = Empty()
		}
		return idx, res.Err
	case <-ctx.Done():
		return c.Index(), ctx.Err()
	}
}

// Activate starts a background load when the catalog is idle or failed and
// returns the state observed after the decision.
func (c *Catalog) Activate(ctx context.Context) State {
	c.mu.Lock()
	state := c.state
	if state != StateIdle && state != StateFailed {
		c.mu.Unlock()
		return state
	}
	c.state = StateLoading
	c.mu.Unlock()

	go func() {
		_, _ = c.Load(context.WithoutCancel(ctx))
	}()
	return StateLoading
}

// Reload starts a background load regardless of the current state.
func (c *Catalog) Reload(ctx context.Context) {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()
	go func() {
		_, _ = c.Load(context.WithoutCancel(ctx))
	}()
}

func (c *Catalog) load(ctx context.Context) (*Index, error) {
	c.mu.Lock()
	c.inFlight = true
	c.state = StateLoading
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := c.now()
	idx, err := c.loader.Load(ctx)
	elapsed := c.now().Sub(started)

	c.mu.Lock()
	c.index = idx
	c.err = err
	c.inFlight = false
	if err != nil {
		c.state = StateFailed
	} else {
		c.state = StateReady
		c.loadedAt = c.now()
	}
	c.mu.Unlock()

	outcome := "success"
	if err != nil {
		outcome = "failure"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		c.logger.Warn("geo reference load failed", zap.Error(err), zap.Duration("elapsed", elapsed))
	} else {
		c.logger.Info("geo reference loaded", zap.Int("districts", idx.Len()), zap.Duration("elapsed", elapsed))
	}
	if c.observer != nil {
		c.observer(outcome, elapsed)
	}
	return idx, err
}

// Index returns the most recently assigned index. It is never nil.
func (c *Catalog) Index() *Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// State reports the lifecycle state.
func (c *Catalog) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Err returns the error of the last completed load.
func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// InFlight reports whether a fetch is currently running.
func (c *Catalog) InFlight() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inFlight
}

// LoadedAt returns the completion time of the last successful load.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
