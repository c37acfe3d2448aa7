package cabys

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/D4r2k0Ursoth/ManagerSyncDesarrollo/internal/admin/catalog"
)

// Library keeps the preloaded catalogue items. A successful preload is kept
// until Refresh; failures are retried on the next Items call.
type Library struct {
	service Service
	timeout time.Duration
	group   singleflight.Group

	mu       sync.RWMutex
	items    []catalog.Item
	loaded   bool
	loadedAt time.Time
	lastErr  error
}

// NewLibrary wraps service. A non-positive timeout means no extra bound.
func NewLibrary(service Service, timeout time.Duration) *Library {
	return &Library{service: service, timeout: timeout}
}

// Items returns the preloaded items, loading them on first use.
// The returned slice must not be modified.
func (l *Library) Items(ctx context.Context) ([]catalog.Item, error) {
	l.mu.RLock()
	if l.loaded {
		items := l.items
		l.mu.RUnlock()
		return items, nil
	}
	l.mu.RUnlock()
	return l.load(ctx)
}

// Refresh drops the cached items and loads them again.
func (l *Library) Refresh(ctx context.Context) ([]catalog.Item, error) {
	l.mu.Lock()
	l.loaded = false
	l.items = nil
	l.mu.Unlock()
	return l.load(ctx)
}

// LoadedAt reports when the items were last loaded.
func (l *Library) LoadedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loadedAt
}

// Status reports the cached item count and the error of the last preload
// without triggering a load.
func (l *Library) Status() (items int, loadedAt time.Time, err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items), l.loadedAt, l.lastErr
}

func (l *Library) load(ctx context.Context) ([]catalog.Item, error) {
	v, err, _ := l.group.Do("preload", func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		if l.timeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, l.timeout)
			defer cancel()
		}
		items, err := l.service.Preload(loadCtx)
		l.mu.Lock()
		defer l.mu.Unlock()
		l.lastErr = err
		if err != nil {
			return nil, err
		}
		l.items = items
		l.loaded = true
		l.loadedAt = time.Now()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	items, _ := v.([]catalog.Item)
	return items, nil
}
