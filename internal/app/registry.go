package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"cabs-service/internal/observability"
	"cabs-service/internal/storage"
)

// Registry holds one App per device.
type Registry struct {
	mu     sync.RWMutex
	apps   map[string]*App
	stores storage.Factory
	opts   Options
	log    *slog.Logger
}

// NewRegistry creates a registry whose apps persist through stores.
func NewRegistry(stores storage.Factory, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Registry{
		apps:   make(map[string]*App),
		stores: stores,
		opts:   opts,
		log:    opts.Logger.With("component", "app"),
	}
}

// Create registers a new device and bootstraps its app.
func (r *Registry) Create(ctx context.Context) (*App, error) {
	return r.open(ctx, uuid.NewString())
}

// Get returns the device's app, reopening it from its store when the
// process has restarted since the device was issued.
func (r *Registry) Get(ctx context.Context, id string) (*App, error) {
	if a, ok := r.Lookup(id); ok {
		return a, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}
	return r.open(ctx, id)
}

// Lookup returns a live app without reopening.
func (r *Registry) Lookup(id string) (*App, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apps[id]
	return a, ok
}

func (r *Registry) open(ctx context.Context, id string) (*App, error) {
	a, err := New(ctx, id, r.stores(id), r.opts)
	if err != nil {
		return nil, fmt.Errorf("open device %s: %w", id, err)
	}

	r.mu.Lock()
	if existing, ok := r.apps[id]; ok {
		r.mu.Unlock()
		a.Close()
		return existing, nil
	}
	r.apps[id] = a
	n := len(r.apps)
	r.mu.Unlock()

	observability.DevicesActive.Set(float64(n))
	r.log.Info("device opened", "device_id", id, "devices", n)
	return a, nil
}

// Len reports how many devices are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.apps)
}

// Close stops every app's pending transitions.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		a.Close()
	}
}
