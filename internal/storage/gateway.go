package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Persisted keys.
const (
	KeySession = "cabs_user"
	KeyContact = "cabs_contact"
	KeyRides   = "cabs_rides"
)

// ErrCorruptData marks a stored value that no longer decodes.
var ErrCorruptData = errors.New("persisted data corrupt")

// Gateway reads and writes the app's persisted values on top of a KV.
type Gateway struct {
	kv KV
}

func NewGateway(kv KV) *Gateway { return &Gateway{kv: kv} }

// GetString returns a raw value.
func (g *Gateway) GetString(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := g.kv.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, ok, nil
}

// SetString stores a raw value.
func (g *Gateway) SetString(ctx context.Context, key, value string) error {
	if err := g.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes the value at key into v. A present value that fails to
// decode returns an error wrapping ErrCorruptData with ok=true.
func (g *Gateway) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := g.GetString(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrCorruptData, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func (g *Gateway) SetJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return g.SetString(ctx, key, string(b))
}

func (g *Gateway) Remove(ctx context.Context, key string) error {
	if err := g.kv.Remove(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Clear drops everything the device has stored.
func (g *Gateway) Clear(ctx context.Context) error {
	if err := g.kv.Clear(ctx); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	return nil
}
