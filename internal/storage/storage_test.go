package storage

import (
	"context"
	"errors"
	"testing"
)

// fakeHashes implements HashStore over nested maps.
type fakeHashes struct {
	data   map[string]map[string]string
	failOn string
}

func newFakeHashes() *fakeHashes {
	return &fakeHashes{data: make(map[string]map[string]string)}
}

func (f *fakeHashes) HGet(_ context.Context, key, field string) (string, bool, error) {
	if f.failOn == "hget" {
		return "", false, errors.New("hget fail")
	}
	v, ok := f.data[key][field]
	return v, ok, nil
}

func (f *fakeHashes) HSet(_ context.Context, key, field, value string) error {
	if f.failOn == "hset" {
		return errors.New("hset fail")
	}
	if f.data[key] == nil {
		f.data[key] = make(map[string]string)
	}
	f.data[key][field] = value
	return nil
}

func (f *fakeHashes) HDel(_ context.Context, key, field string) error {
	delete(f.data[key], field)
	return nil
}

func (f *fakeHashes) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func TestMemoryGetSetRemoveClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, _ := m.Get(ctx, KeySession); ok {
		t.Fatal("empty store reported a value")
	}
	_ = m.Set(ctx, KeySession, "9876543210")
	_ = m.Set(ctx, KeyContact, `{"name":"A","number":"1"}`)
	if v, ok, _ := m.Get(ctx, KeySession); !ok || v != "9876543210" {
		t.Fatalf("get = %q,%v", v, ok)
	}
	_ = m.Remove(ctx, KeySession)
	if _, ok, _ := m.Get(ctx, KeySession); ok {
		t.Fatal("value survived Remove")
	}
	_ = m.Clear(ctx)
	if m.Len() != 0 {
		t.Fatalf("len after Clear = %d", m.Len())
	}
}

func TestMemoryFactoryKeepsDevicesApart(t *testing.T) {
	ctx := context.Background()
	open := MemoryFactory()

	_ = open("a").Set(ctx, KeySession, "1111111111")
	if _, ok, _ := open("b").Get(ctx, KeySession); ok {
		t.Fatal("device b sees device a's session")
	}
	if v, _, _ := open("a").Get(ctx, KeySession); v != "1111111111" {
		t.Fatalf("device a lost its session, got %q", v)
	}
}

func TestRedisKVScopesByDevice(t *testing.T) {
	ctx := context.Background()
	hs := newFakeHashes()
	a := NewRedis(hs, "a")
	b := NewRedis(hs, "b")

	_ = a.Set(ctx, KeySession, "1")
	_ = b.Set(ctx, KeySession, "2")
	_ = a.Set(ctx, KeyRides, "[]")

	if v, _, _ := a.Get(ctx, KeySession); v != "1" {
		t.Fatalf("a session = %q", v)
	}
	if err := a.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := a.Get(ctx, KeyRides); ok {
		t.Fatal("Clear left a key behind")
	}
	if v, _, _ := b.Get(ctx, KeySession); v != "2" {
		t.Fatal("Clear on a touched b")
	}
	if _, ok := hs.data["device:b:storage"]; !ok {
		t.Fatal("unexpected hash key layout")
	}
}

func TestGatewayJSONRoundTripAndCorruption(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(NewMemory())

	type contact struct {
		Name   string `json:"name"`
		Number string `json:"number"`
	}

	var c contact
	ok, err := g.GetJSON(ctx, KeyContact, &c)
	if ok || err != nil {
		t.Fatalf("absent key: ok=%v err=%v", ok, err)
	}

	if err := g.SetJSON(ctx, KeyContact, contact{"Asha", "999"}); err != nil {
		t.Fatal(err)
	}
	ok, err = g.GetJSON(ctx, KeyContact, &c)
	if !ok || err != nil || c.Name != "Asha" {
		t.Fatalf("round trip: ok=%v err=%v c=%+v", ok, err, c)
	}

	_ = g.SetString(ctx, KeyContact, "{not json")
	ok, err = g.GetJSON(ctx, KeyContact, &c)
	if !ok || !errors.Is(err, ErrCorruptData) {
		t.Fatalf("corrupt value: ok=%v err=%v", ok, err)
	}
}

func TestGatewayWrapsBackendErrors(t *testing.T) {
	ctx := context.Background()
	hs := newFakeHashes()
	hs.failOn = "hset"
	g := NewGateway(NewRedis(hs, "x"))

	if err := g.SetString(ctx, KeySession, "1"); err == nil {
		t.Fatal("expected error from failing backend")
	}
	if errors.Is(g.SetString(ctx, KeySession, "1"), ErrCorruptData) {
		t.Fatal("backend failure must not look like corruption")
	}
}
