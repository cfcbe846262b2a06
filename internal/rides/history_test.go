package rides

import (
	"context"
	"testing"

	"cabs-service/internal/storage"
)

func TestRenderEmpty(t *testing.T) {
	h := NewHistory(storage.NewGateway(storage.NewMemory()), nil)
	v := h.Render(context.Background())
	if v.Empty != "No rides yet." || len(v.Cards) != 0 {
		t.Fatalf("view = %+v", v)
	}
}

func TestRenderCorruptIsEmpty(t *testing.T) {
	kv := storage.NewMemory()
	_ = kv.Set(context.Background(), storage.KeyRides, "nope")
	v := NewHistory(storage.NewGateway(kv), nil).Render(context.Background())
	if v.Empty != EmptyHistory {
		t.Fatalf("view = %+v", v)
	}
}

func TestRenderCards(t *testing.T) {
	ctx := context.Background()
	g := storage.NewGateway(storage.NewMemory())
	_ = g.SetJSON(ctx, storage.KeyRides, []RideRecord{
		{ID: 2, Start: "Indiranagar", Dest: "Airport", Driver: "Ramesh Kumar", Vehicle: "Prime SUV", Price: 190, Date: "d2", Status: StatusCompleted},
		{ID: 1, Start: "A", Dest: "B", Driver: "Ramesh Kumar", Vehicle: "Bike", Price: 45, Date: "d1", Status: StatusCompleted},
	})

	v := NewHistory(g, nil).Render(ctx)
	if v.Empty != "" || len(v.Cards) != 2 {
		t.Fatalf("view = %+v", v)
	}
	want := HistoryCard{
		Status:  "Completed",
		Title:   "Airport",
		From:    "From: Indiranagar",
		Vehicle: "Vehicle: Prime SUV (₹190)",
		Driver:  "Driver: Ramesh Kumar",
		Date:    "d2",
	}
	if v.Cards[0] != want {
		t.Fatalf("first card = %+v", v.Cards[0])
	}
	if v.Cards[1].Title != "B" {
		t.Fatalf("order = %+v", v.Cards)
	}
}
