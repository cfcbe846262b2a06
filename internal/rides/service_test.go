package rides

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"cabs-service/internal/storage"
	"cabs-service/internal/views"
)

type badgeSpy struct{ synced int }

func (s *badgeSpy) SyncBadge() { s.synced++ }

var fixedNow = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

func newBooking() (*Booking, *State, *storage.Memory, *badgeSpy) {
	st := NewState()
	kv := storage.NewMemory()
	spy := &badgeSpy{}
	b := NewBooking(&st, storage.NewGateway(kv), spy, Options{
		Rand: rand.New(rand.NewSource(7)),
		Now:  func() time.Time { return fixedNow },
	})
	return b, &st, kv, spy
}

func TestFindDriverRequiresBothFields(t *testing.T) {
	for _, in := range [][2]string{{"", ""}, {"MG Road", ""}, {"", "Airport"}} {
		b, st, _, _ := newBooking()
		var verr *views.ValidationError
		if err := b.FindDriver(in[0], in[1]); !errors.As(err, &verr) {
			t.Fatalf("%v: err = %v", in, err)
		}
		if verr.Message != "Please enter both pickup and destination" {
			t.Fatalf("message = %q", verr.Message)
		}
		if st.Step != StepInput || len(st.Cards) != 0 {
			t.Fatalf("%v: state = %+v", in, st)
		}
	}
}

func TestFindDriverRendersCatalog(t *testing.T) {
	b, st, _, _ := newBooking()
	if err := b.FindDriver("MG Road", "Airport"); err != nil {
		t.Fatal(err)
	}
	if st.Step != StepVehicles || st.Ride.Start != "MG Road" || st.Ride.Dest != "Airport" {
		t.Fatalf("state = %+v", st)
	}
	if len(st.Cards) != 4 {
		t.Fatalf("cards = %d", len(st.Cards))
	}
	if c := st.Cards[0]; c.Name != "Bike" || c.Detail != "ETA: 2 min • Beat the traffic" || c.Price != "₹45" {
		t.Fatalf("first card = %+v", c)
	}
	if st.ConfirmEnabled || st.ConfirmLabel != "Confirm Booking" {
		t.Fatalf("confirm = %v %q", st.ConfirmEnabled, st.ConfirmLabel)
	}
}

func TestSelectVehicleMarksExactlyOne(t *testing.T) {
	b, st, _, _ := newBooking()
	_ = b.FindDriver("A", "B")

	if err := b.SelectVehicle("bike"); err != nil {
		t.Fatal(err)
	}
	if err := b.SelectVehicle("mini"); err != nil {
		t.Fatal(err)
	}
	selected := 0
	for _, c := range st.Cards {
		if c.Selected {
			selected++
			if c.ID != "mini" {
				t.Fatalf("selected %s", c.ID)
			}
		}
	}
	if selected != 1 {
		t.Fatalf("%d cards selected", selected)
	}
	if st.Ride.Vehicle != "Mini" || st.Ride.Price != 120 {
		t.Fatalf("ride = %+v", st.Ride)
	}
	if !st.ConfirmEnabled || st.ConfirmLabel != "Confirm Mini" {
		t.Fatalf("confirm = %v %q", st.ConfirmEnabled, st.ConfirmLabel)
	}

	var verr *views.ValidationError
	if err := b.SelectVehicle("rocket"); !errors.As(err, &verr) {
		t.Fatalf("unknown vehicle: %v", err)
	}
}

func TestFindDriverAgainResetsSelection(t *testing.T) {
	b, st, _, _ := newBooking()
	_ = b.FindDriver("A", "B")
	_ = b.SelectVehicle("prime")
	_ = b.Back()
	_ = b.FindDriver("A", "C")

	if st.Ride.VehicleID != "" || st.ConfirmEnabled || st.ConfirmLabel != "Confirm Booking" {
		t.Fatalf("selection survived: %+v", st)
	}
	for _, c := range st.Cards {
		if c.Selected {
			t.Fatalf("card %s still selected", c.ID)
		}
	}
}

func TestBackKeepsRoute(t *testing.T) {
	b, st, _, _ := newBooking()
	if err := b.Back(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("Back at input: %v", err)
	}
	_ = b.FindDriver("A", "B")
	if err := b.Back(); err != nil {
		t.Fatal(err)
	}
	if st.Step != StepInput || st.Ride.Start != "A" || st.Ride.Dest != "B" {
		t.Fatalf("state = %+v", st)
	}
}

func TestConfirmAssignsMockDriver(t *testing.T) {
	b, st, _, spy := newBooking()
	_ = b.FindDriver("A", "B")

	var verr *views.ValidationError
	if err := b.Confirm(); !errors.As(err, &verr) {
		t.Fatalf("confirm without selection: %v", err)
	}
	if st.Step != StepVehicles {
		t.Fatalf("step = %s", st.Step)
	}

	_ = b.SelectVehicle("auto")
	if err := b.Confirm(); err != nil {
		t.Fatal(err)
	}
	if st.Step != StepLive {
		t.Fatalf("step = %s", st.Step)
	}
	d := st.Ride.Driver
	if d == nil || d.Name != "Ramesh Kumar" || d.Rating != 4.8 {
		t.Fatalf("driver = %+v", d)
	}
	car := regexp.MustCompile(`^(Swift Dzire|Toyota Etios|Hyundai Xcent|Honda Amaze) • KA 01 AB [1-9]\d{3}$`)
	if !car.MatchString(d.Car) {
		t.Fatalf("car = %q", d.Car)
	}
	if spy.synced != 1 {
		t.Fatalf("badge synced %d times", spy.synced)
	}
}

func TestEndRidePrependsAndResets(t *testing.T) {
	b, st, kv, _ := newBooking()
	ctx := context.Background()

	book := func(start, dest, vehicle string) RideRecord {
		t.Helper()
		_ = b.FindDriver(start, dest)
		_ = b.SelectVehicle(vehicle)
		_ = b.Confirm()
		rec, err := b.EndRide(ctx)
		if err != nil {
			t.Fatal(err)
		}
		return rec
	}

	first := book("A", "B", "mini")
	if first.ID != fixedNow.UnixMilli() || first.Status != "Completed" || first.Driver != "Ramesh Kumar" {
		t.Fatalf("record = %+v", first)
	}
	if first.Date != "3/5/2024, 2:07:09 PM" {
		t.Fatalf("date = %q", first.Date)
	}
	if st.Message != "Ride Completed! Paid ₹120." {
		t.Fatalf("message = %q", st.Message)
	}
	if st.Step != StepInput || st.Ride != (CurrentRide{}) || st.ConfirmLabel != "Confirm Booking" {
		t.Fatalf("state not reset: %+v", st)
	}

	book("C", "D", "bike")
	list, err := NewHistory(storage.NewGateway(kv), nil).Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Dest != "D" || list[1].Dest != "B" {
		t.Fatalf("history = %+v", list)
	}
}

func TestEndRideOutsideLiveStep(t *testing.T) {
	b, _, kv, _ := newBooking()
	if _, err := b.EndRide(context.Background()); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("err = %v", err)
	}
	if kv.Len() != 0 {
		t.Fatal("history written")
	}
}

func TestEndRideOverCorruptHistory(t *testing.T) {
	b, _, kv, _ := newBooking()
	ctx := context.Background()
	_ = kv.Set(ctx, storage.KeyRides, "{broken")

	_ = b.FindDriver("A", "B")
	_ = b.SelectVehicle("bike")
	_ = b.Confirm()
	if _, err := b.EndRide(ctx); err != nil {
		t.Fatal(err)
	}
	list, err := loadHistory(ctx, storage.NewGateway(kv))
	if err != nil || len(list) != 1 {
		t.Fatalf("history = %+v err=%v", list, err)
	}
}
