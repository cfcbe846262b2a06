package rides

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"cabs-service/internal/storage"
	"cabs-service/internal/views"
)

const (
	confirmDefault = "Confirm Booking"
	mockDriverName = "Ramesh Kumar"
	mockRating     = 4.8
	platePrefix    = "KA 01 AB"
)

var carModels = []string{"Swift Dzire", "Toyota Etios", "Hyundai Xcent", "Honda Amaze"}

// Sharing is the part of the sharing controller a live ride reads.
type Sharing interface {
	SyncBadge()
}

// Options tunes a Booking. Zero values fall back to wall-clock time, a
// time-seeded source and the default logger.
type Options struct {
	Rand   *rand.Rand
	Now    func() time.Time
	Logger *slog.Logger
}

// Booking contains the three-step booking logic.
type Booking struct {
	state   *State
	store   *storage.Gateway
	sharing Sharing
	rnd     *rand.Rand
	now     func() time.Time
	log     *slog.Logger
}

// NewBooking wires the booking flow to the state slice it owns.
func NewBooking(state *State, store *storage.Gateway, sharing Sharing, opts Options) *Booking {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Booking{
		state:   state,
		store:   store,
		sharing: sharing,
		rnd:     opts.Rand,
		now:     opts.Now,
		log:     opts.Logger.With("component", "rides"),
	}
}

// FindDriver takes the route and moves to vehicle selection.
func (b *Booking) FindDriver(start, dest string) error {
	if b.state.Step != StepInput {
		return wrongStep(StepInput, b.state.Step)
	}
	if start == "" || dest == "" {
		return views.Invalid("Please enter both pickup and destination")
	}
	b.state.Ride = CurrentRide{Start: start, Dest: dest}
	b.state.Message = ""
	b.renderVehicles()
	b.state.Step = StepVehicles
	return nil
}

// renderVehicles rebuilds the cards with nothing selected.
func (b *Booking) renderVehicles() {
	b.state.Ride.VehicleID = ""
	b.state.ConfirmEnabled = false
	b.state.ConfirmLabel = confirmDefault

	cards := make([]VehicleCard, 0, len(Catalog))
	for _, v := range Catalog {
		cards = append(cards, VehicleCard{
			ID:     v.ID,
			Name:   v.Name,
			Detail: fmt.Sprintf("ETA: %s • %s", v.Time, v.Desc),
			Price:  price(v.Price),
		})
	}
	b.state.Cards = cards
}

// SelectVehicle marks one card as chosen.
func (b *Booking) SelectVehicle(id string) error {
	if b.state.Step != StepVehicles {
		return wrongStep(StepVehicles, b.state.Step)
	}
	v, ok := FindVehicle(id)
	if !ok {
		return views.Invalid("Unknown vehicle " + id)
	}
	for i := range b.state.Cards {
		b.state.Cards[i].Selected = b.state.Cards[i].ID == id
	}
	b.state.Ride.VehicleID = v.ID
	b.state.Ride.Vehicle = v.Name
	b.state.Ride.Price = v.Price
	b.state.ConfirmEnabled = true
	b.state.ConfirmLabel = "Confirm " + v.Name
	return nil
}

// Back returns from vehicle selection to the route inputs.
func (b *Booking) Back() error {
	if b.state.Step != StepVehicles {
		return wrongStep(StepVehicles, b.state.Step)
	}
	b.state.Step = StepInput
	return nil
}

// Confirm assigns a mock driver and starts the live ride.
func (b *Booking) Confirm() error {
	if b.state.Step != StepVehicles {
		return wrongStep(StepVehicles, b.state.Step)
	}
	if b.state.Ride.VehicleID == "" {
		return views.Invalid("Please select a vehicle")
	}
	model := carModels[b.rnd.Intn(len(carModels))]
	plate := 1000 + b.rnd.Intn(9000)
	b.state.Ride.Driver = &Driver{
		Name:   mockDriverName,
		Car:    fmt.Sprintf("%s • %s %d", model, platePrefix, plate),
		Rating: mockRating,
	}
	if b.sharing != nil {
		b.sharing.SyncBadge()
	}
	b.state.Step = StepLive
	b.log.Info("ride live", "vehicle", b.state.Ride.VehicleID, "car", b.state.Ride.Driver.Car)
	return nil
}

// EndRide records the live ride in history and resets the panel.
func (b *Booking) EndRide(ctx context.Context) (RideRecord, error) {
	if b.state.Step != StepLive {
		return RideRecord{}, wrongStep(StepLive, b.state.Step)
	}
	now := b.now()
	ride := b.state.Ride
	rec := RideRecord{
		ID:      now.UnixMilli(),
		Start:   ride.Start,
		Dest:    ride.Dest,
		Vehicle: ride.Vehicle,
		Price:   ride.Price,
		Date:    now.Format(DateLayout),
		Status:  StatusCompleted,
	}
	if ride.Driver != nil {
		rec.Driver = ride.Driver.Name
	}

	history, err := loadHistory(ctx, b.store)
	if err != nil {
		if !errors.Is(err, storage.ErrCorruptData) {
			return RideRecord{}, err
		}
		b.log.Error("ride history unreadable, starting over", "err", err)
	}
	history = append([]RideRecord{rec}, history...)
	if err := b.store.SetJSON(ctx, storage.KeyRides, history); err != nil {
		return RideRecord{}, err
	}

	*b.state = NewState()
	b.state.Message = fmt.Sprintf("Ride Completed! Paid %s.", price(rec.Price))
	b.log.Info("ride completed", "id", rec.ID, "price", rec.Price, "rides", len(history))
	return rec, nil
}

func loadHistory(ctx context.Context, store *storage.Gateway) ([]RideRecord, error) {
	var list []RideRecord
	if _, err := store.GetJSON(ctx, storage.KeyRides, &list); err != nil {
		return nil, err
	}
	return list, nil
}
