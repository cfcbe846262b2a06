package app

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"cabs-service/internal/events"
	"cabs-service/internal/mapview"
	"cabs-service/internal/observability"
	"cabs-service/internal/rides"
	"cabs-service/internal/sharing"
	"cabs-service/internal/storage"
	"cabs-service/internal/users"
	"cabs-service/internal/views"
)

// Options configures every App a registry creates.
type Options struct {
	Scheduler views.Scheduler
	ShowDelay time.Duration
	HideDelay time.Duration
	// Mounted limits the screens the router drives; nil mounts all of them.
	Mounted []views.Screen
	// Rand drives mock driver assignment; nil seeds from the clock.
	Rand   *rand.Rand
	Now    func() time.Time
	Events *events.Emitter
	// OnChange receives a fresh View after every action and transition step.
	OnChange func(View)
	Logger   *slog.Logger
}

// App is one device's instance of the booking app. Its mutex serialises
// every action, as a single UI thread would.
type App struct {
	mu    sync.Mutex
	id    string
	store *storage.Gateway
	opts  Options
	log   *slog.Logger

	state   *State
	router  *views.Router
	widget  *mapview.Widget
	mapView *mapview.Presenter
	auth    *users.Flow
	booking *rides.Booking
	sharing *sharing.Controller
	history *rides.History
}

// New builds an App over kv and runs session bootstrap.
func New(ctx context.Context, id string, kv storage.KV, opts Options) (*App, error) {
	if opts.Scheduler == nil {
		opts.Scheduler = views.RealScheduler{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Events == nil {
		opts.Events = events.NewEmitter(nil, opts.Logger)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	a := &App{
		id:    id,
		store: storage.NewGateway(kv),
		opts:  opts,
		log:   opts.Logger.With("device_id", id),
	}

	a.mu.Lock()
	a.reset()
	err := a.bootstrap(ctx)
	a.mu.Unlock()
	if err != nil {
		a.router.Stop()
		return nil, err
	}
	return a, nil
}

// ID returns the device id.
func (a *App) ID() string { return a.id }

// reset builds fresh in-memory state, as a page load would. Callers hold a.mu.
func (a *App) reset() {
	a.state = newState()
	a.router = views.NewRouter(a.opts.Scheduler, views.Options{
		ShowDelay: a.opts.ShowDelay,
		HideDelay: a.opts.HideDelay,
		Mounted:   a.opts.Mounted,
		Logger:    a.log,
	})
	a.widget = mapview.NewWidget()
	a.mapView = mapview.NewPresenter(a.widget, a.opts.Scheduler, a.log)
	a.auth = users.NewFlow(&a.state.Auth, a.store, a.router, a.log)
	a.sharing = sharing.NewController(&a.state.Sharing, a.log)
	a.booking = rides.NewBooking(&a.state.Booking, a.store, a.sharing, rides.Options{
		Rand:   a.opts.Rand,
		Now:    a.opts.Now,
		Logger: a.log,
	})
	a.history = rides.NewHistory(a.store, a.log)

	for _, s := range views.Screens {
		screen := s
		a.router.OnEnter(screen, func(context.Context) {
			observability.Navigations.WithLabelValues(string(screen)).Inc()
		})
	}
	a.router.OnEnter(views.Dashboard, func(context.Context) {
		if err := a.mapView.Init(); err != nil {
			a.log.Error("map init failed", "err", err)
		}
	})
	a.router.OnEnter(views.Rides, func(ctx context.Context) {
		a.state.History = a.history.Render(ctx)
	})
	router := a.router
	a.router.OnStep(func(views.Screen, views.ScreenState) {
		a.mu.Lock()
		if a.router != router {
			a.mu.Unlock()
			return
		}
		v := a.viewLocked()
		a.mu.Unlock()
		a.publish(v)
	})
}

// bootstrap picks the first screen from what the device has stored.
// Callers hold a.mu.
func (a *App) bootstrap(ctx context.Context) error {
	mobile, ok, err := a.auth.LoadSession(ctx)
	if err != nil {
		return err
	}
	if !ok {
		a.log.Info("bootstrap: no session")
		a.router.NavigateTo(ctx, string(views.Login))
		return nil
	}

	contact, ok, err := a.auth.LoadContact(ctx)
	switch {
	case errors.Is(err, storage.ErrCorruptData):
		a.log.Error("bootstrap: stored contact unreadable", "err", err)
		a.auth.Restore(mobile, users.Contact{})
		a.router.NavigateTo(ctx, string(views.Emergency))
	case err != nil:
		return err
	case !ok:
		a.log.Info("bootstrap: session without contact")
		a.auth.Restore(mobile, users.Contact{})
		a.router.NavigateTo(ctx, string(views.Emergency))
	default:
		a.log.Info("bootstrap: session restored")
		a.auth.Restore(mobile, contact)
		a.router.NavigateTo(ctx, string(views.Dashboard))
	}
	return nil
}

// do runs fn under the app lock and publishes the resulting view.
func (a *App) do(fn func() error) (View, error) {
	a.mu.Lock()
	err := fn()
	v := a.viewLocked()
	a.mu.Unlock()
	a.publish(v)
	return v, err
}

// on runs fn only when screen is the current navigation target.
func (a *App) on(screen views.Screen, fn func() error) (View, error) {
	return a.do(func() error {
		if cur := a.router.Current(); cur != screen {
			return views.WrongScreen(screen, cur)
		}
		return fn()
	})
}

func (a *App) publish(v View) {
	if a.opts.OnChange != nil {
		a.opts.OnChange(v)
	}
}

// View returns the current snapshot.
func (a *App) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewLocked()
}

func (a *App) viewLocked() View {
	v := View{
		DeviceID: a.id,
		Screen:   a.router.Current(),
		Screens:  a.router.States(),
		Settled:  a.router.Settled(),
		Auth:     a.state.Auth,
		Booking:  a.state.Booking,
		Sharing:  a.state.Sharing,
	}
	v.Booking.Cards = append([]rides.VehicleCard(nil), a.state.Booking.Cards...)
	if v.Screen == views.Rides {
		h := a.state.History
		v.History = &h
	}
	if a.mapView.Initialized() {
		if cfg, ok := a.widget.Config(); ok {
			v.Map = &cfg
		}
	}
	return v
}

// ---- login / otp / emergency ----

// SetPhone updates the login field.
func (a *App) SetPhone(mobile string) (View, error) {
	return a.on(views.Login, func() error {
		a.auth.SetPhoneInput(mobile)
		return nil
	})
}

// RequestOTP moves to the OTP screen.
func (a *App) RequestOTP(ctx context.Context) (View, error) {
	return a.on(views.Login, func() error {
		return a.auth.RequestOTP(ctx)
	})
}

// VerifyOTP starts a session when code is right.
func (a *App) VerifyOTP(ctx context.Context, code string) (View, error) {
	return a.on(views.OTP, func() error {
		if err := a.auth.VerifyOTP(ctx, code); err != nil {
			if errors.Is(err, users.ErrOTPMismatch) {
				observability.OTPFailures.Inc()
			}
			return err
		}
		observability.SessionsTotal.Inc()
		a.opts.Events.Emit(events.TopicSessionStarted, a.id, events.SessionStartedEvent{
			DeviceID:  a.id,
			Mobile:    a.state.Auth.Mobile,
			StartedAt: a.opts.Now().Format(time.RFC3339),
		})
		return nil
	})
}

// BackToLogin leaves the OTP screen.
func (a *App) BackToLogin(ctx context.Context) (View, error) {
	return a.on(views.OTP, func() error {
		a.auth.BackToLogin(ctx)
		return nil
	})
}

// SaveContact stores the emergency contact and opens the dashboard.
func (a *App) SaveContact(ctx context.Context, name, number string) (View, error) {
	return a.on(views.Emergency, func() error {
		return a.auth.SaveContact(ctx, name, number)
	})
}

// ---- booking ----

func (a *App) FindDriver(start, dest string) (View, error) {
	return a.on(views.Dashboard, func() error { return a.booking.FindDriver(start, dest) })
}

func (a *App) SelectVehicle(id string) (View, error) {
	return a.on(views.Dashboard, func() error { return a.booking.SelectVehicle(id) })
}

func (a *App) BackToInput() (View, error) {
	return a.on(views.Dashboard, a.booking.Back)
}

func (a *App) ConfirmBooking() (View, error) {
	return a.on(views.Dashboard, a.booking.Confirm)
}

// EndRide completes the live ride and records it.
func (a *App) EndRide(ctx context.Context) (View, error) {
	return a.on(views.Dashboard, func() error {
		rec, err := a.booking.EndRide(ctx)
		if err != nil {
			return err
		}
		observability.RidesTotal.Inc()
		observability.RideRevenue.Add(float64(rec.Price))
		a.opts.Events.Emit(events.TopicRideCompleted, a.id, events.RideCompletedEvent{
			DeviceID:    a.id,
			RideID:      rec.ID,
			Mobile:      a.state.Auth.Mobile,
			Start:       rec.Start,
			Dest:        rec.Dest,
			Vehicle:     rec.Vehicle,
			Driver:      rec.Driver,
			Price:       rec.Price,
			CompletedAt: a.opts.Now().Format(time.RFC3339),
		})
		return nil
	})
}

// ---- sharing ----

func (a *App) ToggleSharing(on bool) (View, error) {
	return a.on(views.Dashboard, func() error {
		a.sharing.Toggle(on)
		return nil
	})
}

func (a *App) ChooseSharing(mode sharing.Mode) (View, error) {
	return a.on(views.Dashboard, func() error { return a.sharing.Choose(mode) })
}

func (a *App) CancelSharing() (View, error) {
	return a.on(views.Dashboard, func() error {
		a.sharing.Cancel()
		return nil
	})
}

func (a *App) StopSharing() (View, error) {
	return a.on(views.Dashboard, func() error {
		a.sharing.Stop()
		return nil
	})
}

// ---- rides screen ----

// OpenRides shows ride history.
func (a *App) OpenRides(ctx context.Context) (View, error) {
	return a.on(views.Dashboard, func() error {
		a.router.NavigateTo(ctx, string(views.Rides))
		return nil
	})
}

// CloseRides returns to the dashboard.
func (a *App) CloseRides(ctx context.Context) (View, error) {
	return a.on(views.Rides, func() error {
		a.router.NavigateTo(ctx, string(views.Dashboard))
		return nil
	})
}

// Rides returns stored ride records, newest first.
func (a *App) Rides(ctx context.Context) ([]rides.RideRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.Records(ctx)
}

// ---- teardown ----

// Logout clears everything the device stored and starts over at login.
func (a *App) Logout(ctx context.Context, confirmed bool) (View, error) {
	return a.do(func() error {
		if !confirmed {
			return ErrNotConfirmed
		}
		mobile := a.state.Auth.Mobile
		if err := a.store.Clear(ctx); err != nil {
			return err
		}
		a.router.Stop()
		a.reset()
		if err := a.bootstrap(ctx); err != nil {
			return err
		}
		observability.Logouts.Inc()
		a.opts.Events.Emit(events.TopicSessionCleared, a.id, events.SessionClearedEvent{
			DeviceID:  a.id,
			Mobile:    mobile,
			ClearedAt: a.opts.Now().Format(time.RFC3339),
		})
		a.log.Info("logged out")
		return nil
	})
}

// Close stops pending transitions.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.router.Stop()
}
