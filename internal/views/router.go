package views

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Screen names one of the full-view UI states.
type Screen string

const (
	Login     Screen = "login"
	OTP       Screen = "otp"
	Emergency Screen = "emergency"
	Dashboard Screen = "dashboard"
	Rides     Screen = "rides"
)

// Screens is the fixed set, in display order.
var Screens = []Screen{Login, OTP, Emergency, Dashboard, Rides}

const (
	DefaultShowDelay = 10 * time.Millisecond
	DefaultHideDelay = 300 * time.Millisecond
)

// Phase is where a screen sits in its enter/exit transition.
type Phase string

const (
	PhaseHidden   Phase = "hidden"
	PhaseEntering Phase = "entering"
	PhaseShown    Phase = "shown"
	PhaseLeaving  Phase = "leaving"
)

// ScreenState is the presentation of one screen.
type ScreenState struct {
	Visible bool  `json:"visible"`
	Active  bool  `json:"active"`
	Phase   Phase `json:"phase"`
}

type screenSlot struct {
	state ScreenState
	gen   uint64
	timer Timer
}

// Options tunes a Router.
type Options struct {
	ShowDelay time.Duration
	HideDelay time.Duration
	// Mounted limits the screens the router drives; nil mounts all of them.
	Mounted []Screen
	Logger  *slog.Logger
}

// Router shows exactly one screen at a time. A navigation stops every
// transition still in flight and restarts the choreography, so the latest
// call always wins.
type Router struct {
	mu      sync.Mutex
	sched   Scheduler
	show    time.Duration
	hide    time.Duration
	slots   map[Screen]*screenSlot
	gen     uint64
	current Screen
	hooks   map[Screen][]func(context.Context)
	onStep  []func(Screen, ScreenState)
	log     *slog.Logger
}

// NewRouter creates a router with every mounted screen hidden.
func NewRouter(sched Scheduler, opts Options) *Router {
	if sched == nil {
		sched = RealScheduler{}
	}
	if opts.ShowDelay <= 0 {
		opts.ShowDelay = DefaultShowDelay
	}
	if opts.HideDelay <= 0 {
		opts.HideDelay = DefaultHideDelay
	}
	if opts.Mounted == nil {
		opts.Mounted = Screens
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r := &Router{
		sched: sched,
		show:  opts.ShowDelay,
		hide:  opts.HideDelay,
		slots: make(map[Screen]*screenSlot, len(opts.Mounted)),
		hooks: make(map[Screen][]func(context.Context)),
		log:   opts.Logger.With("component", "views"),
	}
	for _, s := range opts.Mounted {
		if IsScreen(string(s)) {
			r.slots[s] = &screenSlot{state: ScreenState{Phase: PhaseHidden}}
		}
	}
	return r
}

// IsScreen reports whether name is one of the fixed screens.
func IsScreen(name string) bool {
	for _, s := range Screens {
		if string(s) == name {
			return true
		}
	}
	return false
}

// OnEnter registers a hook run synchronously whenever screen becomes the
// navigation target, before it is shown.
func (r *Router) OnEnter(screen Screen, hook func(context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[screen] = append(r.hooks[screen], hook)
}

// OnStep registers an observer called after each delayed transition step.
// Observers run without the router lock held.
func (r *Router) OnStep(fn func(Screen, ScreenState)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onStep = append(r.onStep, fn)
}

// NavigateTo makes name the visible screen. Unknown names are ignored and
// report false.
func (r *Router) NavigateTo(ctx context.Context, name string) bool {
	if !IsScreen(name) {
		r.log.Warn("navigation to unknown screen ignored", "screen", name)
		return false
	}
	target := Screen(name)

	r.mu.Lock()
	hooks := append([]func(context.Context){}, r.hooks[target]...)
	r.mu.Unlock()
	for _, h := range hooks {
		h(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	gen := r.gen
	r.current = target

	for _, s := range Screens {
		slot, ok := r.slots[s]
		if !ok {
			continue
		}
		if slot.timer != nil {
			slot.timer.Stop()
			slot.timer = nil
		}
		slot.gen = gen

		if s == target {
			slot.state.Visible = true
			if slot.state.Active {
				slot.state.Phase = PhaseShown
				continue
			}
			slot.state.Phase = PhaseEntering
			screen := s
			slot.timer = r.sched.AfterFunc(r.show, func() { r.complete(screen, gen, true) })
			continue
		}

		slot.state.Active = false
		if !slot.state.Visible {
			slot.state.Phase = PhaseHidden
			continue
		}
		slot.state.Phase = PhaseLeaving
		screen := s
		slot.timer = r.sched.AfterFunc(r.hide, func() { r.complete(screen, gen, false) })
	}
	r.log.Debug("navigate", "screen", target, "generation", gen)
	return true
}

func (r *Router) complete(screen Screen, gen uint64, entering bool) {
	r.mu.Lock()
	slot, ok := r.slots[screen]
	if !ok || slot.gen != gen {
		r.mu.Unlock()
		return
	}
	slot.timer = nil
	if entering {
		slot.state.Active = true
		slot.state.Phase = PhaseShown
	} else {
		slot.state.Visible = false
		slot.state.Phase = PhaseHidden
	}
	state := slot.state
	observers := append([]func(Screen, ScreenState){}, r.onStep...)
	r.mu.Unlock()

	for _, fn := range observers {
		fn(screen, state)
	}
}

// Current returns the latest navigation target, or "" before the first one.
func (r *Router) Current() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// States returns a copy of every mounted screen's presentation.
func (r *Router) States() map[Screen]ScreenState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[Screen]ScreenState, len(r.slots))
	for s, slot := range r.slots {
		out[s] = slot.state
	}
	return out
}

// Settled reports whether no transition is in flight.
func (r *Router) Settled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, slot := range r.slots {
		if slot.timer != nil {
			return false
		}
	}
	return true
}

// Stop cancels every pending transition timer.
func (r *Router) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	for _, slot := range r.slots {
		if slot.timer != nil {
			slot.timer.Stop()
			slot.timer = nil
		}
	}
}
