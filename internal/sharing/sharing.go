// Package sharing holds the live-location-sharing toggle. It is orthogonal
// to the booking steps and never persisted.
package sharing

import (
	"log/slog"

	"cabs-service/internal/views"
)

// Mode is how long location is shared for.
type Mode string

const (
	ModeNone   Mode = ""
	ModeOnce   Mode = "ONCE"
	ModeAlways Mode = "ALWAYS"
)

// State is the sharing slice of the app state plus its presentation.
type State struct {
	Enabled bool `json:"enabled"`
	Mode    Mode `json:"mode"`
	// Toggle is the switch as drawn; it lags Enabled while the prompt is open.
	Toggle     bool `json:"toggle"`
	PromptOpen bool `json:"prompt_open"`
	// Indicator is the persistent "sharing active" status line.
	Indicator bool `json:"indicator"`
	// LiveBadge is shown on the live-ride panel.
	LiveBadge bool `json:"live_badge"`
}

// Controller mutates State.
type Controller struct {
	state *State
	log   *slog.Logger
}

func NewController(state *State, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{state: state, log: log.With("component", "sharing")}
}

// Toggle handles the switch being flipped. Turning it on does not enable
// sharing; it asks for a mode first and leaves the switch off.
func (c *Controller) Toggle(on bool) {
	if on {
		c.state.Toggle = false
		c.state.PromptOpen = true
		return
	}
	c.Stop()
}

// Choose enables sharing with the picked mode.
func (c *Controller) Choose(mode Mode) error {
	if mode != ModeOnce && mode != ModeAlways {
		return views.Invalid("Choose ONCE or ALWAYS")
	}
	c.state.Enabled = true
	c.state.Mode = mode
	c.state.Toggle = true
	c.state.PromptOpen = false
	c.state.Indicator = true
	c.state.LiveBadge = true
	c.log.Info("sharing enabled", "mode", mode)
	return nil
}

// Cancel closes the prompt and turns the switch back off. Stored sharing
// state is left alone.
func (c *Controller) Cancel() {
	c.state.PromptOpen = false
	c.state.Toggle = false
}

// Stop disables sharing whatever the previous mode.
func (c *Controller) Stop() {
	c.state.Enabled = false
	c.state.Mode = ModeNone
	c.state.Toggle = false
	c.state.Indicator = false
	c.state.LiveBadge = false
	c.log.Info("sharing disabled")
}

// SyncBadge makes the live badge reflect whether sharing is on; called when
// a ride goes live.
func (c *Controller) SyncBadge() {
	c.state.LiveBadge = c.state.Enabled
}

// Enabled reports whether location is being shared.
func (c *Controller) Enabled() bool { return c.state.Enabled }
