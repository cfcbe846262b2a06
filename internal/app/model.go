package app

import (
	"errors"

	"cabs-service/internal/mapview"
	"cabs-service/internal/rides"
	"cabs-service/internal/sharing"
	"cabs-service/internal/users"
	"cabs-service/internal/views"
)

// ErrNotConfirmed is returned by Logout when the user did not confirm.
var ErrNotConfirmed = errors.New("logout not confirmed")

// ErrUnknownDevice is returned for a device id the registry never issued
// and cannot reopen.
var ErrUnknownDevice = errors.New("unknown device")

// State is everything one device's app holds in memory.
type State struct {
	Auth    users.State
	Booking rides.State
	Sharing sharing.State
	History rides.HistoryView
}

func newState() *State {
	return &State{Booking: rides.NewState()}
}

// View is the snapshot returned to clients after every action and pushed
// over the device's websocket.
type View struct {
	DeviceID string                             `json:"device_id"`
	Screen   views.Screen                       `json:"screen"`
	Screens  map[views.Screen]views.ScreenState `json:"screens"`
	Settled  bool                               `json:"settled"`
	Auth     users.State                        `json:"auth"`
	Booking  rides.State                        `json:"booking"`
	Sharing  sharing.State                      `json:"sharing"`
	History  *rides.HistoryView                 `json:"history,omitempty"`
	Map      *mapview.Config                    `json:"map,omitempty"`
}
