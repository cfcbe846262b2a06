package rides

import (
	"errors"
	"fmt"
)

// Step is where the booking panel is.
type Step string

const (
	StepInput    Step = "input"
	StepVehicles Step = "vehicles"
	StepLive     Step = "live"
)

// StatusCompleted is the only status a stored ride ever has.
const StatusCompleted = "Completed"

// DateLayout matches how rides are dated in history.
const DateLayout = "1/2/2006, 3:04:05 PM"

// ErrWrongStep is returned when a booking action is not offered at the
// current step.
var ErrWrongStep = errors.New("action not available at this booking step")

func wrongStep(want, got Step) error {
	return fmt.Errorf("%w: need %s, at %s", ErrWrongStep, want, got)
}

// Vehicle is one entry of the fixed catalog.
type Vehicle struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Desc  string `json:"desc"`
	Price int    `json:"price"`
	Time  string `json:"time"`
}

// Catalog is offered for every trip, whatever the route.
var Catalog = []Vehicle{
	{ID: "bike", Name: "Bike", Desc: "Beat the traffic", Price: 45, Time: "2 min"},
	{ID: "auto", Name: "Auto", Desc: "No bargaining", Price: 85, Time: "4 min"},
	{ID: "mini", Name: "Mini", Desc: "Comfy hatchbacks", Price: 120, Time: "6 min"},
	{ID: "prime", Name: "Prime SUV", Desc: "Spacious 6-seater", Price: 190, Time: "8 min"},
}

// FindVehicle looks a catalog entry up by id.
func FindVehicle(id string) (Vehicle, bool) {
	for _, v := range Catalog {
		if v.ID == id {
			return v, true
		}
	}
	return Vehicle{}, false
}

// Driver is the mock driver assigned on confirmation.
type Driver struct {
	Name   string  `json:"name"`
	Car    string  `json:"car"`
	Rating float64 `json:"rating"`
}

// CurrentRide is the ride being booked or driven. It is never persisted.
type CurrentRide struct {
	Start     string  `json:"start"`
	Dest      string  `json:"dest"`
	VehicleID string  `json:"vehicle_id,omitempty"`
	Vehicle   string  `json:"vehicle,omitempty"`
	Price     int     `json:"price,omitempty"`
	Driver    *Driver `json:"driver,omitempty"`
}

// RideRecord is a completed ride as stored under cabs_rides.
type RideRecord struct {
	ID      int64  `json:"id"`
	Start   string `json:"start"`
	Dest    string `json:"dest"`
	Driver  string `json:"driver"`
	Vehicle string `json:"vehicle"`
	Price   int    `json:"price"`
	Date    string `json:"date"`
	Status  string `json:"status"`
}

// VehicleCard is a catalog entry as drawn in the vehicles step.
type VehicleCard struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Detail   string `json:"detail"`
	Price    string `json:"price"`
	Selected bool   `json:"selected"`
}

// State is the booking slice of the app state.
type State struct {
	Step           Step          `json:"step"`
	Ride           CurrentRide   `json:"ride"`
	Cards          []VehicleCard `json:"cards,omitempty"`
	ConfirmEnabled bool          `json:"confirm_enabled"`
	ConfirmLabel   string        `json:"confirm_label"`
	// Message is the last completion notice; cleared by the next search.
	Message string `json:"message,omitempty"`
}

// NewState returns a booking panel at the input step.
func NewState() State {
	return State{Step: StepInput, ConfirmLabel: confirmDefault}
}

func price(p int) string { return fmt.Sprintf("₹%d", p) }
