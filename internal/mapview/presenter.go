package mapview

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cabs-service/internal/views"
)

// Coord is a latitude/longitude pair.
type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Handle identifies a created map inside a Map collaborator.
type Handle string

// Options are passed to Map.Create.
type Options struct {
	ZoomControl bool `json:"zoom_control"`
}

// Icon describes a marker icon rendered as a styled div.
type Icon struct {
	ClassName string `json:"class_name"`
	HTML      string `json:"html"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Map is the map-widget collaborator.
type Map interface {
	Create(containerID string, center Coord, zoom int, opts Options) (Handle, error)
	AddTileLayer(h Handle, url, attribution string) error
	AddMarker(h Handle, at Coord, icon Icon) error
	AddZoomControl(h Handle, position string) error
	InvalidateSize(h Handle) error
}

const (
	ContainerID     = "map"
	DefaultZoom     = 15
	TileURL         = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	TileAttribution = "&copy; OpenStreetMap contributors"
	// Top-right keeps the control clear of the booking sheet.
	ZoomPosition = "topright"
	// Matches the view transition so the container has its final size.
	InvalidateDelay = 300 * time.Millisecond
)

// Marathahalli, Bangalore.
var DefaultCenter = Coord{Lat: 12.9591, Lng: 77.6974}

// UserIcon is the mock "you are here" marker.
var UserIcon = Icon{
	ClassName: "user-marker",
	HTML:      `<div style="background-color:#6366f1;width:24px;height:24px;border-radius:50%;border:3px solid white;box-shadow:0 4px 10px rgba(99, 102, 241, 0.5);"></div>`,
	Width:     24,
	Height:    24,
}

// Presenter initializes the dashboard map at most once.
type Presenter struct {
	mu          sync.Mutex
	m           Map
	sched       views.Scheduler
	log         *slog.Logger
	initialized bool
	handle      Handle
}

func NewPresenter(m Map, sched views.Scheduler, log *slog.Logger) *Presenter {
	if sched == nil {
		sched = views.RealScheduler{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Presenter{m: m, sched: sched, log: log.With("component", "mapview")}
}

// Initialized reports whether Init already ran.
func (p *Presenter) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Init builds the map on first call; later calls do nothing. The flag is
// set before any collaborator call so a failing widget is not retried.
func (p *Presenter) Init() error {
	p.mu.Lock()
	if p.initialized {
		p.mu.Unlock()
		return nil
	}
	p.initialized = true
	p.mu.Unlock()

	h, err := p.m.Create(ContainerID, DefaultCenter, DefaultZoom, Options{ZoomControl: false})
	if err != nil {
		return fmt.Errorf("create map: %w", err)
	}
	if err := p.m.AddTileLayer(h, TileURL, TileAttribution); err != nil {
		return fmt.Errorf("add tile layer: %w", err)
	}
	if err := p.m.AddMarker(h, DefaultCenter, UserIcon); err != nil {
		return fmt.Errorf("add user marker: %w", err)
	}
	if err := p.m.AddZoomControl(h, ZoomPosition); err != nil {
		return fmt.Errorf("add zoom control: %w", err)
	}

	p.mu.Lock()
	p.handle = h
	p.mu.Unlock()

	p.sched.AfterFunc(InvalidateDelay, func() {
		if err := p.m.InvalidateSize(h); err != nil {
			p.log.Warn("invalidate map size", "error", err)
		}
	})
	p.log.Debug("map initialized", "handle", h)
	return nil
}
