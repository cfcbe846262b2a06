package mapview

import (
	"errors"
	"fmt"
	"sync"
)

var ErrUnknownMap = errors.New("unknown map handle")

// Layer is a tile layer as shipped to clients.
type Layer struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// Marker is a placed marker. Markers are never interactive.
type Marker struct {
	At   Coord `json:"at"`
	Icon Icon  `json:"icon"`
}

// Config is the serialisable description of a created map; a client-side
// map library replays it.
type Config struct {
	Container   string   `json:"container"`
	Center      Coord    `json:"center"`
	Zoom        int      `json:"zoom"`
	Options     Options  `json:"options"`
	Layers      []Layer  `json:"layers"`
	Markers     []Marker `json:"markers"`
	ZoomControl string   `json:"zoom_control,omitempty"`
	Invalidated int      `json:"invalidated"`
}

// Widget implements Map by recording what was built.
type Widget struct {
	mu    sync.Mutex
	maps  map[Handle]*Config
	seq   int
	first Handle
}

func NewWidget() *Widget {
	return &Widget{maps: make(map[Handle]*Config)}
}

func (w *Widget) Create(containerID string, center Coord, zoom int, opts Options) (Handle, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	h := Handle(fmt.Sprintf("%s-%d", containerID, w.seq))
	w.maps[h] = &Config{Container: containerID, Center: center, Zoom: zoom, Options: opts}
	if w.first == "" {
		w.first = h
	}
	return h, nil
}

func (w *Widget) AddTileLayer(h Handle, url, attribution string) error {
	return w.update(h, func(c *Config) {
		c.Layers = append(c.Layers, Layer{URL: url, Attribution: attribution})
	})
}

func (w *Widget) AddMarker(h Handle, at Coord, icon Icon) error {
	return w.update(h, func(c *Config) {
		c.Markers = append(c.Markers, Marker{At: at, Icon: icon})
	})
}

func (w *Widget) AddZoomControl(h Handle, position string) error {
	return w.update(h, func(c *Config) { c.ZoomControl = position })
}

func (w *Widget) InvalidateSize(h Handle) error {
	return w.update(h, func(c *Config) { c.Invalidated++ })
}

func (w *Widget) update(h Handle, fn func(*Config)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.maps[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMap, h)
	}
	fn(c)
	return nil
}

// Config returns a copy of the first map created, if any.
func (w *Widget) Config() (Config, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.maps[w.first]
	if !ok {
		return Config{}, false
	}
	out := *c
	out.Layers = append([]Layer(nil), c.Layers...)
	out.Markers = append([]Marker(nil), c.Markers...)
	return out, true
}
