package sharing

import (
	"errors"
	"testing"

	"cabs-service/internal/views"
)

func TestToggleOnOpensPromptAndStaysOff(t *testing.T) {
	st := &State{}
	c := NewController(st, nil)

	c.Toggle(true)
	if !st.PromptOpen || st.Toggle || st.Enabled || st.Mode != ModeNone {
		t.Fatalf("state = %+v", st)
	}
}

func TestChooseOnce(t *testing.T) {
	st := &State{}
	c := NewController(st, nil)
	c.Toggle(true)

	if err := c.Choose(ModeOnce); err != nil {
		t.Fatal(err)
	}
	want := State{Enabled: true, Mode: ModeOnce, Toggle: true, Indicator: true, LiveBadge: true}
	if *st != want {
		t.Fatalf("state = %+v, want %+v", *st, want)
	}
}

func TestChooseRejectsUnknownMode(t *testing.T) {
	st := &State{PromptOpen: true}
	c := NewController(st, nil)

	var verr *views.ValidationError
	if err := c.Choose("SOMETIMES"); !errors.As(err, &verr) {
		t.Fatalf("err = %v", err)
	}
	if st.Enabled || !st.PromptOpen {
		t.Fatalf("state changed: %+v", st)
	}
}

func TestCancelRevertsToggleOnly(t *testing.T) {
	st := &State{}
	c := NewController(st, nil)
	c.Toggle(true)
	c.Cancel()

	if st.PromptOpen || st.Toggle || st.Enabled || st.Indicator {
		t.Fatalf("state = %+v", st)
	}
}

func TestStopAlwaysDisables(t *testing.T) {
	for _, mode := range []Mode{ModeNone, ModeOnce, ModeAlways} {
		st := &State{}
		c := NewController(st, nil)
		if mode != ModeNone {
			_ = c.Choose(mode)
		}
		c.Stop()
		if st.Enabled || st.Mode != "" || st.Indicator || st.LiveBadge || st.Toggle {
			t.Fatalf("after Stop from %q: %+v", mode, st)
		}
	}
}

func TestToggleOffStops(t *testing.T) {
	st := &State{}
	c := NewController(st, nil)
	_ = c.Choose(ModeAlways)
	c.Toggle(false)
	if st.Enabled {
		t.Fatal("toggle off left sharing enabled")
	}
}

func TestSyncBadge(t *testing.T) {
	st := &State{}
	c := NewController(st, nil)
	st.LiveBadge = true
	c.SyncBadge()
	if st.LiveBadge {
		t.Fatal("badge shown while sharing is off")
	}
	_ = c.Choose(ModeOnce)
	st.LiveBadge = false
	c.SyncBadge()
	if !st.LiveBadge {
		t.Fatal("badge hidden while sharing is on")
	}
}
