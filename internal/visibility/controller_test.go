package visibility

import (
	"errors"
	"testing"
)

func newTestController(centered *[]string) *Controller {
	c := NewController(func(wardID string) {
		if centered != nil {
			*centered = append(*centered, wardID)
		}
	})
	c.SetWards([]string{"W01", "W02", "W03"})
	return c
}

func TestNewController_StartsAllVisible(t *testing.T) {
	c := NewController(nil)
	if c.Mode() != AllVisible {
		t.Errorf("Mode() = %v, want AllVisible", c.Mode())
	}
	if !c.Visible("anything") {
		t.Error("Visible() = false in AllVisible mode")
	}
}

func TestIsolate_SuppressesOtherWards(t *testing.T) {
	var centered []string
	c := newTestController(&centered)

	if err := c.Isolate("W02"); err != nil {
		t.Fatalf("Isolate(W02) error = %v", err)
	}
	if c.Mode() != Isolated {
		t.Errorf("Mode() = %v, want Isolated", c.Mode())
	}
	if !c.Visible("W02") {
		t.Error("Isolated ward must stay visible")
	}
	for _, other := range []string{"W01", "W03"} {
		if c.Visible(other) {
			t.Errorf("Visible(%s) = true while W02 is isolated", other)
		}
	}
	if id, ok := c.IsolatedWard(); !ok || id != "W02" {
		t.Errorf("IsolatedWard() = %q, %v, want W02, true", id, ok)
	}
	if len(centered) != 1 || centered[0] != "W02" {
		t.Errorf("Centering fired on %v, want [W02]", centered)
	}
}

func TestIsolate_UnknownWard(t *testing.T) {
	var centered []string
	c := newTestController(&centered)

	if err := c.Isolate("W99"); !errors.Is(err, ErrWardNotFound) {
		t.Fatalf("Isolate(W99) error = %v, want ErrWardNotFound", err)
	}
	if c.Mode() != AllVisible {
		t.Errorf("Mode after failed isolation = %v, want AllVisible", c.Mode())
	}
	if len(centered) != 0 {
		t.Errorf("Centering fired %d times on failed isolation, want 0", len(centered))
	}
}

func TestIsolate_UnknownWard_KeepsExistingIsolation(t *testing.T) {
	c := newTestController(nil)
	if err := c.Isolate("W01"); err != nil {
		t.Fatalf("Isolate(W01) error = %v", err)
	}
	if err := c.Isolate("W99"); !errors.Is(err, ErrWardNotFound) {
		t.Fatalf("Isolate(W99) error = %v, want ErrWardNotFound", err)
	}
	if id, ok := c.IsolatedWard(); !ok || id != "W01" {
		t.Errorf("IsolatedWard() = %q, %v after failed isolation, want W01, true", id, ok)
	}
}

func TestIsolate_SameWardTwice_StillCenters(t *testing.T) {
	var centered []string
	c := newTestController(&centered)

	if err := c.Isolate("W01"); err != nil {
		t.Fatalf("Isolate(W01) error = %v", err)
	}
	if err := c.Isolate("W01"); err != nil {
		t.Fatalf("Re-Isolate(W01) error = %v", err)
	}
	if len(centered) != 2 {
		t.Errorf("Centering fired %d times, want 2 (re-isolation recenters)", len(centered))
	}
	if c.Mode() != Isolated {
		t.Errorf("Mode() = %v, want Isolated", c.Mode())
	}
}

func TestReset_ReturnsToAllVisible(t *testing.T) {
	c := newTestController(nil)
	if err := c.Isolate("W03"); err != nil {
		t.Fatalf("Isolate(W03) error = %v", err)
	}

	c.Reset()

	if c.Mode() != AllVisible {
		t.Errorf("Mode after Reset = %v, want AllVisible", c.Mode())
	}
	if _, ok := c.IsolatedWard(); ok {
		t.Error("IsolatedWard() reported a ward after Reset")
	}
	for _, id := range []string{"W01", "W02", "W03"} {
		if !c.Visible(id) {
			t.Errorf("Visible(%s) = false after Reset", id)
		}
	}
}

func TestSetWards_DropsVanishedIsolation(t *testing.T) {
	c := newTestController(nil)
	if err := c.Isolate("W02"); err != nil {
		t.Fatalf("Isolate(W02) error = %v", err)
	}

	c.SetWards([]string{"W01", "W03"})

	if c.Mode() != AllVisible {
		t.Errorf("Mode after isolated ward vanished = %v, want AllVisible", c.Mode())
	}
	if !c.Visible("W01") || !c.Visible("W03") {
		t.Error("Remaining wards must be visible after isolation dropped")
	}
}

func TestSetWards_KeepsSurvivingIsolation(t *testing.T) {
	c := newTestController(nil)
	if err := c.Isolate("W02"); err != nil {
		t.Fatalf("Isolate(W02) error = %v", err)
	}

	c.SetWards([]string{"W02", "W04"})

	if id, ok := c.IsolatedWard(); !ok || id != "W02" {
		t.Errorf("IsolatedWard() = %q, %v after ward set refresh, want W02, true", id, ok)
	}
	if c.Visible("W04") {
		t.Error("New ward must be suppressed while another is isolated")
	}
}
