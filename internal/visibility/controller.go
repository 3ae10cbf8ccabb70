package visibility

import (
	"errors"
	"sync"
)

// ErrWardNotFound is reported when isolation targets a ward that is not
// in the current boundary set. The controller never transitions into a
// dangling isolation.
var ErrWardNotFound = errors.New("ward not found in current ward set")

// Mode is the two-state visibility machine.
type Mode int

const (
	// AllVisible is the initial and terminal default.
	AllVisible Mode = iota
	// Isolated means exactly one ward is interactively visible; the rest
	// are suppressed by style only, never removed from the data set.
	Isolated
)

// Controller owns the visibility overlay keyed by ward_id. It never owns
// the Ward data itself; suppression is recomputed from mode + ward set.
type Controller struct {
	mu        sync.Mutex
	mode      Mode
	isolated  string
	known     map[string]struct{}
	onIsolate func(wardID string)
}

// NewController creates a controller in AllVisible. onIsolate, if set, is
// the camera-centering side effect fired on every successful Isolate,
// including an idempotent re-isolation of the same ward.
func NewController(onIsolate func(wardID string)) *Controller {
	return &Controller{
		known:     make(map[string]struct{}),
		onIsolate: onIsolate,
	}
}

// SetWards replaces the known ward set. The overlay is recomputed: an
// isolated ward that vanished from the set drops the controller back to
// AllVisible.
func (c *Controller) SetWards(wardIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.known = make(map[string]struct{}, len(wardIDs))
	for _, id := range wardIDs {
		c.known[id] = struct{}{}
	}
	if c.mode == Isolated {
		if _, ok := c.known[c.isolated]; !ok {
			c.mode = AllVisible
			c.isolated = ""
		}
	}
}

// Isolate transitions to Isolated(wardID). An unknown ward leaves the
// mode unchanged and reports not-found. Isolating the ward that is
// already isolated is a state no-op but still fires the side effect.
func (c *Controller) Isolate(wardID string) error {
	c.mu.Lock()
	if _, ok := c.known[wardID]; !ok {
		c.mu.Unlock()
		return ErrWardNotFound
	}
	c.mode = Isolated
	c.isolated = wardID
	fn := c.onIsolate
	c.mu.Unlock()

	if fn != nil {
		fn(wardID)
	}
	return nil
}

// Reset returns to AllVisible.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = AllVisible
	c.isolated = ""
}

// Visible is the style predicate: in Isolated(w) only w is visible,
// otherwise every ward is.
func (c *Controller) Visible(wardID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == Isolated {
		return wardID == c.isolated
	}
	return true
}

// Mode returns the current visibility mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// IsolatedWard returns the isolated ward id while in Isolated mode.
func (c *Controller) IsolatedWard() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != Isolated {
		return "", false
	}
	return c.isolated, true
}
