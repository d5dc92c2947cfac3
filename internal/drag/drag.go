// Package drag turns pointer events over the caption canvas into overlay
// store mutations. The controller is a two-state machine, Idle and Dragging,
// so the single-concurrent-drag invariant can be checked without a window
// system in the loop.
package drag

import (
	"github.com/example/quipshot/internal/geometry"
	"github.com/example/quipshot/internal/overlay"
)

// State enumerates the controller's interaction states.
type State int

const (
	// Idle means no pointer button is held over a caption.
	Idle State = iota
	// Dragging means a caption follows the pointer until release.
	Dragging
)

// HitFunc resolves a container-space point to the topmost caption under it.
// The render surface supplies this since hit boxes depend on text metrics.
type HitFunc func(p geometry.Point) (overlay.ID, bool)

// Controller drives a Store from pointer events. It applies pointer deltas
// rather than absolute positions, so a caption grabbed off-center does not
// jump under the cursor.
type Controller struct {
	store *overlay.Store
	hit   HitFunc

	state  State
	target overlay.ID
	last   geometry.Point
}

// NewController creates a controller in the Idle state.
func NewController(store *overlay.Store, hit HitFunc) *Controller {
	return &Controller{store: store, hit: hit}
}

// State reports the current interaction state.
func (c *Controller) State() State {
	return c.state
}

// Target returns the caption being dragged, or overlay.None when Idle.
func (c *Controller) Target() overlay.ID {
	if c.state != Dragging {
		return overlay.None
	}
	return c.target
}

// PointerDown begins a drag when p lands on a caption, which also becomes
// the selection. A press on empty canvas clears the selection. Presses that
// arrive while a drag is already in progress are dropped; the input layer
// may not capture the pointer for us.
func (c *Controller) PointerDown(p geometry.Point) {
	if c.state == Dragging {
		return
	}
	id, ok := c.hit(p)
	if !ok {
		c.store.Deselect()
		return
	}
	c.store.Select(id)
	c.state = Dragging
	c.target = id
	c.last = p
}

// PointerMove advances an active drag by the delta from the last observed
// pointer position. Any movement while the button is held counts; there is
// no drag threshold.
func (c *Controller) PointerMove(p geometry.Point) {
	if c.state != Dragging {
		return
	}
	delta := p.Sub(c.last)
	c.last = p
	if delta == (geometry.Point{}) {
		return
	}
	cur, ok := c.store.Get(c.target)
	if !ok {
		// Caption vanished mid-drag (removed or image replaced).
		c.state = Idle
		c.target = overlay.None
		return
	}
	next := cur.Position.Add(delta)
	c.store.Update(c.target, overlay.Patch{Position: &next})
}

// PointerUp ends the drag session.
func (c *Controller) PointerUp() {
	c.state = Idle
	c.target = overlay.None
}

// PointerLeave ends the drag session when the pointer exits the container.
func (c *Controller) PointerLeave() {
	c.PointerUp()
}
