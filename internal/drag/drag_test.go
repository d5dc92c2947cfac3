package drag

import (
	"testing"

	"github.com/example/quipshot/internal/geometry"
	"github.com/example/quipshot/internal/overlay"
)

// hitWithin returns a HitFunc treating each caption as a fixed 100x40 box
// centered on its position, newest caption on top.
func hitWithin(store *overlay.Store) HitFunc {
	return func(p geometry.Point) (overlay.ID, bool) {
		anns := store.Annotations()
		for i := len(anns) - 1; i >= 0; i-- {
			a := anns[i]
			if p.X >= a.Position.X-50 && p.X <= a.Position.X+50 &&
				p.Y >= a.Position.Y-20 && p.Y <= a.Position.Y+20 {
				return a.ID, true
			}
		}
		return overlay.None, false
	}
}

func newFixture(t *testing.T) (*overlay.Store, *Controller, overlay.ID) {
	t.Helper()
	store := overlay.NewStore()
	id := store.Add("caption", geometry.Point{X: 100, Y: 100}, 32, overlay.DefaultColor)
	return store, NewController(store, hitWithin(store)), id
}

func TestPressSelectsAndStartsDrag(t *testing.T) {
	store, c, id := newFixture(t)
	store.Deselect()

	c.PointerDown(geometry.Point{X: 110, Y: 95})
	if c.State() != Dragging {
		t.Fatalf("state = %v, want Dragging", c.State())
	}
	if c.Target() != id {
		t.Errorf("target = %d, want %d", c.Target(), id)
	}
	if store.SelectedID() != id {
		t.Errorf("selection = %d, want %d", store.SelectedID(), id)
	}
}

func TestPressOnEmptyCanvasDeselects(t *testing.T) {
	store, c, id := newFixture(t)
	store.Select(id)

	c.PointerDown(geometry.Point{X: 900, Y: 900})
	if c.State() != Idle {
		t.Errorf("state = %v, want Idle", c.State())
	}
	if store.SelectedID() != overlay.None {
		t.Errorf("selection = %d, want None", store.SelectedID())
	}
}

func TestZeroMovementLeavesPositionUnchanged(t *testing.T) {
	store, c, id := newFixture(t)
	p := geometry.Point{X: 120, Y: 110}

	c.PointerDown(p)
	c.PointerUp()

	got, _ := store.Get(id)
	if got.Position != (geometry.Point{X: 100, Y: 100}) {
		t.Errorf("position moved to %+v on a click", got.Position)
	}
}

func TestDragAccumulatesDeltas(t *testing.T) {
	store, c, id := newFixture(t)
	start := geometry.Point{X: 90, Y: 105}

	c.PointerDown(start)
	c.PointerMove(start.Add(geometry.Point{X: 10, Y: 0}))
	c.PointerMove(start.Add(geometry.Point{X: 10, Y: 10}))
	c.PointerMove(start.Add(geometry.Point{X: 5, Y: 5}))
	c.PointerUp()

	got, _ := store.Get(id)
	want := geometry.Point{X: 105, Y: 105}
	if got.Position != want {
		t.Errorf("position = %+v, want %+v", got.Position, want)
	}
}

func TestDragUsesDeltaNotAbsolutePointer(t *testing.T) {
	store, c, id := newFixture(t)
	// Grab well off the caption's center.
	c.PointerDown(geometry.Point{X: 140, Y: 115})
	c.PointerMove(geometry.Point{X: 150, Y: 115})

	got, _ := store.Get(id)
	want := geometry.Point{X: 110, Y: 100}
	if got.Position != want {
		t.Errorf("position = %+v, want %+v (anchor offset must be preserved)", got.Position, want)
	}
}

func TestSecondPressIgnoredWhileDragging(t *testing.T) {
	store := overlay.NewStore()
	a := store.Add("a", geometry.Point{X: 100, Y: 100}, 32, overlay.DefaultColor)
	b := store.Add("b", geometry.Point{X: 300, Y: 100}, 32, overlay.DefaultColor)
	c := NewController(store, hitWithin(store))

	c.PointerDown(geometry.Point{X: 100, Y: 100})
	if c.Target() != a {
		t.Fatalf("target = %d, want %d", c.Target(), a)
	}
	c.PointerDown(geometry.Point{X: 300, Y: 100})
	if c.Target() != a {
		t.Errorf("second press switched target to %d while dragging", c.Target())
	}
	if store.SelectedID() == b {
		t.Errorf("second press changed selection while dragging")
	}
}

func TestPointerLeaveEndsDrag(t *testing.T) {
	store, c, id := newFixture(t)
	c.PointerDown(geometry.Point{X: 100, Y: 100})
	c.PointerLeave()
	if c.State() != Idle {
		t.Fatalf("state = %v, want Idle after leave", c.State())
	}
	// Movement after leave is a no-op.
	c.PointerMove(geometry.Point{X: 500, Y: 500})
	got, _ := store.Get(id)
	if got.Position != (geometry.Point{X: 100, Y: 100}) {
		t.Errorf("position = %+v, want unchanged", got.Position)
	}
}

func TestTargetRemovedMidDrag(t *testing.T) {
	store, c, id := newFixture(t)
	c.PointerDown(geometry.Point{X: 100, Y: 100})
	store.Remove(id)
	c.PointerMove(geometry.Point{X: 130, Y: 100})
	if c.State() != Idle {
		t.Errorf("state = %v, want Idle after target vanished", c.State())
	}
}

func TestOverlappingCaptionsHitTopmost(t *testing.T) {
	store := overlay.NewStore()
	store.Add("under", geometry.Point{X: 100, Y: 100}, 32, overlay.DefaultColor)
	top := store.Add("over", geometry.Point{X: 110, Y: 100}, 32, overlay.DefaultColor)
	c := NewController(store, hitWithin(store))

	c.PointerDown(geometry.Point{X: 105, Y: 100})
	if c.Target() != top {
		t.Errorf("target = %d, want topmost %d", c.Target(), top)
	}
}
