// Package overlay holds the caption collection layered over the base image.
// The store is the single source of truth for the render surface and the
// exporter: every mutation replaces the annotation slice wholesale so readers
// can hold onto a snapshot without seeing later edits.
package overlay

import (
	"image/color"
	"sync"

	"github.com/example/quipshot/internal/geometry"
)

const (
	// MinFontSize and MaxFontSize bound every caption's font size in
	// container pixels. Updates outside the range are clamped, not rejected.
	MinFontSize = 12
	MaxFontSize = 120

	// FontStep is the increment applied by the surface's size controls.
	FontStep = 4

	// DefaultFontSize is used for captions added without an explicit size.
	DefaultFontSize = 32
)

// DefaultPosition is the spawn point for new captions in container
// coordinates. It is a fixed constant rather than the computed container
// center; captions landing outside a small image can simply be dragged in.
var DefaultPosition = geometry.Point{X: 400, Y: 300}

// DefaultColor is the classic caption fill.
var DefaultColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// ID identifies an annotation within a store. IDs are assigned at creation
// and never reused, even after removal.
type ID int64

// None is the zero ID; it never names an annotation.
const None ID = 0

// Annotation is one positioned, styled caption. Position is the center of
// the caption's bounding box in container coordinates and is unbounded: a
// caption may be dragged past the visible image.
type Annotation struct {
	ID       ID
	Content  string
	Position geometry.Point
	FontSize int
	Color    color.RGBA
}

// Patch is a partial annotation update. Nil fields are left untouched.
type Patch struct {
	Content  *string
	Position *geometry.Point
	FontSize *int
	Color    *color.RGBA
}

// Store owns the ordered annotation collection and the current selection.
// Insertion order is paint order: later captions render above earlier ones.
type Store struct {
	mu          sync.Mutex
	annotations []Annotation
	selected    ID
	nextID      ID

	changes chan struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{nextID: 1, changes: make(chan struct{}, 1)}
}

// Changes delivers a tick after every mutation. The channel holds at most
// one pending tick; the render surface drains it and repaints.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

func (s *Store) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func clampFontSize(size int) int {
	if size < MinFontSize {
		return MinFontSize
	}
	if size > MaxFontSize {
		return MaxFontSize
	}
	return size
}

// Add appends a new caption and makes it the selection. The assigned ID is
// returned.
func (s *Store) Add(content string, pos geometry.Point, fontSize int, col color.RGBA) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	next := make([]Annotation, len(s.annotations), len(s.annotations)+1)
	copy(next, s.annotations)
	s.annotations = append(next, Annotation{
		ID:       id,
		Content:  content,
		Position: pos,
		FontSize: clampFontSize(fontSize),
		Color:    col,
	})
	s.selected = id
	s.notify()
	return id
}

// Update applies patch to the annotation with the given id. An absent id is
// a silent no-op; stale events racing a removal are expected and benign.
func (s *Store) Update(id ID, patch Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	next := make([]Annotation, len(s.annotations))
	copy(next, s.annotations)
	a := &next[idx]
	if patch.Content != nil {
		a.Content = *patch.Content
	}
	if patch.Position != nil {
		a.Position = *patch.Position
	}
	if patch.FontSize != nil {
		a.FontSize = clampFontSize(*patch.FontSize)
	}
	if patch.Color != nil {
		a.Color = *patch.Color
	}
	s.annotations = next
	s.notify()
}

// Remove deletes the annotation with the given id. If it was selected the
// selection resets to none. Absent ids are ignored.
func (s *Store) Remove(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	next := make([]Annotation, 0, len(s.annotations)-1)
	next = append(next, s.annotations[:idx]...)
	next = append(next, s.annotations[idx+1:]...)
	s.annotations = next
	if s.selected == id {
		s.selected = None
	}
	s.notify()
}

// Select marks id as the current selection. Selecting an id that is not in
// the collection, or None, clears the selection.
func (s *Store) Select(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != None && s.indexOf(id) < 0 {
		id = None
	}
	if s.selected == id {
		return
	}
	s.selected = id
	s.notify()
}

// Deselect clears the selection.
func (s *Store) Deselect() {
	s.Select(None)
}

// Clear removes every annotation and resets the selection. It is invoked
// whenever the base image is replaced. IDs are not recycled.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.annotations) == 0 && s.selected == None {
		return
	}
	s.annotations = nil
	s.selected = None
	s.notify()
}

// Annotations returns the current collection in insertion (and paint) order.
// The returned slice is never mutated by the store; it is safe to keep as a
// snapshot across later mutations.
func (s *Store) Annotations() []Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.annotations
}

// Get returns the annotation with the given id.
func (s *Store) Get(id ID) (Annotation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Annotation{}, false
	}
	return s.annotations[idx], true
}

// Selected returns the selected annotation, if any.
func (s *Store) Selected() (Annotation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(s.selected)
	if idx < 0 {
		return Annotation{}, false
	}
	return s.annotations[idx], true
}

// SelectedID returns the current selection, or None.
func (s *Store) SelectedID() ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Len reports the number of annotations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.annotations)
}

func (s *Store) indexOf(id ID) int {
	if id == None {
		return -1
	}
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			return i
		}
	}
	return -1
}
