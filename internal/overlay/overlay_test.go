package overlay

import (
	"image/color"
	"testing"

	"github.com/example/quipshot/internal/geometry"
)

func TestAddSelectsAndPreservesOrder(t *testing.T) {
	s := NewStore()
	first := s.Add("top text", geometry.Point{X: 10, Y: 10}, 32, DefaultColor)
	second := s.Add("bottom text", geometry.Point{X: 10, Y: 200}, 32, DefaultColor)

	if first == second {
		t.Fatalf("ids must be unique, both were %d", first)
	}
	if got := s.SelectedID(); got != second {
		t.Errorf("selection = %d, want most recently added %d", got, second)
	}
	anns := s.Annotations()
	if len(anns) != 2 || anns[0].ID != first || anns[1].ID != second {
		t.Errorf("unexpected order: %+v", anns)
	}
}

func TestUpdateClampsFontSize(t *testing.T) {
	s := NewStore()
	id := s.Add("caption", DefaultPosition, 40, DefaultColor)

	for _, tc := range []struct {
		request int
		want    int
	}{
		{MaxFontSize + 1000, MaxFontSize},
		{MinFontSize - 30, MinFontSize},
		{64, 64},
		{MinFontSize, MinFontSize},
		{MaxFontSize, MaxFontSize},
	} {
		size := tc.request
		s.Update(id, Patch{FontSize: &size})
		got, ok := s.Get(id)
		if !ok {
			t.Fatal("annotation disappeared")
		}
		if got.FontSize != tc.want {
			t.Errorf("requested %d: font size = %d, want %d", tc.request, got.FontSize, tc.want)
		}
	}
}

func TestAddClampsFontSize(t *testing.T) {
	s := NewStore()
	id := s.Add("tiny", DefaultPosition, 1, DefaultColor)
	if a, _ := s.Get(id); a.FontSize != MinFontSize {
		t.Errorf("font size = %d, want clamped %d", a.FontSize, MinFontSize)
	}
}

func TestUpdateAbsentIDIsNoop(t *testing.T) {
	s := NewStore()
	id := s.Add("caption", DefaultPosition, 32, DefaultColor)
	content := "changed"
	s.Update(id+100, Patch{Content: &content})
	if a, _ := s.Get(id); a.Content != "caption" {
		t.Errorf("unrelated annotation mutated: %q", a.Content)
	}
}

func TestRemoveClearsSelection(t *testing.T) {
	s := NewStore()
	id := s.Add("caption", DefaultPosition, 32, DefaultColor)
	s.Remove(id)
	if s.Len() != 0 {
		t.Fatalf("expected empty store, have %d", s.Len())
	}
	// Selecting the removed id must leave selection at none.
	s.Select(id)
	if got := s.SelectedID(); got != None {
		t.Errorf("selection = %d, want None after removing %d", got, id)
	}
}

func TestRemoveKeepsOtherSelection(t *testing.T) {
	s := NewStore()
	keep := s.Add("keep", DefaultPosition, 32, DefaultColor)
	drop := s.Add("drop", DefaultPosition, 32, DefaultColor)
	s.Select(keep)
	s.Remove(drop)
	if got := s.SelectedID(); got != keep {
		t.Errorf("selection = %d, want %d", got, keep)
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.Add("one", DefaultPosition, 32, DefaultColor)
	s.Add("two", DefaultPosition, 32, DefaultColor)
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("annotations remain after Clear: %d", s.Len())
	}
	if got := s.SelectedID(); got != None {
		t.Errorf("selection = %d, want None", got)
	}
	// IDs keep advancing across Clear.
	next := s.Add("three", DefaultPosition, 32, DefaultColor)
	if next <= 2 {
		t.Errorf("id %d reused after Clear", next)
	}
}

func TestSnapshotUnaffectedByLaterMutation(t *testing.T) {
	s := NewStore()
	id := s.Add("original", DefaultPosition, 32, DefaultColor)
	snapshot := s.Annotations()

	content := "edited"
	s.Update(id, Patch{Content: &content})

	if snapshot[0].Content != "original" {
		t.Errorf("snapshot mutated in place: %q", snapshot[0].Content)
	}
	if cur, _ := s.Get(id); cur.Content != "edited" {
		t.Errorf("store missed the update: %q", cur.Content)
	}
}

func TestChangesCoalesce(t *testing.T) {
	s := NewStore()
	s.Add("one", DefaultPosition, 32, DefaultColor)
	s.Add("two", DefaultPosition, 32, DefaultColor)

	select {
	case <-s.Changes():
	default:
		t.Fatal("expected a pending change tick")
	}
	select {
	case <-s.Changes():
		t.Fatal("ticks should coalesce into one")
	default:
	}
}

func TestPatchColor(t *testing.T) {
	s := NewStore()
	id := s.Add("caption", DefaultPosition, 32, DefaultColor)
	c := color.RGBA{R: 255, A: 255}
	s.Update(id, Patch{Color: &c})
	if a, _ := s.Get(id); a.Color != c {
		t.Errorf("color = %+v, want %+v", a.Color, c)
	}
}
