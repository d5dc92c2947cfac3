package surface

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/quipshot/internal/caption"
	"github.com/example/quipshot/internal/clipboard"
	"github.com/example/quipshot/internal/drag"
	"github.com/example/quipshot/internal/export"
	"github.com/example/quipshot/internal/geometry"
	"github.com/example/quipshot/internal/imgsource"
	"github.com/example/quipshot/internal/notify"
	"github.com/example/quipshot/internal/overlay"
	"github.com/example/quipshot/internal/theme"
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeEditCaption
	modeEditInstruction
)

// Surface drives the interactive caption editor window.
type Surface struct {
	Store     *overlay.Store
	Source    *imgsource.Source
	Suggester caption.Suggester
	Editor    caption.Editor
	Theme     *theme.Theme
	Notifier  *notify.Notifier
	SaveDir   string
	FontSize  int

	onClose   func()
	closeOnce sync.Once
}

// Option modifies a Surface during creation.
type Option func(*Surface)

// WithStore sets the caption store backing the window.
func WithStore(st *overlay.Store) Option { return func(s *Surface) { s.Store = st } }

// WithSource sets the image source displayed by the window.
func WithSource(src *imgsource.Source) Option { return func(s *Surface) { s.Source = src } }

// WithSuggester sets the caption suggestion backend.
func WithSuggester(sg caption.Suggester) Option { return func(s *Surface) { s.Suggester = sg } }

// WithEditor sets the AI image edit backend.
func WithEditor(e caption.Editor) Option { return func(s *Surface) { s.Editor = e } }

// WithTheme sets the color theme.
func WithTheme(t *theme.Theme) Option { return func(s *Surface) { s.Theme = t } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n *notify.Notifier) Option { return func(s *Surface) { s.Notifier = n } }

// WithSaveDir sets the directory exports are written to.
func WithSaveDir(dir string) Option { return func(s *Surface) { s.SaveDir = dir } }

// WithFontSize sets the font size used for new captions.
func WithFontSize(size int) Option { return func(s *Surface) { s.FontSize = size } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(s *Surface) { s.onClose = fn } }

// New creates a Surface with the provided options.
func New(opts ...Option) *Surface {
	s := &Surface{
		Theme:    theme.Default(),
		FontSize: overlay.DefaultFontSize,
		SaveDir:  ".",
	}
	for _, o := range opts {
		o(s)
	}
	if s.Store == nil {
		s.Store = overlay.NewStore()
	}
	return s
}

// spawnPoint returns where a new caption lands. The fixed default spawn
// point is kept unless it would fall outside the container.
func (s *Surface) spawnPoint(container geometry.Size) geometry.Point {
	pos := overlay.DefaultPosition
	if container.Positive() && (pos.X >= container.W || pos.Y >= container.H) {
		pos = geometry.Point{X: container.W / 2, Y: container.H / 2}
	}
	return pos
}

// addSuggested places a chosen caption candidate as a new annotation, which
// also becomes the selection. Picking a candidate always adds; it never
// rewrites an existing caption.
func (s *Surface) addSuggested(text string, container geometry.Size) overlay.ID {
	return s.Store.Add(text, s.spawnPoint(container), s.FontSize, s.Theme.CaptionFill)
}

func (s *Surface) notifyClose() {
	s.closeOnce.Do(func() {
		if s.onClose != nil {
			s.onClose()
		}
	})
}

// suggestionsEvent delivers an asynchronous model response to the event loop.
type suggestionsEvent struct {
	gen   uint64
	items []string
	err   error
}

// editReadyEvent delivers a completed AI edit to the event loop.
type editReadyEvent struct {
	gen uint64
	img *image.RGBA
	err error
}

// Run executes the UI loop using shiny's driver.
func (s *Surface) Run() { driver.Main(s.Main) }

func (s *Surface) Main(scr screen.Screen) {
	img, ok := s.Source.Image()
	if !ok {
		log.Print("no image loaded")
		return
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy() + headerHeight + bottomHeight
	if width < 640 {
		width = 640
	}
	w, err := scr.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "QuipShot"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer s.notifyClose()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-s.Store.Changes():
				w.Send(paint.Event{})
			case <-s.Source.Changes():
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	var (
		mode         inputMode
		inputBuffer  string
		suggestions  []string
		sidebarOpen  bool
		hoverItem    = -1
		hoverButton  = -1
		busy         string
		message      string
		messageUntil time.Time
	)

	controller := drag.NewController(s.Store, func(p geometry.Point) (overlay.ID, bool) {
		anns := s.Store.Annotations()
		for i := len(anns) - 1; i >= 0; i-- {
			r, err := captionBounds(anns[i])
			if err != nil {
				continue
			}
			if image.Pt(int(p.X), int(p.Y)).In(r) {
				return anns[i].ID, true
			}
		}
		return overlay.None, false
	})

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, scr, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
		}
	}()

	showMessage := func(msg string) {
		message = msg
		log.Print(msg)
		messageUntil = time.Now().Add(2 * time.Second)
	}

	containerSize := func() geometry.Size {
		natural, ok := s.Source.Natural()
		if !ok {
			return geometry.Size{}
		}
		dst := displayRect(natural, width, height, sidebarOpen)
		return geometry.Size{W: float64(dst.Dx()), H: float64(dst.Dy())}
	}

	flatten := func() (image.Image, error) {
		base, ok := s.Source.Image()
		if !ok {
			return nil, export.ErrNoImage
		}
		m := export.MetricsFor(base, containerSize())
		return export.Flatten(base, s.Store.Annotations(), m)
	}

	actions := map[string]func(){}

	actions["caption"] = func() {
		id := s.Store.Add("", s.spawnPoint(containerSize()), s.FontSize, s.Theme.CaptionFill)
		s.Store.Select(id)
		mode = modeEditCaption
		w.Send(paint.Event{})
	}

	actions["edittext"] = func() {
		if s.Store.SelectedID() == overlay.None {
			return
		}
		mode = modeEditCaption
		w.Send(paint.Event{})
	}

	actions["remove"] = func() {
		if id := s.Store.SelectedID(); id != overlay.None {
			s.Store.Remove(id)
		}
	}

	actions["grow"] = func() {
		if a, ok := s.Store.Selected(); ok {
			size := a.FontSize + overlay.FontStep
			s.Store.Update(a.ID, overlay.Patch{FontSize: &size})
		}
	}

	actions["shrink"] = func() {
		if a, ok := s.Store.Selected(); ok {
			size := a.FontSize - overlay.FontStep
			s.Store.Update(a.ID, overlay.Patch{FontSize: &size})
		}
	}

	actions["suggest"] = func() {
		if s.Suggester == nil {
			showMessage("no suggestion model configured")
			return
		}
		if busy != "" {
			return
		}
		base, ok := s.Source.Image()
		if !ok {
			return
		}
		busy = "asking model..."
		sidebarOpen = true
		suggestions = nil
		gen := s.Source.Generation()
		go func() {
			items, err := s.Suggester.Suggest(context.Background(), base, 3)
			w.Send(suggestionsEvent{gen: gen, items: items, err: err})
		}()
		w.Send(paint.Event{})
	}

	actions["aiedit"] = func() {
		if s.Editor == nil {
			showMessage("no edit service configured")
			return
		}
		if busy != "" {
			return
		}
		mode = modeEditInstruction
		inputBuffer = ""
		w.Send(paint.Event{})
	}

	actions["export"] = func() {
		flat, err := flatten()
		if err != nil {
			log.Printf("export: %v", err)
			return
		}
		path := filepath.Join(s.SaveDir, export.Filename(time.Now()))
		out, err := os.Create(path)
		if err != nil {
			log.Printf("export: %v", err)
			return
		}
		if err := export.WritePNG(out, flat); err != nil {
			log.Printf("export: %v", err)
			_ = out.Close()
			return
		}
		if err := out.Close(); err != nil {
			log.Printf("export: closing file: %v", err)
			return
		}
		s.Notifier.Export(path)
		showMessage(fmt.Sprintf("exported %s", path))
		w.Send(paint.Event{})
	}

	actions["copy"] = func() {
		flat, err := flatten()
		if err != nil {
			log.Printf("copy: %v", err)
			return
		}
		if err := clipboard.WriteImage(flat); err != nil {
			log.Printf("copy: %v", err)
			return
		}
		showMessage("image copied to clipboard")
		w.Send(paint.Event{})
	}

	actions["quit"] = func() {
		w.Send(lifecycle.Event{To: lifecycle.StageDead})
	}

	handleAction := func(name string) {
		if fn, ok := actions[name]; ok {
			fn()
		}
		w.Send(paint.Event{})
	}

	keyRunes := map[rune]string{
		't': "caption",
		's': "suggest",
		'e': "aiedit",
		'x': "export",
		'c': "copy",
		'+': "grow",
		'=': "grow",
		'-': "shrink",
	}

	dispatchEdit := func(instruction string) {
		base, ok := s.Source.Image()
		if !ok {
			return
		}
		busy = "editing image..."
		gen := s.Source.Generation()
		go func() {
			out, err := s.Editor.Edit(context.Background(), base, instruction)
			var rgba *image.RGBA
			if err == nil {
				rgba = image.NewRGBA(out.Bounds())
				draw.Draw(rgba, rgba.Bounds(), out, out.Bounds().Min, draw.Src)
			}
			w.Send(editReadyEvent{gen: gen, img: rgba, err: err})
		}()
		w.Send(paint.Event{})
	}

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			w.Send(paint.Event{})
		case suggestionsEvent:
			busy = ""
			if e.gen != s.Source.Generation() {
				log.Print("discarding stale suggestions")
				w.Send(paint.Event{})
				continue
			}
			if e.err != nil {
				log.Printf("suggest: %v", e.err)
				showMessage("suggestion request failed")
				sidebarOpen = false
				w.Send(paint.Event{})
				continue
			}
			suggestions = e.items
			if base, ok := s.Source.Image(); ok {
				s.Notifier.Suggest(fmt.Sprintf("%d options", len(suggestions)), base)
			}
			w.Send(paint.Event{})
		case editReadyEvent:
			busy = ""
			if e.gen != s.Source.Generation() {
				log.Print("discarding stale edit result")
				w.Send(paint.Event{})
				continue
			}
			if e.err != nil {
				log.Printf("ai edit: %v", e.err)
				showMessage("edit request failed")
				w.Send(paint.Event{})
				continue
			}
			s.Source.Replace(e.img)
			s.Store.Clear()
			s.Notifier.Edit("done")
			showMessage("edit applied")
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil {
				if dropCount < frameDropThreshold {
					paintCancel()
					dropCount++
				}
			}
			paintMu.Unlock()
			base, _ := s.Source.Image()
			st := paintState{
				width:         width,
				height:        height,
				img:           base,
				annotations:   s.Store.Annotations(),
				selected:      s.Store.SelectedID(),
				mode:          mode,
				inputBuffer:   inputBuffer,
				suggestions:   suggestions,
				sidebarOpen:   sidebarOpen,
				hoverItem:     hoverItem,
				hoverShortcut: hoverButton,
				busy:          busy,
				message:       message,
				messageUntil:  messageUntil,
				theme:         s.Theme,
			}
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}
		case mouse.Event:
			if message != "" && time.Now().Before(messageUntil) && e.Direction == mouse.DirPress {
				messageUntil = time.Time{}
				w.Send(paint.Event{})
				continue
			}
			p := image.Point{int(e.X), int(e.Y)}

			if int(e.Y) >= height-bottomHeight {
				if controller.State() == drag.Dragging {
					controller.PointerLeave()
				}
				hoverButton = -1
				for i, b := range currentShortcutRects() {
					if p.In(b.rect) {
						hoverButton = i
						if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
							handleAction(b.action)
						}
						break
					}
				}
				if e.Direction == mouse.DirNone {
					w.Send(paint.Event{})
				}
				continue
			}
			hoverButton = -1

			if sidebarOpen && int(e.X) >= width-sidebarWidth && int(e.Y) >= headerHeight {
				if controller.State() == drag.Dragging {
					controller.PointerLeave()
				}
				hoverItem = -1
				for i, r := range currentSuggestionRects() {
					if p.In(r) {
						hoverItem = i
						if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress && i < len(suggestions) {
							s.addSuggested(suggestions[i], containerSize())
							sidebarOpen = false
							hoverItem = -1
						}
						break
					}
				}
				w.Send(paint.Event{})
				continue
			}
			hoverItem = -1

			natural, ok := s.Source.Natural()
			if !ok {
				continue
			}
			dst := displayRect(natural, width, height, sidebarOpen)
			cp := geometry.Point{X: float64(p.X - dst.Min.X), Y: float64(p.Y - dst.Min.Y)}

			if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
				if mode == modeEditCaption {
					mode = modeNormal
				}
				controller.PointerDown(cp)
				w.Send(paint.Event{})
			} else if e.Direction == mouse.DirNone && controller.State() == drag.Dragging {
				controller.PointerMove(cp)
			} else if e.Direction == mouse.DirRelease {
				controller.PointerUp()
				w.Send(paint.Event{})
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			switch mode {
			case modeEditCaption:
				a, ok := s.Store.Selected()
				if !ok {
					mode = modeNormal
					w.Send(paint.Event{})
					continue
				}
				switch e.Code {
				case key.CodeReturnEnter, key.CodeEscape:
					mode = modeNormal
					if a.Content == "" {
						s.Store.Remove(a.ID)
					}
					w.Send(paint.Event{})
					continue
				case key.CodeDeleteBackspace:
					if len(a.Content) > 0 {
						runes := []rune(a.Content)
						content := string(runes[:len(runes)-1])
						s.Store.Update(a.ID, overlay.Patch{Content: &content})
					}
					continue
				}
				if e.Rune > 0 && !unicode.IsControl(e.Rune) {
					content := a.Content + string(e.Rune)
					s.Store.Update(a.ID, overlay.Patch{Content: &content})
				}
				continue
			case modeEditInstruction:
				switch e.Code {
				case key.CodeReturnEnter:
					mode = modeNormal
					if inputBuffer != "" {
						dispatchEdit(inputBuffer)
					}
					inputBuffer = ""
					w.Send(paint.Event{})
					continue
				case key.CodeEscape:
					mode = modeNormal
					inputBuffer = ""
					w.Send(paint.Event{})
					continue
				case key.CodeDeleteBackspace:
					if len(inputBuffer) > 0 {
						runes := []rune(inputBuffer)
						inputBuffer = string(runes[:len(runes)-1])
						w.Send(paint.Event{})
					}
					continue
				}
				if e.Rune > 0 && !unicode.IsControl(e.Rune) {
					inputBuffer += string(e.Rune)
					w.Send(paint.Event{})
				}
				continue
			}

			if e.Code == key.CodeEscape {
				if sidebarOpen {
					sidebarOpen = false
				} else {
					s.Store.Deselect()
				}
				w.Send(paint.Event{})
				continue
			}
			if e.Code == key.CodeDeleteBackspace || e.Code == key.CodeDeleteForward {
				handleAction("remove")
				continue
			}
			if e.Code == key.CodeReturnEnter {
				handleAction("edittext")
				continue
			}
			if e.Rune == 'q' || e.Rune == 'Q' {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
			switch e.Code {
			case key.CodeLeftArrow, key.CodeRightArrow, key.CodeUpArrow, key.CodeDownArrow:
				if a, ok := s.Store.Selected(); ok {
					pos := a.Position
					switch e.Code {
					case key.CodeLeftArrow:
						pos.X--
					case key.CodeRightArrow:
						pos.X++
					case key.CodeUpArrow:
						pos.Y--
					case key.CodeDownArrow:
						pos.Y++
					}
					s.Store.Update(a.ID, overlay.Patch{Position: &pos})
				}
				continue
			}
			if action, ok := keyRunes[unicode.ToLower(e.Rune)]; ok {
				handleAction(action)
			}
		}
	}
}
