package surface

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/quipshot/internal/export"
	"github.com/example/quipshot/internal/geometry"
	"github.com/example/quipshot/internal/overlay"
	"github.com/example/quipshot/internal/theme"
)

const (
	headerHeight = 24
	bottomHeight = 24
	sidebarWidth = 220
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var (
	captionFontOnce sync.Once
	captionFont     *opentype.Font
	captionFontErr  error

	faceMu    sync.Mutex
	faceCache = map[int]font.Face{}

	messageFace font.Face
)

func init() {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 48, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// captionFace returns a bold face at the given pixel size. Faces are cached
// since captions reuse a small set of sizes.
func captionFace(size int) (font.Face, error) {
	captionFontOnce.Do(func() {
		captionFont, captionFontErr = opentype.Parse(gobold.TTF)
	})
	if captionFontErr != nil {
		return nil, captionFontErr
	}
	faceMu.Lock()
	defer faceMu.Unlock()
	if face, ok := faceCache[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(captionFont, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	faceCache[size] = face
	return face, nil
}

// displayRect returns the destination rectangle for the base image. The image
// is scaled to fit the available canvas area while preserving aspect ratio and
// anchored just below the header so its position stays stable across resizes.
func displayRect(natural geometry.Size, winW, winH int, sidebar bool) image.Rectangle {
	availW := winW
	if sidebar {
		availW -= sidebarWidth
	}
	availH := winH - headerHeight - bottomHeight
	if availW < 1 || availH < 1 || !natural.Positive() {
		return image.Rect(0, headerHeight, 1, headerHeight+1)
	}
	zx := float64(availW) / natural.W
	zy := float64(availH) / natural.H
	z := zx
	if zy < zx {
		z = zy
	}
	w := int(natural.W * z)
	h := int(natural.H * z)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return image.Rect(0, headerHeight, w, headerHeight+h)
}

// captionBounds returns the rectangle a caption occupies in container space.
// The caption's position is its visual center, matching the exported raster.
func captionBounds(a overlay.Annotation) (image.Rectangle, error) {
	face, err := captionFace(a.FontSize)
	if err != nil {
		return image.Rectangle{}, err
	}
	d := &font.Drawer{Face: face}
	w := d.MeasureString(a.Content).Ceil()
	metrics := face.Metrics()
	h := metrics.Ascent.Ceil() + metrics.Descent.Ceil()
	if w < a.FontSize {
		// Keep short or empty captions grabbable.
		w = a.FontSize
	}
	cx := int(a.Position.X)
	cy := int(a.Position.Y)
	return image.Rect(cx-w/2, cy-h/2, cx+w-w/2, cy+h-h/2), nil
}

func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// backdropCache holds a cached checkerboard backdrop.
var backdropCache *image.RGBA

func drawBackdrop(dst *image.RGBA, t *theme.Theme) {
	b := dst.Bounds()
	if backdropCache == nil || backdropCache.Bounds() != b {
		backdropCache = image.NewRGBA(b)
		drawCheckerboard(backdropCache, backdropCache.Bounds(), 8, t.CheckerLight, t.CheckerDark)
	}
	draw.Draw(dst, b, backdropCache, image.Point{}, draw.Src)
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.Set(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func drawRectOutline(img *image.RGBA, rect image.Rectangle, col color.Color) {
	drawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col)
	drawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col)
	drawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col)
	drawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col)
}

func drawDashedLine(img *image.RGBA, x0, y0, x1, y1, dash int, c1, c2 color.Color) {
	horiz := y0 == y1
	length := x1 - x0
	if !horiz {
		length = y1 - y0
	}
	if length < 0 {
		length = -length
	}
	set := func(i int, col color.Color) {
		var p image.Point
		if horiz {
			if x0 < x1 {
				p = image.Pt(x0+i, y0)
			} else {
				p = image.Pt(x0-i, y0)
			}
		} else {
			if y0 < y1 {
				p = image.Pt(x0, y0+i)
			} else {
				p = image.Pt(x0, y0-i)
			}
		}
		if p.In(img.Bounds()) {
			img.Set(p.X, p.Y, col)
		}
	}
	for i := 0; i <= length; i += dash * 2 {
		for j := 0; j < dash && i+j <= length; j++ {
			set(i+j, c1)
		}
		for j := 0; j < dash && i+dash+j <= length; j++ {
			set(i+dash+j, c2)
		}
	}
}

func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash int, c1, c2 color.Color) {
	drawDashedLine(img, rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y, dash, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Min.Y, rect.Max.X, rect.Max.Y, dash, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Max.Y, rect.Min.X, rect.Max.Y, dash, c1, c2)
	drawDashedLine(img, rect.Min.X, rect.Max.Y, rect.Min.X, rect.Min.Y, dash, c1, c2)
}

// drawCaption paints a caption centered at its position, offset into window
// coordinates by base. The contrast outline uses the same offsets as the
// exporter so the on-screen preview matches the flattened result.
func drawCaption(dst *image.RGBA, a overlay.Annotation, base image.Point, t *theme.Theme) error {
	if a.Content == "" {
		return nil
	}
	face, err := captionFace(a.FontSize)
	if err != nil {
		return err
	}
	d := &font.Drawer{Dst: dst, Face: face}
	w := d.MeasureString(a.Content)
	metrics := face.Metrics()
	cx := fixed.I(base.X + int(a.Position.X))
	cy := fixed.I(base.Y + int(a.Position.Y))
	dot := fixed.Point26_6{
		X: cx - w/2,
		Y: cy + (metrics.Ascent-metrics.Descent)/2,
	}

	off := fixed.I(int(float64(a.FontSize)*export.OutlineRatio + 0.5))
	if off < fixed.I(1) {
		off = fixed.I(1)
	}
	d.Src = image.NewUniform(t.CaptionOutline)
	for _, delta := range []fixed.Point26_6{
		{X: -off, Y: -off}, {X: 0, Y: -off}, {X: off, Y: -off},
		{X: -off, Y: 0}, {X: off, Y: 0},
		{X: -off, Y: off}, {X: 0, Y: off}, {X: off, Y: off},
	} {
		d.Dot = fixed.Point26_6{X: dot.X + delta.X, Y: dot.Y + delta.Y}
		d.DrawString(a.Content)
	}

	d.Src = image.NewUniform(a.Color)
	d.Dot = dot
	d.DrawString(a.Content)
	return nil
}

type paintState struct {
	width, height int
	img           *image.RGBA
	annotations   []overlay.Annotation
	selected      overlay.ID
	mode          inputMode
	inputBuffer   string
	suggestions   []string
	sidebarOpen   bool
	hoverItem     int
	hoverShortcut int
	busy          string
	message       string
	messageUntil  time.Time
	theme         *theme.Theme
}

type shortcutButton struct {
	label  string
	action string
	rect   image.Rectangle
}

// The paint goroutine publishes fresh hit rect slices each frame; the event
// loop's mouse handler reads them through the accessors. Published slices are
// never mutated afterwards.
var (
	rectsMu         sync.Mutex
	shortcutRects   []shortcutButton
	suggestionRects []image.Rectangle
)

func currentShortcutRects() []shortcutButton {
	rectsMu.Lock()
	defer rectsMu.Unlock()
	return shortcutRects
}

func currentSuggestionRects() []image.Rectangle {
	rectsMu.Lock()
	defer rectsMu.Unlock()
	return suggestionRects
}

func publishShortcutRects(rects []shortcutButton) {
	rectsMu.Lock()
	shortcutRects = rects
	rectsMu.Unlock()
}

func publishSuggestionRects(rects []image.Rectangle) {
	rectsMu.Lock()
	suggestionRects = rects
	rectsMu.Unlock()
}

func drawHeader(dst *image.RGBA, st paintState) {
	draw.Draw(dst, image.Rect(0, 0, st.width, headerHeight),
		&image.Uniform{st.theme.HeaderBackground}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.HeaderText), Face: basicfont.Face7x13,
		Dot: fixed.P(4, 16)}
	title := "QuipShot"
	if len(st.annotations) > 0 {
		title = fmt.Sprintf("QuipShot (%d captions)", len(st.annotations))
	}
	d.DrawString(title)
	if st.busy != "" {
		bd := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.HeaderText), Face: basicfont.Face7x13}
		w := bd.MeasureString(st.busy).Ceil()
		bd.Dot = fixed.P(st.width-w-4, 16)
		bd.DrawString(st.busy)
	}
}

func drawShortcutBar(dst *image.RGBA, st paintState) {
	rect := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, rect, &image.Uniform{st.theme.StatusBackground}, image.Point{}, draw.Src)
	publishShortcutRects(nil)

	if st.mode == modeEditCaption {
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.StatusText), Face: basicfont.Face7x13,
			Dot: fixed.P(4, st.height-bottomHeight+16)}
		d.DrawString("Enter:done  Esc:cancel  (editing caption)")
		return
	}
	if st.mode == modeEditInstruction {
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.StatusText), Face: basicfont.Face7x13,
			Dot: fixed.P(4, st.height-bottomHeight+16)}
		d.DrawString("edit> " + st.inputBuffer + "|")
		return
	}

	buttons := []shortcutButton{
		{label: "T:caption", action: "caption"},
		{label: "S:suggest", action: "suggest"},
		{label: "E:ai edit", action: "aiedit"},
		{label: "X:export", action: "export"},
		{label: "C:copy", action: "copy"},
	}
	if st.selected != overlay.None {
		buttons = append(buttons,
			shortcutButton{label: "Ret:edit text", action: "edittext"},
			shortcutButton{label: "Del:remove", action: "remove"},
			shortcutButton{label: "+:bigger", action: "grow"},
			shortcutButton{label: "-:smaller", action: "shrink"},
		)
	}
	buttons = append(buttons, shortcutButton{label: "Q:quit", action: "quit"})

	x := 4
	y := st.height - bottomHeight + 16
	meas := &font.Drawer{Face: basicfont.Face7x13}
	rects := make([]shortcutButton, 0, len(buttons))
	for i := range buttons {
		b := &buttons[i]
		w := meas.MeasureString(b.label).Ceil()
		b.rect = image.Rect(x-2, y-14, x+w+2, y+4)
		bg := st.theme.ButtonBackground
		if i == st.hoverShortcut {
			bg = st.theme.ButtonBackgroundHover
		}
		draw.Draw(dst, b.rect, &image.Uniform{bg}, image.Point{}, draw.Src)
		drawRectOutline(dst, b.rect, st.theme.ButtonBorder)
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.ButtonText), Face: basicfont.Face7x13,
			Dot: fixed.P(b.rect.Min.X+2, b.rect.Min.Y+14)}
		d.DrawString(b.label)
		rects = append(rects, *b)
		x = b.rect.Max.X + 8
	}
	publishShortcutRects(rects)
}

func drawSidebar(dst *image.RGBA, st paintState) {
	if !st.sidebarOpen {
		publishSuggestionRects(nil)
		return
	}
	rect := image.Rect(st.width-sidebarWidth, headerHeight, st.width, st.height-bottomHeight)
	draw.Draw(dst, rect, &image.Uniform{st.theme.SidebarBackground}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.SidebarText), Face: basicfont.Face7x13,
		Dot: fixed.P(rect.Min.X+4, rect.Min.Y+16)}
	d.DrawString("Suggestions (Esc closes)")

	rects := make([]image.Rectangle, 0, len(st.suggestions))
	y := rect.Min.Y + 24
	for i, s := range st.suggestions {
		item := image.Rect(rect.Min.X+2, y, rect.Max.X-2, y+20)
		if i == st.hoverItem {
			draw.Draw(dst, item, &image.Uniform{st.theme.SidebarHighlight}, image.Point{}, draw.Src)
		}
		label := s
		meas := &font.Drawer{Face: basicfont.Face7x13}
		for len(label) > 1 && meas.MeasureString(label).Ceil() > item.Dx()-8 {
			label = label[:len(label)-1]
		}
		td := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.SidebarText), Face: basicfont.Face7x13,
			Dot: fixed.P(item.Min.X+4, y+14)}
		td.DrawString(label)
		rects = append(rects, item)
		y += 22
	}
	publishSuggestionRects(rects)
	if len(st.suggestions) == 0 {
		td := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.SidebarText), Face: basicfont.Face7x13,
			Dot: fixed.P(rect.Min.X+4, y+14)}
		td.DrawString("(waiting for model)")
	}
}

func drawFrame(ctx context.Context, scr screen.Screen, w screen.Window, st paintState) {
	b, err := scr.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	drawBackdrop(b.RGBA(), st.theme)
	if ctx.Err() != nil {
		return
	}

	if st.img != nil {
		natural := geometry.Size{W: float64(st.img.Bounds().Dx()), H: float64(st.img.Bounds().Dy())}
		dst := displayRect(natural, st.width, st.height, st.sidebarOpen)
		xdraw.ApproxBiLinear.Scale(b.RGBA(), dst, st.img, st.img.Bounds(), draw.Over, nil)
		if ctx.Err() != nil {
			return
		}

		for _, a := range st.annotations {
			content := a.Content
			if st.mode == modeEditCaption && a.ID == st.selected {
				a.Content = content + "|"
			}
			if err := drawCaption(b.RGBA(), a, dst.Min, st.theme); err != nil {
				log.Printf("draw caption: %v", err)
			}
			if a.ID == st.selected {
				a.Content = content
				if r, err := captionBounds(a); err == nil {
					r = r.Add(dst.Min).Inset(-4)
					drawDashedRect(b.RGBA(), r, 4, st.theme.SelectionPrimary, st.theme.SelectionSecondary)
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}

	drawHeader(b.RGBA(), st)
	drawSidebar(b.RGBA(), st)
	drawShortcutBar(b.RGBA(), st)

	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		d := &font.Drawer{Dst: b.RGBA(), Src: image.NewUniform(st.theme.Foreground), Face: messageFace}
		wmsg := d.MeasureString(st.message).Ceil()
		ascent := messageFace.Metrics().Ascent.Ceil()
		descent := messageFace.Metrics().Descent.Ceil()
		px := (st.width - wmsg) / 2
		py := (st.height-ascent-descent)/2 + ascent
		rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
		draw.Draw(b.RGBA(), rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
		drawRectOutline(b.RGBA(), rect, st.theme.Foreground)
		d.Dot = fixed.P(px, py)
		d.DrawString(st.message)
	}

	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
