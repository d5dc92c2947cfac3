package theme

import (
	"image/color"
)

// Theme defines the color palette for the application UI.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Main window background (behind the canvas)
	Foreground color.RGBA // Main text color

	// Header & status bar
	HeaderBackground color.RGBA
	HeaderText       color.RGBA
	StatusBackground color.RGBA
	StatusText       color.RGBA

	// Suggestion sidebar
	SidebarBackground color.RGBA
	SidebarText       color.RGBA
	SidebarHighlight  color.RGBA

	// Shortcut buttons
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Caption rendering
	CaptionFill    color.RGBA // Default fill for new captions
	CaptionOutline color.RGBA // Contrast outline stamped behind caption text

	// Selection marker around the active caption
	SelectionPrimary   color.RGBA
	SelectionSecondary color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		HeaderBackground:      color.RGBA{220, 220, 220, 255},
		HeaderText:            color.RGBA{0, 0, 0, 255},
		StatusBackground:      color.RGBA{220, 220, 220, 255},
		StatusText:            color.RGBA{0, 0, 0, 255},
		SidebarBackground:     color.RGBA{235, 235, 235, 255},
		SidebarText:           color.RGBA{0, 0, 0, 255},
		SidebarHighlight:      color.RGBA{200, 200, 200, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBackgroundPress: color.RGBA{150, 150, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		CaptionFill:           color.RGBA{255, 255, 255, 255},
		CaptionOutline:        color.RGBA{0, 0, 0, 255},
		SelectionPrimary:      color.RGBA{255, 255, 255, 255},
		SelectionSecondary:    color.RGBA{0, 0, 0, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
	}
}
