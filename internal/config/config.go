package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/example/quipshot/internal/overlay"
	"github.com/example/quipshot/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Export  bool
	Suggest bool
	Edit    bool
}

// Ollama holds the connection settings for the caption suggestion model.
type Ollama struct {
	URL   string
	Model string
}

// Edit holds the settings for the image edit service.
type Edit struct {
	Endpoint string
}

// Config holds the application configuration.
type Config struct {
	Theme    string
	SaveDir  string
	FontSize int
	Ollama   Ollama
	Edit     Edit
	Notify   Notify
	Themes   map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:    "", // Default to empty to allow fallback to Env/Default
		FontSize: overlay.DefaultFontSize,
		Ollama: Ollama{
			URL:   "http://localhost:11434",
			Model: "llava",
		},
		Notify: Notify{
			Export:  false,
			Suggest: false,
			Edit:    false,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.FontSize != 0 {
		fmt.Fprintf(&sb, "font_size = %d\n", c.FontSize)
	}
	sb.WriteString("\n")

	// Ollama section
	sb.WriteString("[ollama]\n")
	fmt.Fprintf(&sb, "url = %s\n", c.Ollama.URL)
	fmt.Fprintf(&sb, "model = %s\n", c.Ollama.Model)
	sb.WriteString("\n")

	// Edit section
	if c.Edit.Endpoint != "" {
		sb.WriteString("[edit]\n")
		fmt.Fprintf(&sb, "endpoint = %s\n", c.Edit.Endpoint)
		sb.WriteString("\n")
	}

	// Notify section
	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "suggest = %v\n", c.Notify.Suggest)
	fmt.Fprintf(&sb, "edit = %v\n", c.Notify.Edit)
	sb.WriteString("\n")

	// Themes sections
	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		fmt.Fprintf(&sb, "Background: %s\n", toHex(t.Background))
		fmt.Fprintf(&sb, "Foreground: %s\n", toHex(t.Foreground))
		fmt.Fprintf(&sb, "HeaderBackground: %s\n", toHex(t.HeaderBackground))
		fmt.Fprintf(&sb, "HeaderText: %s\n", toHex(t.HeaderText))
		fmt.Fprintf(&sb, "StatusBackground: %s\n", toHex(t.StatusBackground))
		fmt.Fprintf(&sb, "StatusText: %s\n", toHex(t.StatusText))
		fmt.Fprintf(&sb, "SidebarBackground: %s\n", toHex(t.SidebarBackground))
		fmt.Fprintf(&sb, "SidebarText: %s\n", toHex(t.SidebarText))
		fmt.Fprintf(&sb, "SidebarHighlight: %s\n", toHex(t.SidebarHighlight))
		fmt.Fprintf(&sb, "ButtonBackground: %s\n", toHex(t.ButtonBackground))
		fmt.Fprintf(&sb, "ButtonBackgroundHover: %s\n", toHex(t.ButtonBackgroundHover))
		fmt.Fprintf(&sb, "ButtonBackgroundPress: %s\n", toHex(t.ButtonBackgroundPress))
		fmt.Fprintf(&sb, "ButtonText: %s\n", toHex(t.ButtonText))
		fmt.Fprintf(&sb, "ButtonBorder: %s\n", toHex(t.ButtonBorder))
		fmt.Fprintf(&sb, "CaptionFill: %s\n", toHex(t.CaptionFill))
		fmt.Fprintf(&sb, "CaptionOutline: %s\n", toHex(t.CaptionOutline))
		fmt.Fprintf(&sb, "SelectionPrimary: %s\n", toHex(t.SelectionPrimary))
		fmt.Fprintf(&sb, "SelectionSecondary: %s\n", toHex(t.SelectionSecondary))
		fmt.Fprintf(&sb, "CheckerLight: %s\n", toHex(t.CheckerLight))
		fmt.Fprintf(&sb, "CheckerDark: %s\n", toHex(t.CheckerDark))
		sb.WriteString("\n")
	}

	return sb.String()
}

func toHex(c interface{ RGBA() (r, g, b, a uint32) }) string {
	if rgba, ok := c.(color.RGBA); ok {
		if rgba.A == 255 {
			return fmt.Sprintf("#%02X%02X%02X", rgba.R, rgba.G, rgba.B)
		}
		return fmt.Sprintf("#%02X%02X%02X%02X", rgba.R, rgba.G, rgba.B, rgba.A)
	}

	// Fallback for non-color.RGBA types (though unlikely in this app's context)
	r, g, b, a := c.RGBA()
	if a == 0 {
		return "#00000000"
	}
	r8 := uint8(r >> 8)
	g8 := uint8(g >> 8)
	b8 := uint8(b >> 8)
	a8 := uint8(a >> 8)

	if a8 == 255 {
		return fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", r8, g8, b8, a8)
}
