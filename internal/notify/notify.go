package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/quipshot/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventExport emits a notification when a flattened image is written to disk.
	EventExport Event = "export"
	// EventSuggest emits a notification when caption suggestions arrive.
	EventSuggest Event = "suggest"
	// EventEdit emits a notification when an image edit completes.
	EventEdit Event = "edit"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "QuipShot",
		Events: map[Event]EventPreference{
			EventExport:  {Template: "Exported %s"},
			EventSuggest: {Template: "Suggestions ready: %s"},
			EventEdit:    {Template: "Edit applied: %s"},
		},
	}
}

// LoadPreferences reads configuration from environment variables.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("QUIPSHOT_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	apply := func(key string, event Event) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			eventPrefs := prefs.Events[event]
			eventPrefs.Template = v
			prefs.Events[event] = eventPrefs
		}
	}
	apply("QUIPSHOT_NOTIFY_EXPORT_TEXT", EventExport)
	apply("QUIPSHOT_NOTIFY_SUGGEST_TEXT", EventSuggest)
	apply("QUIPSHOT_NOTIFY_EDIT_TEXT", EventEdit)
	return prefs
}

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Export sends an export notification including the written filename when available.
func (n *Notifier) Export(path string) {
	if !n.enabledFor(EventExport) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, statErr := os.Stat(abs); statErr == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventExport, detail, opts)
}

// Suggest sends a suggestion notification with an optional image preview.
func (n *Notifier) Suggest(detail string, img image.Image) {
	if !n.enabledFor(EventSuggest) {
		return
	}
	opts := platform.Options{}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventSuggest, detail, opts)
}

// Edit sends a notification when an AI edit has been applied.
func (n *Notifier) Edit(detail string) {
	if !n.enabledFor(EventEdit) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.dispatch(EventEdit, detail, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil {
		return false
	}
	if n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.enabledFor(event) {
		return
	}
	template := strings.TrimSpace(n.template(event))
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := platform.Notify(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func (n *Notifier) template(event Event) string {
	if n == nil {
		return ""
	}
	if pref, ok := n.prefs.Events[event]; ok {
		return pref.Template
	}
	return ""
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "quipshot-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
