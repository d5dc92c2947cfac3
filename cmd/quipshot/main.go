package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/example/quipshot/internal/config"
	"github.com/example/quipshot/internal/notify"
	"github.com/example/quipshot/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs            *flag.FlagSet
	program       string
	notifier      *notify.Notifier
	config        *config.Config
	exportAlerts  bool
	suggestAlerts bool
	editAlerts    bool
	themeName     string
	activeTheme   *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:       program,
		notifier:      r.notifier,
		config:        r.config,
		exportAlerts:  r.exportAlerts,
		suggestAlerts: r.suggestAlerts,
		editAlerts:    r.editAlerts,
		themeName:     r.themeName,
		activeTheme:   r.activeTheme,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("quipshot", flag.ExitOnError),
		program:  "quipshot",
		notifier: notify.New(prefs),
		config:   cfg,
	}
	r.fs.BoolVar(&r.exportAlerts, "notify-export", cfg.Notify.Export, "show a desktop notification after exporting a flattened image")
	r.fs.BoolVar(&r.suggestAlerts, "notify-suggest", cfg.Notify.Suggest, "show a desktop notification when caption suggestions arrive")
	r.fs.BoolVar(&r.editAlerts, "notify-edit", cfg.Notify.Edit, "show a desktop notification when an AI edit completes")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (light, dark, or a path)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventExport, r.exportAlerts)
		r.notifier.Enable(notify.EventSuggest, r.suggestAlerts)
		r.notifier.Enable(notify.EventEdit, r.editAlerts)
	}

	// Load theme if specified via CLI, Env, or Config
	themeName := r.themeName
	if themeName == "" {
		themeName = os.Getenv("QUIPSHOT_THEME")
	}
	if themeName == "" {
		themeName = r.config.Theme
	}

	var t *theme.Theme
	if cfgTheme, ok := r.config.Themes[themeName]; ok {
		t = cfgTheme
	} else {
		loader := theme.NewLoader()
		var loadErr error
		t, loadErr = loader.Load(themeName)
		if loadErr != nil {
			if themeName != "" && themeName != "default" {
				fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", themeName, loadErr)
			}
			t = theme.Default()
		}
	}
	r.activeTheme = t

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "compose":
		cmd, err = parseComposeCmd(subArgs, r)
	case "suggest":
		cmd, err = parseSuggestCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	if runErr := cmd.Run(); runErr != nil {
		return runErr
	}
	return nil
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func (r *root) notifyExport(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Export(path)
}

func (r *root) notifySuggest(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Suggest(detail, img)
}
