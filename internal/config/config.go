// Package config persists editor and view preferences as a flat JSON document
// in the user's config directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/justyntemme/cryptum/internal/debug"
)

// FileName is the settings file name inside the user config directory.
const FileName = "cryptum-text-settings.json"

const (
	ThemeLight = "Adwaita"
	ThemeDark  = "Adwaita Dark"
)

// Settings holds every persisted preference.
type Settings struct {
	EditorTheme            string `json:"editor_theme"`
	EditorMonospace        bool   `json:"editor_monospace"`
	EditorUseSpacesForTabs bool   `json:"editor_use_spaces_for_tabs"`
	EditorTabWidth         int    `json:"editor_tab_width"`
	ViewSidebar            bool   `json:"view_sidebar"`
	ViewMiniMap            bool   `json:"view_mini_map"`
	ViewHiddenFiles        bool   `json:"view_hidden_files"`
	// TreeExclude holds doublestar patterns for names the sidebar never shows.
	TreeExclude []string `json:"tree_exclude"`
}

// Defaults returns the settings used when no valid file exists.
func Defaults() Settings {
	return Settings{
		EditorTheme:            ThemeLight,
		EditorMonospace:        true,
		EditorUseSpacesForTabs: true,
		EditorTabWidth:         4,
		ViewSidebar:            true,
		ViewMiniMap:            true,
		ViewHiddenFiles:        false,
		TreeExclude:            []string{},
	}
}

// IsDark reports whether the dark theme is selected.
func (s Settings) IsDark() bool {
	return s.EditorTheme == ThemeDark
}

// Keys lists the setting names accepted by Set, in file order.
var Keys = []string{
	"editor_theme",
	"editor_monospace",
	"editor_use_spaces_for_tabs",
	"editor_tab_width",
	"view_sidebar",
	"view_mini_map",
	"view_hidden_files",
	"tree_exclude",
}

// Path returns the default settings file location.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, FileName)
}

// Store owns the in-memory settings and the file behind them.
type Store struct {
	mu       sync.RWMutex
	settings Settings
	path     string
	parseErr error // Set when the file existed but could not be decoded
}

// NewStore creates a store for path. An empty path selects Path().
func NewStore(path string) *Store {
	if path == "" {
		path = Path()
	}
	return &Store{
		settings: Defaults(),
		path:     path,
	}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing file is created empty and an empty
// or malformed file yields Defaults. Load never fails; problems are logged and
// a decode failure is kept for ParseError.
func (s *Store) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.parseErr = nil
	s.settings = Defaults()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		debug.Log(debug.CONFIG, "creating empty settings file", zap.String("path", s.path))
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			debug.Warn("settings: create directory", zap.Error(err))
		} else if err := os.WriteFile(s.path, nil, 0o644); err != nil {
			debug.Warn("settings: create file", zap.Error(err))
		}
		return s.settings
	}
	if err != nil {
		debug.Warn("settings: read failed, using defaults", zap.String("path", s.path), zap.Error(err))
		return s.settings
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		debug.Log(debug.CONFIG, "settings file empty, using defaults", zap.String("path", s.path))
		return s.settings
	}

	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		debug.Log(debug.CONFIG, "settings parse error, using defaults", zap.Error(err))
		s.parseErr = err
		return s.settings
	}
	if cfg.EditorTabWidth <= 0 {
		cfg.EditorTabWidth = Defaults().EditorTabWidth
	}
	if cfg.TreeExclude == nil {
		cfg.TreeExclude = []string{}
	}

	debug.Log(debug.CONFIG, "settings loaded", zap.String("path", s.path))
	s.settings = cfg
	return cfg
}

// Save replaces the in-memory settings and overwrites the file wholesale.
func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.saveUnlocked()
}

// saveUnlocked writes the current settings; caller must hold the lock.
func (s *Store) saveUnlocked() error {
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := writeAtomic(s.path, data, 0o644); err != nil {
		debug.Warn("settings: save failed", zap.String("path", s.path), zap.Error(err))
		return err
	}
	debug.Log(debug.CONFIG, "settings saved", zap.String("path", s.path))
	return nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.settings
	out.TreeExclude = make([]string, len(s.settings.TreeExclude))
	copy(out.TreeExclude, s.settings.TreeExclude)
	return out
}

// ParseError returns the decode error from the last Load, if any.
func (s *Store) ParseError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parseErr
}

// update applies fn and saves.
func (s *Store) update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.settings)
	return s.saveUnlocked()
}

func (s *Store) SetTheme(theme string) error {
	return s.update(func(c *Settings) { c.EditorTheme = theme })
}

// ToggleTheme switches between the light and dark scheme and returns the new
// theme name.
func (s *Store) ToggleTheme() (string, error) {
	var theme string
	err := s.update(func(c *Settings) {
		if c.EditorTheme == ThemeDark {
			c.EditorTheme = ThemeLight
		} else {
			c.EditorTheme = ThemeDark
		}
		theme = c.EditorTheme
	})
	return theme, err
}

func (s *Store) SetMonospace(on bool) error {
	return s.update(func(c *Settings) { c.EditorMonospace = on })
}

func (s *Store) SetUseSpacesForTabs(on bool) error {
	return s.update(func(c *Settings) { c.EditorUseSpacesForTabs = on })
}

// SetTabWidth rejects widths below one.
func (s *Store) SetTabWidth(width int) error {
	if width < 1 {
		return fmt.Errorf("tab width must be positive, got %d", width)
	}
	return s.update(func(c *Settings) { c.EditorTabWidth = width })
}

func (s *Store) SetSidebar(on bool) error {
	return s.update(func(c *Settings) { c.ViewSidebar = on })
}

func (s *Store) SetMiniMap(on bool) error {
	return s.update(func(c *Settings) { c.ViewMiniMap = on })
}

func (s *Store) SetHiddenFiles(on bool) error {
	return s.update(func(c *Settings) { c.ViewHiddenFiles = on })
}

func (s *Store) SetTreeExclude(patterns []string) error {
	patterns = append([]string{}, patterns...)
	return s.update(func(c *Settings) { c.TreeExclude = patterns })
}

// Set assigns a setting by its file key from its string form. Booleans accept
// anything strconv.ParseBool does; tree_exclude takes a comma separated list.
func (s *Store) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "editor_theme":
		return s.SetTheme(value)
	case "editor_tab_width":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return s.SetTabWidth(n)
	case "tree_exclude":
		var patterns []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		return s.SetTreeExclude(patterns)
	}

	setters := map[string]func(bool) error{
		"editor_monospace":           s.SetMonospace,
		"editor_use_spaces_for_tabs": s.SetUseSpacesForTabs,
		"view_sidebar":               s.SetSidebar,
		"view_mini_map":              s.SetMiniMap,
		"view_hidden_files":          s.SetHiddenFiles,
	}
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	on, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return set(on)
}
