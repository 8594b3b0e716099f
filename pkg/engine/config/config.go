// Package config holds runtime settings for the GUI layer. Settings are read
// from an ini file and may be overridden by command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"gopkg.in/ini.v1"
)

// Config holds all runtime settings.
type Config struct {
	// Strict makes programming errors (double release, stale keys) fatal.
	Strict  bool
	Verbose bool

	// Fallback screen size used before a window exists.
	ScreenWidth  int
	ScreenHeight int

	FontSize   float64
	MenuMargin int

	// ScaleWithResolution lays menus out against a 1024-wide virtual screen.
	ScaleWithResolution bool

	Locale    string
	LocaleDir string
	SkinPath  string

	// PrefsPath is where preferences are saved. Empty disables saving.
	PrefsPath string
}

// Defaults returns the built-in settings.
func Defaults() *Config {
	return &Config{
		ScreenWidth:  800,
		ScreenHeight: 600,
		FontSize:     12,
		MenuMargin:   4,
		Locale:       "en_GB",
		LocaleDir:    "locales",
	}
}

var (
	current   = Defaults()
	currentMu sync.RWMutex
)

// Current returns the process-wide config.
func Current() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// Set replaces the process-wide config.
func Set(c *Config) {
	if c == nil {
		return
	}
	currentMu.Lock()
	current = c
	currentMu.Unlock()
}

// Load reads settings from an ini file on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	c := Defaults()
	c.PrefsPath = path
	if path == "" {
		return c, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return c, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	dev := f.Section("dev")
	c.Strict = dev.Key("strict").MustBool(c.Strict)
	c.Verbose = dev.Key("verbose").MustBool(c.Verbose)

	screen := f.Section("screen")
	c.ScreenWidth = screen.Key("width").MustInt(c.ScreenWidth)
	c.ScreenHeight = screen.Key("height").MustInt(c.ScreenHeight)

	menu := f.Section("menu")
	c.FontSize = menu.Key("font_size").MustFloat64(c.FontSize)
	c.MenuMargin = menu.Key("margin").MustInt(c.MenuMargin)
	c.ScaleWithResolution = menu.Key("scale_with_resolution").MustBool(c.ScaleWithResolution)
	c.SkinPath = menu.Key("skin").MustString(c.SkinPath)

	locale := f.Section("locale")
	c.Locale = locale.Key("language").MustString(c.Locale)
	c.LocaleDir = locale.Key("dir").MustString(c.LocaleDir)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		return fmt.Errorf("screen size %dx%d must be positive", c.ScreenWidth, c.ScreenHeight)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("font size %v must be positive", c.FontSize)
	}
	if c.MenuMargin < 0 || c.MenuMargin > 0xFFFF {
		return fmt.Errorf("menu margin %d out of range", c.MenuMargin)
	}
	return nil
}

// SetScaleWithResolution changes the preference and saves it.
func (c *Config) SetScaleWithResolution(v bool) error {
	c.ScaleWithResolution = v
	return c.save("menu", "scale_with_resolution", strconv.FormatBool(v))
}

// save writes a single key back to the preferences file, keeping any other
// content already present.
func (c *Config) save(section, key, value string) error {
	if c.PrefsPath == "" {
		return nil
	}
	f, err := ini.LooseLoad(c.PrefsPath)
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	f.Section(section).Key(key).SetValue(value)
	if err := f.SaveTo(c.PrefsPath); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
