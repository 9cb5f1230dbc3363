package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ExchangeConfig tunes the drag-to-exchange interaction.
type ExchangeConfig struct {
	MinimumPressDuration  time.Duration `yaml:"minimum_press_duration"`
	AlphaForDisplacedItem float64       `yaml:"alpha_for_displaced_item"`
	AnimationDuration     time.Duration `yaml:"animation_duration"`
	CatchScale            float64       `yaml:"catch_scale"`
	ReleaseScale          float64       `yaml:"release_scale"`
	SnapshotAlpha         float64       `yaml:"snapshot_alpha"`
	SnapshotBackground    string        `yaml:"snapshot_background"`
	AnimationBacklogDelay time.Duration `yaml:"animation_backlog_delay"`
	AllowableMovement     int           `yaml:"allowable_movement"`
	CancelPolicy          string        `yaml:"cancel_policy"` // "keep" or "revert"
}

// GridConfig describes the demo board the hosts lay out.
type GridConfig struct {
	Sections       []int    `yaml:"sections"` // Item count per section.
	Columns        int      `yaml:"columns"`  // 0 = square-ish per section.
	ItemWidth      int      `yaml:"item_width"`
	ItemHeight     int      `yaml:"item_height"`
	Spacing        int      `yaml:"spacing"`
	SectionSpacing int      `yaml:"section_spacing"`
	Locked         [][2]int `yaml:"locked,omitempty"` // [section, item] pairs that never move.
}

// DesktopConfig binds the X11 desktop host. Button and key strings use the
// xgbutil format, e.g. "Mod4-1" or "Mod4-Escape".
type DesktopConfig struct {
	DragButton string `yaml:"drag_button"`
	CancelKey  string `yaml:"cancel_key"`
	Margin     int    `yaml:"margin"`  // Pixels between the monitor edge and the grid.
	Spacing    int    `yaml:"spacing"` // Pixels between items.
}

// LoggingConfig controls the CLI's slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Config represents the gridswap configuration.
type Config struct {
	Exchange ExchangeConfig `yaml:"exchange"`
	Grid     GridConfig     `yaml:"grid"`
	Desktop  DesktopConfig  `yaml:"desktop"`
	Logging  LoggingConfig  `yaml:"logging"`
}

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			MinimumPressDuration:  150 * time.Millisecond,
			AlphaForDisplacedItem: 0.60,
			AnimationDuration:     200 * time.Millisecond,
			CatchScale:            1.20,
			ReleaseScale:          1.05,
			SnapshotAlpha:         0.80,
			SnapshotBackground:    "#404040",
			AnimationBacklogDelay: 0,
			AllowableMovement:     10,
			CancelPolicy:          "keep",
		},
		Grid: GridConfig{
			Sections:       []int{6, 4},
			Columns:        3,
			ItemWidth:      10,
			ItemHeight:     3,
			Spacing:        1,
			SectionSpacing: 2,
		},
		Desktop: DesktopConfig{
			DragButton: "Mod4-1",
			CancelKey:  "Mod4-Escape",
			Margin:     32,
			Spacing:    8,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error
	ex := c.Exchange

	if ex.MinimumPressDuration < 0 {
		errs = append(errs, fmt.Errorf("exchange.minimum_press_duration must be >= 0"))
	}
	if ex.AnimationDuration < 0 {
		errs = append(errs, fmt.Errorf("exchange.animation_duration must be >= 0"))
	}
	if ex.AnimationBacklogDelay < 0 {
		errs = append(errs, fmt.Errorf("exchange.animation_backlog_delay must be >= 0"))
	}
	if ex.AlphaForDisplacedItem < 0 || ex.AlphaForDisplacedItem > 1 {
		errs = append(errs, fmt.Errorf("exchange.alpha_for_displaced_item must be between 0 and 1, got %v", ex.AlphaForDisplacedItem))
	}
	if ex.SnapshotAlpha < 0 || ex.SnapshotAlpha > 1 {
		errs = append(errs, fmt.Errorf("exchange.snapshot_alpha must be between 0 and 1, got %v", ex.SnapshotAlpha))
	}
	if ex.CatchScale <= 0 {
		errs = append(errs, fmt.Errorf("exchange.catch_scale must be > 0"))
	}
	if ex.ReleaseScale <= 0 {
		errs = append(errs, fmt.Errorf("exchange.release_scale must be > 0"))
	}
	if !hexColorPattern.MatchString(ex.SnapshotBackground) {
		errs = append(errs, fmt.Errorf("exchange.snapshot_background must be a hex color like #404040, got %q", ex.SnapshotBackground))
	}
	if ex.AllowableMovement < 0 {
		errs = append(errs, fmt.Errorf("exchange.allowable_movement must be >= 0"))
	}
	switch strings.ToLower(strings.TrimSpace(ex.CancelPolicy)) {
	case "", "keep", "revert":
	default:
		errs = append(errs, fmt.Errorf("exchange.cancel_policy must be \"keep\" or \"revert\", got %q", ex.CancelPolicy))
	}

	if err := c.Grid.validate(); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(c.Desktop.DragButton) == "" {
		errs = append(errs, fmt.Errorf("desktop.drag_button is required"))
	}
	if c.Desktop.Margin < 0 || c.Desktop.Spacing < 0 {
		errs = append(errs, fmt.Errorf("desktop.margin and desktop.spacing must be >= 0"))
	}

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	return errors.Join(errs...)
}

func (g GridConfig) validate() error {
	if len(g.Sections) == 0 {
		return fmt.Errorf("grid.sections must list at least one section")
	}
	for i, n := range g.Sections {
		if n <= 0 {
			return fmt.Errorf("grid.sections[%d] must be > 0, got %d", i, n)
		}
	}
	if g.Columns < 0 {
		return fmt.Errorf("grid.columns must be >= 0")
	}
	if g.ItemWidth <= 0 || g.ItemHeight <= 0 {
		return fmt.Errorf("grid.item_width and grid.item_height must be > 0")
	}
	if g.Spacing < 0 || g.SectionSpacing < 0 {
		return fmt.Errorf("grid.spacing and grid.section_spacing must be >= 0")
	}
	for i, l := range g.Locked {
		s, item := l[0], l[1]
		if s < 0 || s >= len(g.Sections) || item < 0 || item >= g.Sections[s] {
			return fmt.Errorf("grid.locked[%d]: position (%d,%d) is outside the grid", i, s, item)
		}
	}
	return nil
}

// ParseLevel maps a logging level name onto slog. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
}

// SlogLevel returns the configured level, falling back to info.
func (l LoggingConfig) SlogLevel() slog.Level {
	lvl, _ := ParseLevel(l.Level)
	return lvl
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
