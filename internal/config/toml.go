// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Perdok-cat/Woodcal/internal/model"
)

// DefaultSettleDelay is the pause between committing a length and calculating.
const DefaultSettleDelay = 300 * time.Millisecond

// DefaultNotes is the note vocabulary offered by the note picker.
var DefaultNotes = []string{"xuống đầu", "cong", "xấu", "sâu"}

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Sheet   SheetConfig   `toml:"sheet"`
	Payment PaymentConfig `toml:"payment"`
	Log     LogConfig     `toml:"log"`
}

// SheetConfig maps calculation sheet settings.
type SheetConfig struct {
	SettleDelay *string  `toml:"settle-delay"`
	Notes       []string `toml:"notes"`
}

// PaymentConfig maps default unit prices per bucket.
type PaymentConfig struct {
	H100 *float64 `toml:"h100"`
	H789 *float64 `toml:"h789"`
	H56  *float64 `toml:"h56"`
	H4   *float64 `toml:"h4"`
	H3   *float64 `toml:"h3"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level *string `toml:"level"`
	Path  *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// SheetSettings resolves sheet settings, applying defaults for unset values.
func (c FileConfig) SheetSettings() (model.SheetConfig, error) {
	out := model.SheetConfig{
		SettleDelay: DefaultSettleDelay,
		Notes:       append([]string(nil), DefaultNotes...),
	}
	if c.Sheet.SettleDelay != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*c.Sheet.SettleDelay))
		if err != nil {
			return model.SheetConfig{}, fmt.Errorf("invalid sheet.settle-delay: %w", err)
		}
		if d < 0 {
			return model.SheetConfig{}, fmt.Errorf("sheet.settle-delay must be >= 0")
		}
		out.SettleDelay = d
	}
	if c.Sheet.Notes != nil {
		notes := make([]string, 0, len(c.Sheet.Notes))
		for _, n := range c.Sheet.Notes {
			if n = strings.TrimSpace(n); n != "" {
				notes = append(notes, n)
			}
		}
		out.Notes = notes
	}
	return out, nil
}

// Prices returns the configured unit prices; unset buckets are absent.
func (c FileConfig) Prices() model.Prices {
	prices := model.Prices{}
	set := func(b model.Bucket, v *float64) {
		if v != nil {
			prices[b] = *v
		}
	}
	set(model.HeadHundreds, c.Payment.H100)
	set(model.Head789, c.Payment.H789)
	set(model.Head56, c.Payment.H56)
	set(model.Head4, c.Payment.H4)
	set(model.Head3, c.Payment.H3)
	return prices
}

// LogSettings resolves logger settings.
func (c FileConfig) LogSettings() model.LogConfig {
	out := model.LogConfig{Level: "info", Path: DefaultLogPath()}
	if c.Log.Level != nil && strings.TrimSpace(*c.Log.Level) != "" {
		out.Level = strings.TrimSpace(*c.Log.Level)
	}
	if c.Log.Path != nil && strings.TrimSpace(*c.Log.Path) != "" {
		out.Path = strings.TrimSpace(*c.Log.Path)
	}
	return out
}

// DefaultTemplate returns the commented config file written by `woodcal config`.
func DefaultTemplate() string {
	quoted := make([]string, len(DefaultNotes))
	for i, n := range DefaultNotes {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return fmt.Sprintf(`# woodcal configuration
# Uncomment a value to enable it. CLI flags override config values.

[sheet]
# settle-delay = %q      # Pause after a length is committed before calculating
# notes = [%s]

[payment]
# Default unit price per head bucket.
# h100 = 0.0
# h789 = 0.0
# h56 = 0.0
# h4 = 0.0
# h3 = 0.0

[log]
# level = "info"            # debug, info, warn, error
# path = %q
`,
		DefaultSettleDelay.String(),
		strings.Join(quoted, ", "),
		DefaultLogPath(),
	)
}
