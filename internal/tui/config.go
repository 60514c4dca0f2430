package tui

import "github.com/Veraticus/finanzas/internal/tui/themes"

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	PageSize int
	Width    int
	Height   int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		PageSize: 20,
		Width:    100,
		Height:   30,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithPageSize sets how many movements are requested per page.
func WithPageSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.PageSize = size
		}
	}
}
