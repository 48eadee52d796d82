package httpapi

import (
	"github.com/shopspring/decimal"
)

// Display sizes of the simulated terminals.
const (
	ScreenCompact    = "3.5"
	ScreenWidescreen = "8"
)

// Colour themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Settings describe how the terminal presents itself. They are also served
// to terminals through the sync endpoint.
type Settings struct {
	Screen       string `json:"screen"`
	Theme        string `json:"theme"`
	BusinessName string `json:"business_name"`
	Currency     string `json:"currency"`
}

// DefaultSettings mirror the stock simulator.
func DefaultSettings() Settings {
	return Settings{
		Screen:       ScreenCompact,
		Theme:        ThemeDark,
		BusinessName: "WINDCAVE POS",
		Currency:     "$",
	}
}

// normalized replaces unsupported values with defaults.
func (s Settings) normalized() Settings {
	def := DefaultSettings()
	s.Screen = screenOr(s.Screen, def.Screen)
	s.Theme = themeOr(s.Theme, def.Theme)
	if s.BusinessName == "" {
		s.BusinessName = def.BusinessName
	}
	if s.Currency == "" {
		s.Currency = def.Currency
	}
	return s
}

// layout names the page variant for the display size.
func (s Settings) layout() string {
	if s.Screen == ScreenWidescreen {
		return "widescreen"
	}
	return "compact"
}

func screenOr(screen, fallback string) string {
	switch screen {
	case ScreenCompact, ScreenWidescreen:
		return screen
	default:
		return fallback
	}
}

func themeOr(theme, fallback string) string {
	switch theme {
	case ThemeDark, ThemeLight:
		return theme
	default:
		return fallback
	}
}

// formatPrice renders an amount with two decimals behind the currency symbol.
func formatPrice(currency string, amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + currency + amount.Neg().StringFixed(2)
	}
	return currency + amount.StringFixed(2)
}
