package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Keys of the flat app_settings table.
const (
	SettingAccentTheme     = "accent_theme"
	SettingCurrencySymbol  = "currency_symbol"
	SettingWeekStart       = "week_start"
	SettingTemperatureUnit = "temperature_unit"
	SettingShowArchived    = "show_archived"
)

var SettingKeys = []string{
	SettingAccentTheme,
	SettingCurrencySymbol,
	SettingWeekStart,
	SettingTemperatureUnit,
	SettingShowArchived,
}

type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "celsius"
	Fahrenheit TemperatureUnit = "fahrenheit"
)

type Settings struct {
	AccentTheme     string          `json:"accent_theme"`
	CurrencySymbol  string          `json:"currency_symbol"`
	WeekStart       time.Weekday    `json:"week_start"`
	TemperatureUnit TemperatureUnit `json:"temperature_unit"`
	ShowArchived    bool            `json:"show_archived"`
}

func DefaultSettings() Settings {
	return Settings{
		AccentTheme:     "navy",
		CurrencySymbol:  "$",
		WeekStart:       time.Sunday,
		TemperatureUnit: Celsius,
		ShowArchived:    false,
	}
}

// EncodeSettings flattens s into the persisted key/value form.
func EncodeSettings(s Settings) map[string]string {
	return map[string]string{
		SettingAccentTheme:     s.AccentTheme,
		SettingCurrencySymbol:  s.CurrencySymbol,
		SettingWeekStart:       strings.ToLower(s.WeekStart.String()),
		SettingTemperatureUnit: string(s.TemperatureUnit),
		SettingShowArchived:    strconv.FormatBool(s.ShowArchived),
	}
}

// DecodeSettings reads the persisted key/value form. Missing keys keep their
// defaults and unknown keys are ignored.
func DecodeSettings(values map[string]string) (Settings, error) {
	s := DefaultSettings()
	for key, value := range values {
		if err := s.set(key, value); err != nil {
			if err == errUnknownSetting {
				continue
			}
			return Settings{}, err
		}
	}
	return s, nil
}

// WithSetting returns a copy of s with one key changed, validating the value.
func (s Settings) WithSetting(key, value string) (Settings, error) {
	if err := s.set(key, value); err != nil {
		if err == errUnknownSetting {
			return Settings{}, fmt.Errorf("unknown setting %q", key)
		}
		return Settings{}, err
	}
	return s, nil
}

var errUnknownSetting = fmt.Errorf("unknown setting")

func (s *Settings) set(key, value string) error {
	switch key {
	case SettingAccentTheme:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("accent theme must not be empty")
		}
		s.AccentTheme = value
	case SettingCurrencySymbol:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("currency symbol must not be empty")
		}
		s.CurrencySymbol = value
	case SettingWeekStart:
		switch strings.ToLower(value) {
		case "sunday":
			s.WeekStart = time.Sunday
		case "monday":
			s.WeekStart = time.Monday
		default:
			return fmt.Errorf("invalid week start %q", value)
		}
	case SettingTemperatureUnit:
		switch TemperatureUnit(strings.ToLower(value)) {
		case Celsius:
			s.TemperatureUnit = Celsius
		case Fahrenheit:
			s.TemperatureUnit = Fahrenheit
		default:
			return fmt.Errorf("invalid temperature unit %q", value)
		}
	case SettingShowArchived:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid show_archived value %q", value)
		}
		s.ShowArchived = b
	default:
		return errUnknownSetting
	}
	return nil
}
