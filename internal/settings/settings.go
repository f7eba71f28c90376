// Package settings reads and writes the presentation settings kept next to
// the store (config.json). The store itself never interprets them.
package settings

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"notas/internal/logger"
	"notas/internal/schema"
	"notas/internal/store"
	"notas/pkg/models"
)

const filePerm = 0o600

// Settings mirrors config.json. Keys this build does not know are kept in
// Extra and written back untouched.
type Settings struct {
	Theme           string `json:"theme"`
	Mode            string `json:"mode"`
	WindowSize      [2]int `json:"window_size"`
	WindowPosition  [2]int `json:"window_position"`
	WindowMaximized bool   `json:"window_maximized"`

	Extra models.Extras `json:"-"`
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{"theme", "mode", "window_size", "window_position", "window_maximized"}
}

// ExtraKeys returns the unknown keys kept from the file, sorted.
func ExtraKeys(s *Settings) []string {
	return s.Extra.Keys()
}

// Defaults returns the settings used when config.json is absent.
func Defaults() *Settings {
	return &Settings{
		Theme:           "darkly",
		Mode:            "dark",
		WindowSize:      [2]int{1200, 800},
		WindowPosition:  [2]int{100, 100},
		WindowMaximized: false,
	}
}

// Load reads settings from path. An absent file yields the defaults and
// missing keys are filled with their defaults. A file that does not parse is
// reported as store.CorruptStoreError.
func Load(path string) (*Settings, error) {
	log := logger.WithComponent("settings")

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", path).Msg("Settings file absent, using defaults")
		return Defaults(), nil
	}
	if err != nil {
		return nil, &store.IOError{Op: "read", Path: path, Err: err}
	}

	s := Defaults()
	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, &store.CorruptStoreError{Path: path, Err: err}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &store.CorruptStoreError{Path: path, Err: err}
	}
	for _, key := range Keys() {
		delete(raw, key)
	}
	if len(raw) > 0 {
		s.Extra = models.Extras(raw)
	}
	return s, nil
}

// Save writes settings to path atomically.
func Save(path string, s *Settings) error {
	data, err := s.encode()
	if err != nil {
		return err
	}
	if err := store.WriteFileAtomic(path, data, filePerm); err != nil {
		return err
	}

	log := logger.WithComponent("settings")
	log.Info().Str("path", path).Msg("Settings saved")
	return nil
}

func (s *Settings) encode() ([]byte, error) {
	object := map[string]interface{}{
		"theme":            s.Theme,
		"mode":             s.Mode,
		"window_size":      s.WindowSize,
		"window_position":  s.WindowPosition,
		"window_maximized": s.WindowMaximized,
	}
	for key, value := range s.Extra {
		if !slices.Contains(Keys(), key) {
			object[key] = value
		}
	}
	data, err := json.MarshalIndent(object, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Get returns the display form of a known key.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "theme":
		return s.Theme, nil
	case "mode":
		return s.Mode, nil
	case "window_size":
		return fmt.Sprintf("%dx%d", s.WindowSize[0], s.WindowSize[1]), nil
	case "window_position":
		return fmt.Sprintf("%d,%d", s.WindowPosition[0], s.WindowPosition[1]), nil
	case "window_maximized":
		return strconv.FormatBool(s.WindowMaximized), nil
	}
	return "", schema.NewValidationError("key", key, fmt.Sprintf("must be one of %s", strings.Join(Keys(), ", ")))
}

// Set parses value and assigns it to key. Sizes and positions accept
// "1200x800" or "1200,800".
func (s *Settings) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "theme":
		if value == "" {
			return schema.NewValidationError(key, value, "is required")
		}
		s.Theme = value
	case "mode":
		mode := strings.ToLower(value)
		if mode != "dark" && mode != "light" {
			return schema.NewValidationError(key, value, "must be dark or light")
		}
		s.Mode = mode
	case "window_size":
		pair, err := parsePair(key, value)
		if err != nil {
			return err
		}
		if pair[0] <= 0 || pair[1] <= 0 {
			return schema.NewValidationError(key, value, "must be positive")
		}
		s.WindowSize = pair
	case "window_position":
		pair, err := parsePair(key, value)
		if err != nil {
			return err
		}
		s.WindowPosition = pair
	case "window_maximized":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return schema.NewValidationError(key, value, "must be true or false")
		}
		s.WindowMaximized = b
	default:
		return schema.NewValidationError("key", key, fmt.Sprintf("must be one of %s", strings.Join(Keys(), ", ")))
	}
	return nil
}

func parsePair(key, value string) ([2]int, error) {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == 'x' || r == 'X' || r == ',' })
	if len(parts) != 2 {
		return [2]int{}, schema.NewValidationError(key, value, "must be two integers such as 1200x800")
	}
	var pair [2]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return [2]int{}, schema.NewValidationError(key, value, "must be two integers such as 1200x800")
		}
		pair[i] = n
	}
	return pair, nil
}
