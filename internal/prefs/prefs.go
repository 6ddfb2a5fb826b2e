// internal/prefs/prefs.go
//
// Durable client-local preference store.
// Small opaque string values (symbol pair, theme, language) persisted as a
// single JSON file under the user config dir. No server round-trip, no
// schema migration: unknown or missing keys fall back to hardcoded
// defaults at the call site.

package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Well-known preference keys.
const (
	KeySymbolExact     = "symbol_exact"     // shown for right-position digits
	KeySymbolMisplaced = "symbol_misplaced" // shown for wrong-position digits
	KeyTheme           = "theme"
	KeyLanguage        = "language"
)

// Store is a tiny key/value file. Writes rewrite the whole file; reads are
// served from memory after the initial load.
type Store struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// Open loads (or lazily creates) the preference file at path.
// A missing or corrupt file is treated as empty rather than fatal.
func Open(path string) *Store {
	s := &Store{path: path, values: map[string]string{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("read preferences")
		}
		return s
	}
	if err := json.Unmarshal(raw, &s.values); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("parse preferences, starting empty")
		s.values = map[string]string{}
	}
	return s
}

// DefaultPath places the file under the user config dir, falling back to
// the working directory when none is available.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".guessnumber.json"
	}
	return filepath.Join(dir, "guessnumber", "prefs.json")
}

// Get returns the stored value for key, or def when absent.
func (s *Store) Get(key, def string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Set stores key=value and persists immediately. Persistence failures are
// logged, not returned: preferences are best effort.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	raw, err := json.MarshalIndent(s.values, "", "  ")
	s.mu.Unlock()
	if err != nil {
		log.Warn().Err(err).Msg("encode preferences")
		return
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("write preferences")
	}
}
