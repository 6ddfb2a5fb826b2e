// internal/i18n/i18n.go
//
// Localization lookup.
// Responsibilities:
//   - Resolve a dotted key (e.g. "messages.gamePaused") against the active
//     language pack, falling back to the default language, and finally to
//     the key itself — resolution never fails loudly.
//   - Substitute {name}-style placeholders by literal textual replacement;
//     unmatched placeholders are left intact.
//
// Language packs are JSON files embedded at build time (packs/<code>.json),
// nested objects traversed by dot notation.

package i18n

import (
	"embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

//go:embed packs/*.json
var packFS embed.FS

// DefaultLanguage is used when the requested language has no pack or the
// requested key is missing from the active pack.
const DefaultLanguage = "zh_tw"

// Languages maps supported language codes to their display names.
var Languages = map[string]string{
	"en":    "English",
	"zh_tw": "繁體中文",
}

// Bundle holds every loaded language pack plus the active language.
// Packs are immutable after Load; the active language is guarded so T can
// be called from a background goroutine while the user switches languages.
type Bundle struct {
	packs map[string]map[string]any

	mu   sync.RWMutex
	lang string
}

// Load parses all embedded packs. A pack that fails to parse is skipped
// with a warning; the bundle still works through the remaining packs.
func Load() *Bundle {
	b := &Bundle{packs: map[string]map[string]any{}, lang: DefaultLanguage}
	entries, err := packFS.ReadDir("packs")
	if err != nil {
		log.Warn().Err(err).Msg("read embedded language packs")
		return b
	}
	for _, e := range entries {
		code := strings.TrimSuffix(e.Name(), ".json")
		raw, err := packFS.ReadFile("packs/" + e.Name())
		if err != nil {
			log.Warn().Err(err).Str("pack", code).Msg("read language pack")
			continue
		}
		var pack map[string]any
		if err := json.Unmarshal(raw, &pack); err != nil {
			log.Warn().Err(err).Str("pack", code).Msg("parse language pack")
			continue
		}
		b.packs[code] = pack
	}
	return b
}

// SetLanguage switches the active language. Unknown codes fall back to the
// default and report false.
func (b *Bundle) SetLanguage(code string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.packs[code]; !ok {
		b.lang = DefaultLanguage
		return false
	}
	b.lang = code
	return true
}

// Language returns the active language code.
func (b *Bundle) Language() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lang
}

// T resolves a dotted key with optional {placeholder} interpolation.
// Missing keys resolve to the key itself (visible-failure fallback).
func (b *Bundle) T(key string, params map[string]string) string {
	b.mu.RLock()
	lang := b.lang
	b.mu.RUnlock()

	s, ok := lookup(b.packs[lang], key)
	if !ok {
		if s, ok = lookup(b.packs[DefaultLanguage], key); !ok {
			return key
		}
	}
	for name, val := range params {
		s = strings.ReplaceAll(s, "{"+name+"}", val)
	}
	return s
}

// lookup walks a nested map by dot notation and returns the leaf string.
func lookup(pack map[string]any, key string) (string, bool) {
	if pack == nil {
		return "", false
	}
	var cur any = pack
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = m[part]; !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}
