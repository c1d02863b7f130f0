package localization

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bundle holds per-language string tables loaded from localization.yml.
type Bundle struct {
	tables   map[string]map[string]string
	fallback string
}

func Load(path, fallback string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read localization: %w", err)
	}

	tables := map[string]map[string]string{}
	if err := yaml.Unmarshal(raw, &tables); err != nil {
		return nil, fmt.Errorf("parse localization: %w", err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("localization file %s has no languages", path)
	}
	if _, ok := tables[fallback]; !ok {
		return nil, fmt.Errorf("localization has no fallback language %q", fallback)
	}

	return &Bundle{tables: tables, fallback: fallback}, nil
}

// Get returns the string for key in lang, falling back to the default
// language and finally to the key itself.
func (b *Bundle) Get(lang, key string) string {
	if t, ok := b.tables[lang]; ok {
		if s, ok := t[key]; ok {
			return s
		}
	}
	if s, ok := b.tables[b.fallback][key]; ok {
		return s
	}
	return key
}

// Languages lists available language codes.
func (b *Bundle) Languages() []string {
	out := make([]string, 0, len(b.tables))
	for lang := range b.tables {
		out = append(out, lang)
	}
	return out
}

// Has reports whether lang is a known language.
func (b *Bundle) Has(lang string) bool {
	_, ok := b.tables[lang]
	return ok
}
