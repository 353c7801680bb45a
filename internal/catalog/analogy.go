package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FallbackAnalogy is used when a theme has no phrase for a concept.
const FallbackAnalogy = "a relevant real-world analogy"

// AnalogyTheme is a named table of domain-flavored phrases keyed by concept.
type AnalogyTheme struct {
	Key         string            `yaml:"key"`
	Name        string            `yaml:"name"`
	Emoji       string            `yaml:"emoji"`
	Description string            `yaml:"description"`
	Map         map[string]string `yaml:"map"`
}

// Analogy returns the phrase for a concept, or FallbackAnalogy.
func (t AnalogyTheme) Analogy(concept string) string {
	if phrase, ok := t.Map[concept]; ok && phrase != "" {
		return phrase
	}
	return FallbackAnalogy
}

// Has reports whether the theme defines a phrase for the concept.
func (t AnalogyTheme) Has(concept string) bool {
	_, ok := t.Map[concept]
	return ok
}

// Theme keys referenced by persona defaults.
const (
	ThemeKeyMedical = "medical"
	ThemeKeyCity    = "city"
)

//go:embed themes.yaml
var themesYAML []byte

func loadThemes(data []byte) ([]AnalogyTheme, error) {
	var themes []AnalogyTheme
	if err := yaml.Unmarshal(data, &themes); err != nil {
		return nil, fmt.Errorf("decode analogy themes: %w", err)
	}
	return themes, nil
}
