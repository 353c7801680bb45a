package catalog

import (
	"fmt"
	"strings"
)

// Catalog holds the immutable learning content: the three paths and the
// analogy themes. It is built once at start and shared by pointer.
type Catalog struct {
	paths  map[PathKind]LearningPath
	themes []AnalogyTheme
	byKey  map[string]int
}

// New builds the catalog from the built-in paths and embedded themes.
func New() (*Catalog, error) {
	themes, err := loadThemes(themesYAML)
	if err != nil {
		return nil, err
	}
	return build([]LearningPath{codingPath(), medicalPath(), swePath()}, themes)
}

// MustNew is New for program start, where invalid built-in content is a bug.
func MustNew() *Catalog {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

func build(paths []LearningPath, themes []AnalogyTheme) (*Catalog, error) {
	if err := validate(paths, themes); err != nil {
		return nil, err
	}
	c := &Catalog{
		paths:  make(map[PathKind]LearningPath, len(paths)),
		themes: themes,
		byKey:  make(map[string]int, len(themes)),
	}
	for _, p := range paths {
		c.paths[p.Kind] = p
	}
	for i, t := range themes {
		c.byKey[t.Key] = i
	}
	return c, nil
}

// Path returns the learning path for a persona and course mode.
func (c *Catalog) Path(p Persona, m CourseMode) LearningPath {
	return c.paths[KindFor(p, m)]
}

// PathByKind returns a path by its kind.
func (c *Catalog) PathByKind(k PathKind) (LearningPath, bool) {
	path, ok := c.paths[k]
	return path, ok
}

// Step returns the step at index i of the persona's path.
func (c *Catalog) Step(p Persona, m CourseMode, i int) (LearningStep, bool) {
	return c.Path(p, m).Step(i)
}

// Themes returns the analogy themes in picker order.
func (c *Catalog) Themes() []AnalogyTheme {
	out := make([]AnalogyTheme, len(c.themes))
	copy(out, c.themes)
	return out
}

// Theme looks up an analogy theme by key.
func (c *Catalog) Theme(key string) (AnalogyTheme, bool) {
	i, ok := c.byKey[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return AnalogyTheme{}, false
	}
	return c.themes[i], true
}

// AnalogyTable resolves the analogy theme to use. Unknown or empty keys
// fall back to the persona default: medical for doctors, city otherwise.
func (c *Catalog) AnalogyTable(key string, p Persona) AnalogyTheme {
	if t, ok := c.Theme(key); ok {
		return t
	}
	t, _ := c.Theme(DefaultAnalogyTheme(p))
	return t
}

// DefaultAnalogyTheme is the analogy theme a persona starts with.
func DefaultAnalogyTheme(p Persona) string {
	switch p {
	case PersonaDoctor:
		return ThemeKeyMedical
	case PersonaKid, PersonaAdult, PersonaUnset:
		return ThemeKeyCity
	default:
		return ThemeKeyCity
	}
}

// validate checks the built-in content. Returns a combined error
// describing all problems found, or nil if valid.
func validate(paths []LearningPath, themes []AnalogyTheme) error {
	var errs []string

	seenKinds := make(map[PathKind]bool, len(paths))
	for _, p := range paths {
		seenKinds[p.Kind] = true
		if len(p.Steps) == 0 {
			errs = append(errs, fmt.Sprintf("path %q has no steps", p.Kind))
		}
		ids := make(map[string]bool, len(p.Steps))
		for _, s := range p.Steps {
			if s.ID == "" {
				errs = append(errs, fmt.Sprintf("path %q has a step without an ID", p.Kind))
				continue
			}
			if ids[s.ID] {
				errs = append(errs, fmt.Sprintf("path %q: duplicate step ID %q", p.Kind, s.ID))
			}
			ids[s.ID] = true
			if s.Points < 0 {
				errs = append(errs, fmt.Sprintf("step %q: negative points %d", s.ID, s.Points))
			}
		}
	}
	for _, k := range AllPathKinds() {
		if !seenKinds[k] {
			errs = append(errs, fmt.Sprintf("path %q is missing", k))
		}
	}

	keys := make(map[string]bool, len(themes))
	for _, t := range themes {
		if t.Key == "" {
			errs = append(errs, "analogy theme without a key")
			continue
		}
		if keys[t.Key] {
			errs = append(errs, fmt.Sprintf("duplicate analogy theme %q", t.Key))
		}
		keys[t.Key] = true
	}
	for _, k := range []string{ThemeKeyMedical, ThemeKeyCity} {
		if !keys[k] {
			errs = append(errs, fmt.Sprintf("default analogy theme %q is missing", k))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
