package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is wrapped by the Parse functions when the input names
// no known persona, course mode or visual theme.
var ErrUnknownValue = errors.New("unknown value")

// Persona is the learner archetype that drives tone and path selection.
type Persona string

const (
	PersonaUnset  Persona = ""
	PersonaKid    Persona = "kid"
	PersonaAdult  Persona = "adult"
	PersonaDoctor Persona = "doctor"
)

// AllPersonas returns the selectable personas in display order.
func AllPersonas() []Persona {
	return []Persona{PersonaKid, PersonaAdult, PersonaDoctor}
}

// ParsePersona converts user input into a Persona.
func ParsePersona(s string) (Persona, error) {
	switch p := Persona(strings.ToLower(strings.TrimSpace(s))); p {
	case PersonaKid, PersonaAdult, PersonaDoctor:
		return p, nil
	case PersonaUnset:
		return PersonaUnset, fmt.Errorf("persona: empty: %w", ErrUnknownValue)
	default:
		return PersonaUnset, fmt.Errorf("persona %q: %w", s, ErrUnknownValue)
	}
}

// DisplayName returns the title-cased persona name used in reports.
func (p Persona) DisplayName() string {
	switch p {
	case PersonaKid:
		return "Kid"
	case PersonaAdult:
		return "Adult"
	case PersonaDoctor:
		return "Doctor"
	case PersonaUnset:
		return ""
	default:
		return string(p)
	}
}

// Description is the one-line blurb shown by the onboarding picker.
func (p Persona) Description() string {
	switch p {
	case PersonaKid:
		return "Playful lessons with a robot friend"
	case PersonaAdult:
		return "Clear, practical lessons for grown-up beginners"
	case PersonaDoctor:
		return "Tech concepts explained through medicine"
	case PersonaUnset:
		return ""
	default:
		return ""
	}
}

// CourseMode selects between the coding-syntax track and the concepts track.
type CourseMode string

const (
	CourseUnset  CourseMode = ""
	CourseCoding CourseMode = "coding"
	CourseSWE    CourseMode = "swe"
)

// AllCourseModes returns the selectable course modes in display order.
func AllCourseModes() []CourseMode {
	return []CourseMode{CourseCoding, CourseSWE}
}

// ParseCourseMode converts user input into a CourseMode.
func ParseCourseMode(s string) (CourseMode, error) {
	switch m := CourseMode(strings.ToLower(strings.TrimSpace(s))); m {
	case CourseCoding, CourseSWE:
		return m, nil
	case CourseUnset:
		return CourseUnset, fmt.Errorf("course mode: empty: %w", ErrUnknownValue)
	default:
		return CourseUnset, fmt.Errorf("course mode %q: %w", s, ErrUnknownValue)
	}
}

// DisplayName returns a human-readable label for the course mode.
func (m CourseMode) DisplayName() string {
	switch m {
	case CourseCoding:
		return "Learn to code"
	case CourseSWE:
		return "Understand software concepts"
	case CourseUnset:
		return ""
	default:
		return string(m)
	}
}

// Theme is the visual presentation preference.
type Theme string

const (
	ThemePlayful  Theme = "playful"
	ThemeGraceful Theme = "graceful"
)

// ParseTheme converts user input into a Theme.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemePlayful, ThemeGraceful:
		return t, nil
	default:
		return "", fmt.Errorf("theme %q: %w", s, ErrUnknownValue)
	}
}

// DefaultTheme is the visual theme a persona starts with.
func DefaultTheme(p Persona) Theme {
	switch p {
	case PersonaKid, PersonaUnset:
		return ThemePlayful
	case PersonaAdult, PersonaDoctor:
		return ThemeGraceful
	default:
		return ThemeGraceful
	}
}
