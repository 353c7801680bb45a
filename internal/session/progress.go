package session

import (
	"slices"

	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/store"
)

// GameProgress is one learner's position, score and achievements.
// Points, completed steps and badges only ever grow.
type GameProgress struct {
	Persona        catalog.Persona    `json:"persona"`
	Course         catalog.CourseMode `json:"course"`
	Profession     string             `json:"profession,omitempty"`
	CurrentIndex   int                `json:"currentIndex"`
	TotalPoints    int                `json:"totalPoints"`
	CompletedSteps []string           `json:"completedSteps"`
	AchievedBadges []string           `json:"achievedBadges"`
	Theme          catalog.Theme      `json:"theme"`
	AnalogyTheme   string             `json:"analogyTheme"`
}

// IsCompleted reports whether the step with id has been passed.
func (p *GameProgress) IsCompleted(id string) bool {
	return slices.Contains(p.CompletedSteps, id)
}

// HasBadge reports whether the badge with id has been unlocked.
func (p *GameProgress) HasBadge(id string) bool {
	return slices.Contains(p.AchievedBadges, id)
}

func (p *GameProgress) clone() *GameProgress {
	c := *p
	c.CompletedSteps = slices.Clone(p.CompletedSteps)
	c.AchievedBadges = slices.Clone(p.AchievedBadges)
	return &c
}

func (p *GameProgress) toStore() store.Progress {
	return store.Progress{
		Persona:        string(p.Persona),
		CourseMode:     string(p.Course),
		Profession:     p.Profession,
		CurrentIndex:   p.CurrentIndex,
		TotalPoints:    p.TotalPoints,
		Theme:          string(p.Theme),
		AnalogyTheme:   p.AnalogyTheme,
		CompletedSteps: slices.Clone(p.CompletedSteps),
		AchievedBadges: slices.Clone(p.AchievedBadges),
	}
}

// fromStore converts a stored record. It returns false when the record
// lacks a usable persona or course, which sends the learner back through
// onboarding.
func fromStore(sp *store.Progress, cat *catalog.Catalog) (*GameProgress, bool) {
	persona, err := catalog.ParsePersona(sp.Persona)
	if err != nil {
		return nil, false
	}
	course, err := catalog.ParseCourseMode(sp.CourseMode)
	if err != nil {
		return nil, false
	}
	theme, err := catalog.ParseTheme(sp.Theme)
	if err != nil {
		theme = catalog.DefaultTheme(persona)
	}

	p := &GameProgress{
		Persona:        persona,
		Course:         course,
		Profession:     sp.Profession,
		CurrentIndex:   sp.CurrentIndex,
		TotalPoints:    max(sp.TotalPoints, 0),
		CompletedSteps: slices.Clone(sp.CompletedSteps),
		AchievedBadges: slices.Clone(sp.AchievedBadges),
		Theme:          theme,
		AnalogyTheme:   sp.AnalogyTheme,
	}
	if p.CompletedSteps == nil {
		p.CompletedSteps = []string{}
	}
	if p.AchievedBadges == nil {
		p.AchievedBadges = []string{}
	}

	n := cat.Path(persona, course).Len()
	p.CurrentIndex = min(max(p.CurrentIndex, 0), n-1)
	return p, true
}
