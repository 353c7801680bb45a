package badges

import (
	"strings"

	"github.com/abhisek/coacha/internal/catalog"
)

// Context is everything a badge condition may look at. It is built after
// points for the completed step have been added.
type Context struct {
	Path           catalog.LearningPath
	CurrentIndex   int
	CompletedStep  catalog.LearningStep
	TotalPoints    int
	AchievedBadges []string
}

// Condition decides whether a badge unlocks for the given context.
type Condition interface {
	Met(Context) bool
}

// Badge is a one-time achievement unlocked by its condition.
type Badge struct {
	ID          string
	Name        string
	Description string
	Icon        Icon
	Condition   Condition
}

// StepIDEquals matches when the completed step has exactly this id.
type StepIDEquals string

func (c StepIDEquals) Met(ctx Context) bool { return ctx.CompletedStep.ID == string(c) }

// StepIDContains matches when the completed step id contains the substring.
type StepIDContains string

func (c StepIDContains) Met(ctx Context) bool {
	return strings.Contains(ctx.CompletedStep.ID, string(c))
}

// PathComplete matches when the cursor sits on the last step of the path.
type PathComplete struct{}

func (PathComplete) Met(ctx Context) bool {
	return ctx.Path.Len() > 0 && ctx.CurrentIndex == ctx.Path.Len()-1
}

// PointsAtLeast matches once the learner's total reaches the threshold.
type PointsAtLeast int

func (c PointsAtLeast) Met(ctx Context) bool { return ctx.TotalPoints >= int(c) }

// All returns the built-in badges in display order.
func All() []Badge {
	return []Badge{
		{
			ID:          "welcome_aboard",
			Name:        "Journey Started",
			Description: "You've taken the first step on your learning path!",
			Icon:        IconSparkles,
			Condition:   StepIDContains("welcome"),
		},
		{
			ID:          "boxer",
			Name:        "Boxer",
			Description: "Mastered the art of storing information in variables.",
			Icon:        IconBrain,
			Condition:   StepIDEquals("variables"),
		},
		{
			ID:          "decision_maker",
			Name:        "Decision Maker",
			Description: "Understood how to control the flow of a program with conditionals.",
			Icon:        IconMedal,
			Condition:   StepIDEquals("conditionals"),
		},
		{
			ID:          "systems_anatomist",
			Name:        "Systems Anatomist",
			Description: "Mastered the core hardware components of a system.",
			Icon:        IconBrain,
			Condition:   StepIDContains("_cpu_ram"),
		},
		{
			ID:          "network_navigator",
			Name:        "Network Navigator",
			Description: "Understood how systems communicate via APIs.",
			Icon:        IconMedal,
			Condition:   StepIDContains("_api"),
		},
		{
			ID:          "path_complete",
			Name:        "Path Complete!",
			Description: "You have completed all available concepts in this track!",
			Icon:        IconTrophy,
			Condition:   PathComplete{},
		},
	}
}

// Lookup finds a badge by id in the given set.
func Lookup(set []Badge, id string) (Badge, bool) {
	for _, b := range set {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}
