package catalog

// DefaultPoints is awarded for a step that declares no point value.
const DefaultPoints = 10

// LearningStep is one unit of a path: an explanation followed by a
// submission the learner must get right before moving on.
type LearningStep struct {
	ID                   string
	Title                string
	Emoji                string
	BlockType            string // concept key used for analogy lookup; may be empty
	IntroductionPrompt   string
	ChallengeDescription string
	EvaluationPreamble   string
	Placeholder          string
	EstimatedMinutes     int
	Points               int
}

// AwardPoints returns the points granted for completing the step.
func (s LearningStep) AwardPoints() int {
	if s.Points <= 0 {
		return DefaultPoints
	}
	return s.Points
}

// PathKind identifies one of the fixed learning paths.
type PathKind string

const (
	PathCoding  PathKind = "coding"
	PathMedical PathKind = "medical"
	PathSWE     PathKind = "swe"
)

// AllPathKinds returns the path kinds in display order.
func AllPathKinds() []PathKind {
	return []PathKind{PathCoding, PathMedical, PathSWE}
}

// DisplayName returns the course name shown in analytics.
func (k PathKind) DisplayName() string {
	switch k {
	case PathCoding:
		return "Coding Fundamentals"
	case PathMedical:
		return "MedTech Concepts"
	case PathSWE:
		return "SWE Concepts"
	default:
		return string(k)
	}
}

// KindFor resolves which path a persona and course mode follow. Doctors
// always take the medical path regardless of the course mode.
func KindFor(p Persona, m CourseMode) PathKind {
	switch p {
	case PersonaDoctor:
		return PathMedical
	case PersonaKid, PersonaAdult, PersonaUnset:
	}
	switch m {
	case CourseSWE:
		return PathSWE
	case CourseCoding, CourseUnset:
		return PathCoding
	default:
		return PathCoding
	}
}

// LearningPath is an ordered sequence of steps. Order is both navigation
// order and the dependency order that gates "next".
type LearningPath struct {
	Kind  PathKind
	Steps []LearningStep
}

// Len returns the number of steps.
func (p LearningPath) Len() int { return len(p.Steps) }

// Step returns the step at index i.
func (p LearningPath) Step(i int) (LearningStep, bool) {
	if i < 0 || i >= len(p.Steps) {
		return LearningStep{}, false
	}
	return p.Steps[i], true
}

// IndexOf returns the position of the step with the given id, or -1.
func (p LearningPath) IndexOf(id string) int {
	for i, s := range p.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// IsLast reports whether i is the final index of the path.
func (p LearningPath) IsLast(i int) bool {
	return i == len(p.Steps)-1
}

// TotalMinutes sums the estimated time of every step.
func (p LearningPath) TotalMinutes() int {
	total := 0
	for _, s := range p.Steps {
		total += s.EstimatedMinutes
	}
	return total
}

// TotalPoints sums the points available on the path.
func (p LearningPath) TotalPoints() int {
	total := 0
	for _, s := range p.Steps {
		total += s.AwardPoints()
	}
	return total
}
