// Package grading decides whether tutor feedback counts as a completed step.
package grading

import (
	"strings"

	"github.com/abhisek/coacha/internal/catalog"
)

// Classifier reads tutor feedback and reports whether it signals success.
type Classifier interface {
	Name() string
	Successful(feedback string) bool
}

// DefaultKeywords are the praise words that mark feedback as a pass.
var DefaultKeywords = []string{
	"correct",
	"excellent",
	"well done",
	"exactly",
	"perfect",
	"great job",
	"nice work",
	"insightful",
}

// KeywordClassifier matches lower-cased feedback against a fixed list of
// praise keywords. It cannot tell "correct" from "not correct".
type KeywordClassifier struct {
	Keywords []string
}

// NewKeywordClassifier returns a classifier over DefaultKeywords.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{Keywords: DefaultKeywords}
}

func (c *KeywordClassifier) Name() string { return "keyword" }

func (c *KeywordClassifier) Successful(feedback string) bool {
	lower := strings.ToLower(feedback)
	for _, kw := range c.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Outcome is the result of grading one piece of feedback.
type Outcome struct {
	Successful bool
	Points     int
}

// Points returns what a step is worth.
func Points(step catalog.LearningStep) int {
	return step.AwardPoints()
}

// Grade classifies feedback for step. A step that is already completed
// never grades as successful again, so its points are awarded once.
func Grade(step catalog.LearningStep, feedback string, alreadyCompleted bool, c Classifier) Outcome {
	if alreadyCompleted || !c.Successful(feedback) {
		return Outcome{}
	}
	return Outcome{Successful: true, Points: Points(step)}
}
