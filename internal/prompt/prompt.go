// Package prompt builds the system instructions and evaluation prompts
// sent to the text-generation provider.
package prompt

import (
	"fmt"
	"strings"

	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/llm"
)

// Task selects which half of a step the instruction is for.
type Task int

const (
	TaskExplain Task = iota
	TaskEvaluate
)

func (t Task) String() string {
	switch t {
	case TaskExplain:
		return "explain"
	case TaskEvaluate:
		return "evaluate"
	default:
		return fmt.Sprintf("task(%d)", int(t))
	}
}

const (
	kidVoice = `You are a fun, friendly, and super encouraging AI robot friend. Your goal is to make coding concepts easy and exciting for a child. Use simple words, lots of positive emojis (like 🤖, 🎉, 🌟), and playful analogies. Keep your explanations to 1-2 short, simple paragraphs.`

	doctorVoice = `You are a world-class Medical Technology Specialist and educator. Your audience is a medical doctor. Your tone is professional, respectful, and insightful, like a peer from a different specialty. You MUST use specific medical analogies to explain complex technical concepts.`

	mentorVoice = `You are a clear, intelligent, and helpful guide for an adult learning software engineering principles. Your tone is that of a knowledgeable mentor. You use concise, effective real-world analogies (like business, construction, or city planning) to make abstract concepts tangible.`

	coachVoice = `You are an encouraging and clear AI coding coach for an adult beginner. Avoid overly playful language, but maintain a positive and supportive tone. Use simple, everyday analogies to explain programming concepts.`
)

// Composer turns persona, course, concept and analogy choices into
// system instructions. It holds no mutable state.
type Composer struct {
	catalog *catalog.Catalog
}

// NewComposer creates a Composer that resolves analogies from cat.
func NewComposer(cat *catalog.Catalog) *Composer {
	return &Composer{catalog: cat}
}

// ComposeInstruction builds the system instruction for one task.
// It never fails: unknown themes resolve by persona and unknown
// concepts use catalog.FallbackAnalogy.
func (c *Composer) ComposeInstruction(task Task, persona catalog.Persona, mode catalog.CourseMode, concept, profession, analogyKey string) string {
	analogy := c.catalog.AnalogyTable(analogyKey, persona).Analogy(concept)

	var b strings.Builder
	b.WriteString(voice(persona, mode))

	switch mode {
	case catalog.CourseSWE:
		if task == TaskExplain {
			fmt.Fprintf(&b, "\nYour task is to explain the technical concept of %q.", concept)
			fmt.Fprintf(&b, "\nYou MUST use and elaborate on the following specific analogy: \"%s is like %s\".", concept, analogy)
			b.WriteString("\nExplain the concept clearly and concisely. Bridge the technical function to the real-world analogue.")
		} else {
			fmt.Fprintf(&b, "\nYour role is to evaluate the user's understanding of a technical concept, which they explained using the analogy: \"%s is like %s\".", concept, analogy)
			b.WriteString(`
1.  **Acknowledge their attempt:** Start with positive reinforcement (e.g., "That's an excellent correlation," or "A very insightful way to put it.").
2.  **Validate Correctness:** If their application of the analogy is correct, confirm it and briefly reinforce the key takeaway.
3.  **Gently Correct:** If they are slightly off, gently guide them. Do not say "you are wrong." Instead, say something like, "That's close. To be more precise, the analogy fits best when we consider..." Then, clarify the connection.
4.  **Maintain the appropriate tone for the persona.**`)
		}
	case catalog.CourseCoding, catalog.CourseUnset:
		if task == TaskExplain {
			fmt.Fprintf(&b, "\nYour task is to explain the programming concept of %q. Stick to the core idea and avoid technical jargon.", concept)
		} else {
			fmt.Fprintf(&b, `
Your role is to evaluate the user's code or answer.
1.  **Be Positive:** Always start with encouragement.
2.  **Check for Correctness:** See if their answer correctly applies the concept of %q.
3.  **Give Simple Feedback:** If it's correct, say so and cheer them on! If it's incorrect, give a very simple, gentle hint to help them fix it. Don't give them the answer directly.`, concept)
		}
		fmt.Fprintf(&b, "\nWhere it helps, lean on this analogy: \"%s is like %s\".", concept, analogy)
	}

	if task == TaskExplain && persona == catalog.PersonaDoctor && strings.TrimSpace(profession) != "" {
		fmt.Fprintf(&b, " The user's medical specialty is %q. If natural, you can tailor an example (e.g., for a cardiologist, an API could connect an EKG to the EHR).", strings.TrimSpace(profession))
	}

	return b.String()
}

func voice(persona catalog.Persona, mode catalog.CourseMode) string {
	switch persona {
	case catalog.PersonaKid:
		return kidVoice
	case catalog.PersonaDoctor:
		return doctorVoice
	case catalog.PersonaAdult, catalog.PersonaUnset:
		if mode == catalog.CourseSWE {
			return mentorVoice
		}
		return coachVoice
	default:
		return coachVoice
	}
}

// EvaluationPrompt is the user-side prompt for grading a submission.
// The framing and the learner's text are kept apart so the submission
// can never be read as part of the instructions.
type EvaluationPrompt struct {
	Framing    string
	Submission string
}

// ComposeEvaluationPrompt builds the prompt that asks the model to review
// submission against step's challenge.
func ComposeEvaluationPrompt(step catalog.LearningStep, submission string) EvaluationPrompt {
	framing := fmt.Sprintf("%s The user was given this challenge: '%s'. They submitted the following:",
		step.EvaluationPreamble, step.ChallengeDescription)
	return EvaluationPrompt{Framing: framing, Submission: submission}
}

const reviewRequest = "Please review their submission based on your system instructions."

// Render produces a single prompt string for transports that accept only
// one prompt. The submission sits inside a fence it cannot close.
func (p EvaluationPrompt) Render() string {
	fence := fenceFor(p.Submission)
	var b strings.Builder
	b.WriteString(p.Framing)
	b.WriteString("\n")
	b.WriteString(fence)
	b.WriteString("\n")
	b.WriteString(p.Submission)
	b.WriteString("\n")
	b.WriteString(fence)
	b.WriteString("\n")
	b.WriteString(reviewRequest)
	return b.String()
}

// Messages returns the framing and the submission as two user messages.
func (p EvaluationPrompt) Messages() []llm.Message {
	fence := fenceFor(p.Submission)
	return []llm.Message{
		{Role: llm.RoleUser, Content: p.Framing + " The submission follows in the next message, verbatim. " + reviewRequest},
		{Role: llm.RoleUser, Content: fence + "\n" + p.Submission + "\n" + fence},
	}
}

// fenceFor returns a backtick fence longer than any backtick run in s.
func fenceFor(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}
