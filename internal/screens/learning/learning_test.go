package learning

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/screen"
	"github.com/abhisek/coacha/internal/session"
)

func stepState(id string, index int) session.State {
	return session.State{
		View:       session.ViewLearning,
		PathName:   "Coding Fundamentals",
		PathLength: 3,
		Step: &session.StepView{
			Index:            index,
			ID:               id,
			Title:            "Variables",
			Emoji:            "📦",
			Challenge:        "Store your name in a variable.",
			Placeholder:      "name = ...",
			EstimatedMinutes: 10,
			Points:           10,
		},
		Progress: &session.GameProgress{Theme: catalog.ThemePlayful},
	}
}

func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "ctrl+s":
		return tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
	case "ctrl+n":
		return tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl}
	case "ctrl+p":
		return tea.KeyPressMsg{Code: 'p', Mod: tea.ModCtrl}
	case "ctrl+o":
		return tea.KeyPressMsg{Code: 'o', Mod: tea.ModCtrl}
	case "ctrl+r":
		return tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	}
	return tea.KeyPressMsg{}
}

func typeText(l *LearningScreen, s string) {
	for _, r := range s {
		l.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func TestShortcutsEmitIntents(t *testing.T) {
	tests := []struct {
		key  string
		want tea.Msg
	}{
		{"ctrl+n", screen.NextMsg{}},
		{"ctrl+p", screen.PreviousMsg{}},
		{"ctrl+o", screen.OpenOutlineMsg{}},
		{"ctrl+r", screen.RetryExplainMsg{}},
		{"esc", screen.HomeMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			l := New(stepState("variables", 1))
			_, cmd := l.Update(key(tt.key))
			if got := run(cmd); got != tt.want {
				t.Errorf("expected %T, got %T", tt.want, got)
			}
		})
	}
}

func TestSubmitSendsEditorContents(t *testing.T) {
	l := New(stepState("variables", 1))
	typeText(l, "name = 'Ada'")

	_, cmd := l.Update(key("ctrl+s"))
	msg, ok := run(cmd).(screen.SubmitMsg)
	if !ok {
		t.Fatal("expected SubmitMsg")
	}
	if msg.Code != "name = 'Ada'" {
		t.Errorf("expected editor contents, got %q", msg.Code)
	}
}

func TestRetryIgnoredWhileLoading(t *testing.T) {
	st := stepState("variables", 1)
	st.LoadingExplanation = true
	l := New(st)
	_, cmd := l.Update(key("ctrl+r"))
	if run(cmd) != nil {
		t.Error("retry should be ignored while the explanation loads")
	}
}

func TestEditorResetsOnStepChange(t *testing.T) {
	l := New(stepState("variables", 1))
	typeText(l, "draft")

	l.Update(screen.StateMsg{State: stepState("variables", 1)})
	if l.editor.Value() != "draft" {
		t.Errorf("same step should keep the draft, got %q", l.editor.Value())
	}

	l.Update(screen.StateMsg{State: stepState("conditionals", 2)})
	if l.editor.Value() != "" {
		t.Errorf("new step should clear the editor, got %q", l.editor.Value())
	}
}

func TestViewStates(t *testing.T) {
	st := stepState("variables", 1)
	st.LoadingExplanation = true
	if view := New(st).View(100, 40); !strings.Contains(view, "preparing this lesson") {
		t.Error("expected loading message")
	}

	st = stepState("variables", 1)
	st.Explanation = "Failed to load concept: API key not configured"
	view := New(st).View(100, 40)
	if !strings.Contains(view, "API key not configured") || !strings.Contains(view, "ctrl+r") {
		t.Error("expected failure text with a retry hint")
	}

	st = stepState("variables", 1)
	st.Explanation = "A variable is a labelled box."
	st.Feedback = "Great job!"
	st.Step.Completed = true
	view = New(st).View(100, 40)
	for _, want := range []string{"labelled box", "Great job", "Store your name", "Step 2 of 3", "✓ completed", "ctrl+n for the next step"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestSpinnerStopsWhenIdle(t *testing.T) {
	st := stepState("variables", 1)
	st.LoadingFeedback = true
	l := New(st)
	if l.Init() == nil || !l.spinning {
		t.Fatal("expected spinner to start while loading")
	}

	l.Update(screen.StateMsg{State: stepState("variables", 1)})
	_, cmd := l.Update(l.spin.Tick())
	if cmd != nil || l.spinning {
		t.Error("spinner should stop once nothing is loading")
	}
}
