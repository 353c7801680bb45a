package outline

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coacha/internal/screen"
	"github.com/abhisek/coacha/internal/session"
)

func fixture() (session.State, []session.StepView) {
	steps := []session.StepView{
		{Index: 0, ID: "welcome", Title: "Hello World", Completed: true},
		{Index: 1, ID: "variables", Title: "Variables"},
		{Index: 2, ID: "conditionals", Title: "Conditionals", Locked: true},
	}
	return session.State{PathName: "Coding Fundamentals", Step: &steps[1]}, steps
}

func TestCursorStartsOnCurrentStep(t *testing.T) {
	o := New(fixture())
	if o.cursor != 1 {
		t.Errorf("expected cursor 1, got %d", o.cursor)
	}
}

func TestEnterOpensUnlockedStep(t *testing.T) {
	o := New(fixture())
	o.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	_, cmd := o.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(screen.GotoMsg)
	if !ok || msg.Index != 0 {
		t.Errorf("expected GotoMsg{0}, got %#v", msg)
	}
}

func TestLockedStepShowsNotice(t *testing.T) {
	o := New(fixture())
	o.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := o.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("locked steps should not open")
	}
	if !strings.Contains(o.View(100, 30), "unlock") {
		t.Error("expected a lock notice")
	}
}

func TestViewMarksSteps(t *testing.T) {
	view := New(fixture()).View(100, 30)
	for _, want := range []string{"Coding Fundamentals", "✓", "🔒", "you are here"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}
