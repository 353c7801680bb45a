package dashboard

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coacha/internal/identity"
	"github.com/abhisek/coacha/internal/screen"
	"github.com/abhisek/coacha/internal/session"
)

func testState(admin bool) (session.State, []session.StepView) {
	outline := []session.StepView{
		{Index: 0, ID: "welcome", Title: "Hello World", Emoji: "👋", EstimatedMinutes: 5, Points: 5, Completed: true},
		{Index: 1, ID: "variables", Title: "Variables", Emoji: "📦", EstimatedMinutes: 10, Points: 10},
		{Index: 2, ID: "conditionals", Title: "Conditionals", Emoji: "🔀", EstimatedMinutes: 10, Points: 15, Locked: true},
	}
	st := session.State{
		View:       session.ViewDashboard,
		User:       &identity.User{UID: "u1", Name: "Ada", Email: "ada@example.com", IsAdmin: admin},
		PathName:   "Coding Fundamentals",
		PathLength: 3,
		Step:       &outline[1],
		Progress: &session.GameProgress{
			CurrentIndex:   1,
			TotalPoints:    5,
			CompletedSteps: []string{"welcome"},
			AchievedBadges: []string{"welcome_aboard"},
		},
	}
	return st, outline
}

func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func labels(d *DashboardScreen) []string {
	out := make([]string, len(d.menu.Items))
	for i, it := range d.menu.Items {
		out[i] = it.Label
	}
	return out
}

func TestViewShowsProgress(t *testing.T) {
	st, outline := testState(false)
	view := New(st, outline).View(100, 40)

	for _, want := range []string{"Coding Fundamentals", "1/3 steps", "★ 5 points", "about 25 min", "Step 2 of 3", "Variables", "Journey Started"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestAdminItemOnlyForAdmins(t *testing.T) {
	st, outline := testState(false)
	if strings.Contains(strings.Join(labels(New(st, outline)), ","), "Analytics") {
		t.Error("learners should not see the analytics item")
	}
	st, outline = testState(true)
	if !strings.Contains(strings.Join(labels(New(st, outline)), ","), "Analytics") {
		t.Error("admins should see the analytics item")
	}
}

func TestContinueEmitsStart(t *testing.T) {
	st, outline := testState(false)
	d := New(st, outline)
	_, cmd := d.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := run(cmd).(screen.StartMsg); !ok {
		t.Error("expected StartMsg")
	}
}

func TestResetNeedsConfirmation(t *testing.T) {
	st, outline := testState(false)
	d := New(st, outline)
	for d.menu.Items[d.menu.Selected].Label != "Reset progress" {
		d.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	sel := d.menu.Selected

	_, cmd := d.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if run(cmd) != nil {
		t.Fatal("first enter should only ask for confirmation")
	}
	if !d.confirmReset || !strings.Contains(d.menu.Items[sel].Label, "again") {
		t.Fatal("expected the confirmation label")
	}
	if d.menu.Selected != sel {
		t.Errorf("selection moved from %d to %d", sel, d.menu.Selected)
	}

	_, cmd = d.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := run(cmd).(screen.ResetMsg); !ok {
		t.Error("expected ResetMsg on the second enter")
	}
}

func TestMovingAwayCancelsReset(t *testing.T) {
	st, outline := testState(false)
	d := New(st, outline)
	for d.menu.Items[d.menu.Selected].Label != "Reset progress" {
		d.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	d.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	d.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if d.confirmReset {
		t.Error("moving the selection should cancel the reset")
	}
}

func TestStateMsgRefreshes(t *testing.T) {
	st, outline := testState(false)
	d := New(st, outline)

	outline[1].Completed = true
	st.Progress.TotalPoints = 15
	d.Update(screen.StateMsg{State: st, Outline: outline})

	if !strings.Contains(d.View(100, 40), "2/3 steps") {
		t.Error("expected refreshed step count")
	}
}
