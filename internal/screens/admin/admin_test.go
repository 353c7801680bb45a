package admin

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coacha/internal/screen"
	"github.com/abhisek/coacha/internal/store"
)

type fakeSource struct {
	analytics *store.Analytics
	usage     []store.LLMUsage
	err       error
}

func (f fakeSource) LoadAnalytics(context.Context) (*store.Analytics, error) {
	return f.analytics, f.err
}

func (f fakeSource) LLMUsageSummary(context.Context) ([]store.LLMUsage, error) {
	return f.usage, nil
}

func loaded(t *testing.T, src Source) *AdminScreen {
	t.Helper()
	a := New(context.Background(), src)
	cmd := a.Init()
	if cmd == nil {
		t.Fatal("expected a load command")
	}
	a.Update(cmd())
	return a
}

func TestShowsAnalytics(t *testing.T) {
	a := loaded(t, fakeSource{
		analytics: &store.Analytics{
			TotalUsers:             3,
			AvgPoints:              12,
			PersonaDistribution:    []store.NamedCount{{Name: "Kid", Count: 2}, {Name: "Doctor", Count: 1}},
			CoursePopularity:       []store.NamedCount{{Name: "Coding Fundamentals", Count: 2}},
			TotalConceptsCompleted: 7,
		},
		usage: []store.LLMUsage{{Model: "gemini-2.5-flash", Purpose: "explain", Calls: 4}},
	})

	view := a.View(120, 50)
	for _, want := range []string{"learners", "Kid", "Doctor", "Coding Fundamentals", "gemini-2.5-flash", "explain"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestShowsLoadError(t *testing.T) {
	a := loaded(t, fakeSource{err: errors.New("database is locked")})
	if !strings.Contains(a.View(120, 40), "database is locked") {
		t.Error("expected the load error")
	}
}

func TestEmptyData(t *testing.T) {
	a := loaded(t, fakeSource{analytics: &store.Analytics{}})
	if !strings.Contains(a.View(120, 40), "No data yet") {
		t.Error("expected empty-state text")
	}
}

func TestEscGoesHome(t *testing.T) {
	a := New(context.Background(), fakeSource{})
	_, cmd := a.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(screen.HomeMsg); !ok {
		t.Error("expected HomeMsg")
	}
}
