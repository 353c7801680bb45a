package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/coacha/internal/badges"
	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/identity"
	"github.com/abhisek/coacha/internal/llm"
	"github.com/abhisek/coacha/internal/session"
	"github.com/abhisek/coacha/internal/tutor"
)

type signInRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

type signInResponse struct {
	Token string         `json:"token"`
	User  *identity.User `json:"user"`
	State session.State  `json:"state"`
}

// signIn exchanges an allowlisted email for a session token.
func (s *Server) signIn(c *gin.Context) {
	var body signInRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, llm.ErrorBody{Error: "Invalid request body", Details: err.Error()})
		return
	}
	u, err := identity.NewUser(body.Email, body.Name, s.adminEmail)
	if err != nil {
		c.JSON(http.StatusBadRequest, llm.ErrorBody{Error: "Invalid request body", Details: err.Error()})
		return
	}

	lr, err := s.learners.get(c.Request.Context(), u)
	if err != nil {
		s.fail(c, err)
		return
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		s.fail(c, err)
		return
	}

	lr.mu.Lock()
	st := lr.machine.Snapshot()
	lr.mu.Unlock()
	c.JSON(http.StatusOK, signInResponse{Token: token, User: u, State: st})
}

func (s *Server) me(c *gin.Context) {
	u, _ := currentUser(c)
	c.JSON(http.StatusOK, u)
}

func (s *Server) logout(c *gin.Context) {
	u, _ := currentUser(c)
	if lr, ok := s.learners.lookup(u.UID); ok {
		lr.mu.Lock()
		if err := lr.machine.Logout(c.Request.Context()); err != nil {
			s.logger.Warn("logout", zap.String("uid", u.UID), zap.Error(err))
		}
		lr.mu.Unlock()
	}
	s.learners.drop(u.UID)
	c.Status(http.StatusNoContent)
}

// learnerFor resolves the caller's machine, writing the error response
// when there is none.
func (s *Server) learnerFor(c *gin.Context) (*learner, bool) {
	u, ok := currentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, llm.ErrorBody{Error: "Unauthorized"})
		return nil, false
	}
	lr, err := s.learners.get(c.Request.Context(), u)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return lr, true
}

// do runs fn under the learner's lock and responds with the resulting
// state.
func (s *Server) do(c *gin.Context, fn func(m *session.Machine, ctx context.Context) error) {
	lr, ok := s.learnerFor(c)
	if !ok {
		return
	}
	lr.mu.Lock()
	err := fn(lr.machine, c.Request.Context())
	st := lr.machine.Snapshot()
	lr.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) state(c *gin.Context) {
	s.do(c, func(*session.Machine, context.Context) error { return nil })
}

func (s *Server) outline(c *gin.Context) {
	lr, ok := s.learnerFor(c)
	if !ok {
		return
	}
	lr.mu.Lock()
	out := lr.machine.Outline()
	lr.mu.Unlock()
	if out == nil {
		s.fail(c, session.ErrNotOnboarded)
		return
	}
	c.JSON(http.StatusOK, gin.H{"steps": out})
}

type onboardingRequest struct {
	Persona      string `json:"persona" binding:"required"`
	Course       string `json:"course"`
	Profession   string `json:"profession"`
	AnalogyTheme string `json:"analogyTheme"`
}

func (s *Server) onboarding(c *gin.Context) {
	var body onboardingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, llm.ErrorBody{Error: "Invalid request body", Details: err.Error()})
		return
	}
	persona, err := catalog.ParsePersona(body.Persona)
	if err != nil {
		s.fail(c, err)
		return
	}
	course := catalog.CourseUnset
	if body.Course != "" {
		if course, err = catalog.ParseCourseMode(body.Course); err != nil {
			s.fail(c, err)
			return
		}
	}
	s.do(c, func(m *session.Machine, ctx context.Context) error {
		return m.CompleteOnboarding(ctx, session.Onboarding{
			Persona:      persona,
			Course:       course,
			Profession:   body.Profession,
			AnalogyTheme: body.AnalogyTheme,
		})
	})
}

// start enters the learning view and loads the current explanation.
func (s *Server) start(c *gin.Context) {
	s.navigate(c, func(m *session.Machine, _ context.Context) (*tutor.ExplainRequest, error) {
		req, err := m.StartLearning()
		if err != nil {
			return nil, err
		}
		return &req, nil
	})
}

func (s *Server) next(c *gin.Context) {
	s.navigate(c, (*session.Machine).Next)
}

func (s *Server) previous(c *gin.Context) {
	s.navigate(c, (*session.Machine).Previous)
}

func (s *Server) gotoStep(c *gin.Context) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, llm.ErrorBody{Error: "Invalid step index", Details: err.Error()})
		return
	}
	s.navigate(c, func(m *session.Machine, ctx context.Context) (*tutor.ExplainRequest, error) {
		return m.Goto(ctx, i)
	})
}

// explain reloads the explanation for the current step.
func (s *Server) explain(c *gin.Context) {
	s.navigate(c, func(m *session.Machine, _ context.Context) (*tutor.ExplainRequest, error) {
		if m.View() != session.ViewLearning {
			return nil, session.ErrNotOnboarded
		}
		req, ok := m.BeginExplain()
		if !ok {
			return nil, session.ErrNotOnboarded
		}
		return &req, nil
	})
}

// navigate applies a cursor move and, when it yields an explanation
// request, calls the tutor with the learner unlocked.
func (s *Server) navigate(c *gin.Context, move func(*session.Machine, context.Context) (*tutor.ExplainRequest, error)) {
	lr, ok := s.learnerFor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	lr.mu.Lock()
	req, err := move(lr.machine, ctx)
	lr.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}

	if req != nil {
		text, err := s.tutor.Explain(ctx, *req)
		if err != nil {
			c.Error(err)
		}
		lr.mu.Lock()
		lr.machine.ResolveExplanation(*req, text, err)
		lr.mu.Unlock()
	}

	lr.mu.Lock()
	st := lr.machine.Snapshot()
	lr.mu.Unlock()
	c.JSON(http.StatusOK, st)
}

type submitRequest struct {
	Code string `json:"code" binding:"required"`
}

type badgeView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        badges.Icon `json:"icon"`
}

type submitResponse struct {
	Points        int                    `json:"points"`
	Badges        []badgeView            `json:"badges"`
	Notifications []session.Notification `json:"notifications"`
	State         session.State          `json:"state"`
}

// submit sends code for evaluation and reports what it earned.
func (s *Server) submit(c *gin.Context) {
	var body submitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, llm.ErrorBody{Error: "Invalid request body", Details: err.Error()})
		return
	}
	lr, ok := s.learnerFor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	lr.mu.Lock()
	req, ok := lr.machine.BeginSubmission(body.Code)
	lr.mu.Unlock()
	if !ok {
		s.fail(c, session.ErrNothingToSubmit)
		return
	}

	feedback, err := s.tutor.Evaluate(ctx, req)
	if err != nil {
		c.Error(err)
	}

	lr.mu.Lock()
	award, _ := lr.machine.ResolveEvaluation(ctx, req, feedback, err)
	st := lr.machine.Snapshot()
	lr.mu.Unlock()

	resp := submitResponse{
		Points:        award.Points,
		Badges:        make([]badgeView, 0, len(award.Badges)),
		Notifications: award.Notifications(),
		State:         st,
	}
	for _, b := range award.Badges {
		resp.Badges = append(resp.Badges, badgeView{ID: b.ID, Name: b.Name, Description: b.Description, Icon: b.Icon})
	}
	if resp.Notifications == nil {
		resp.Notifications = []session.Notification{}
	}
	c.JSON(http.StatusOK, resp)
}

type settingsRequest struct {
	Theme        string `json:"theme"`
	AnalogyTheme string `json:"analogyTheme"`
}

func (s *Server) settings(c *gin.Context) {
	var body settingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, llm.ErrorBody{Error: "Invalid request body", Details: err.Error()})
		return
	}
	s.do(c, func(m *session.Machine, ctx context.Context) error {
		return m.UpdateSettings(ctx, session.Settings{
			Theme:        catalog.Theme(body.Theme),
			AnalogyTheme: body.AnalogyTheme,
		})
	})
}

func (s *Server) reset(c *gin.Context) {
	s.do(c, (*session.Machine).Reset)
}

func (s *Server) home(c *gin.Context) {
	s.do(c, func(m *session.Machine, _ context.Context) error {
		m.GoHome()
		return nil
	})
}

func (s *Server) analytics(c *gin.Context) {
	a, err := s.store.LoadAnalytics(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) llmUsage(c *gin.Context) {
	usage, err := s.store.LLMUsageSummary(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

type themeView struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

type pathView struct {
	Kind         catalog.PathKind `json:"kind"`
	Name         string           `json:"name"`
	Steps        int              `json:"steps"`
	TotalMinutes int              `json:"totalMinutes"`
	TotalPoints  int              `json:"totalPoints"`
}

// catalogIndex lists the onboarding choices.
func (s *Server) catalogIndex(c *gin.Context) {
	paths := make([]pathView, 0, 3)
	for _, k := range catalog.AllPathKinds() {
		p, ok := s.cat.PathByKind(k)
		if !ok {
			continue
		}
		paths = append(paths, pathView{
			Kind:         k,
			Name:         k.DisplayName(),
			Steps:        p.Len(),
			TotalMinutes: p.TotalMinutes(),
			TotalPoints:  p.TotalPoints(),
		})
	}
	themes := make([]themeView, 0, len(s.cat.Themes()))
	for _, t := range s.cat.Themes() {
		themes = append(themes, themeView{Key: t.Key, Name: t.Name, Emoji: t.Emoji, Description: t.Description})
	}
	c.JSON(http.StatusOK, gin.H{
		"personas":      catalog.AllPersonas(),
		"courses":       catalog.AllCourseModes(),
		"paths":         paths,
		"analogyThemes": themes,
	})
}

// fail maps an error onto a status and the {error, details} body.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	c.Error(err)
	c.AbortWithStatusJSON(status, llm.ErrorBody{Error: http.StatusText(status), Details: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotAllowlisted),
		errors.Is(err, session.ErrNotAdmin),
		errors.Is(err, session.ErrNotSignedIn):
		return http.StatusForbidden
	case errors.Is(err, session.ErrInvalidOnboarding),
		errors.Is(err, session.ErrProfessionRequired),
		errors.Is(err, session.ErrStepOutOfRange),
		errors.Is(err, catalog.ErrUnknownValue),
		errors.Is(err, identity.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotOnboarded),
		errors.Is(err, session.ErrAlreadyOnboarded),
		errors.Is(err, session.ErrStepIncomplete),
		errors.Is(err, session.ErrStepLocked),
		errors.Is(err, session.ErrNothingToSubmit):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
