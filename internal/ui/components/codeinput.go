package components

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// CodeInput is a multi-line editor for submissions.
type CodeInput struct {
	Model textarea.Model
}

// NewCodeInput creates a focused editor with the step's placeholder.
func NewCodeInput(placeholder string, width, height int) CodeInput {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = true
	ta.CharLimit = 8000
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.Focus()
	return CodeInput{Model: ta}
}

// Init returns the initial command.
func (c CodeInput) Init() tea.Cmd {
	return c.Model.Focus()
}

// Update handles messages.
func (c CodeInput) Update(msg tea.Msg) (CodeInput, tea.Cmd) {
	var cmd tea.Cmd
	c.Model, cmd = c.Model.Update(msg)
	return c, cmd
}

// View renders the editor.
func (c CodeInput) View() string {
	return c.Model.View()
}

// Value returns the editor contents unchanged.
func (c CodeInput) Value() string {
	return c.Model.Value()
}

// SetSize resizes the editor.
func (c *CodeInput) SetSize(width, height int) {
	c.Model.SetWidth(width)
	c.Model.SetHeight(height)
}
