package components

import (
	"github.com/vivekv1504/movie-search/internal/tui/theme"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// NewViewport constructs a borderless themed viewport for panel contents.
func NewViewport(width, height int, th theme.Theme) *viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = th.PanelStyle().
		BorderStyle(lipgloss.Border{}).
		BorderForeground(lipgloss.Color("")).
		Padding(0)
	return &vp
}
