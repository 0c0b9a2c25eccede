package theme

import (
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Icons selects the glyph set used by the browser
type Icons string

const (
	IconsAuto  Icons = "auto"
	IconsEmoji Icons = "emoji"
	IconsASCII Icons = "ascii"
)

// Palette is the browser's color scheme
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
}

const (
	panelPadding  = 1
	statusPadding = 1
)

// Theme holds the palette and glyphs the views render with
type Theme struct {
	palette Palette
	glyphs  map[string]string
}

// Option adjusts a Theme built by New
type Option func(*Theme)

// WithIcons picks the glyph set. IconsAuto and unknown values detect the
// terminal.
func WithIcons(icons Icons) Option {
	return func(t *Theme) {
		t.glyphs = glyphsFor(icons)
	}
}

// WithAccent replaces the accent color used for panel borders, filter badges
// and the spinner. An empty value keeps the default.
func WithAccent(color string) Option {
	return func(t *Theme) {
		if color = strings.TrimSpace(color); color != "" {
			t.palette.Accent = lipgloss.Color(color)
		}
	}
}

// New builds the default theme with opts applied
func New(opts ...Option) Theme {
	t := Theme{
		palette: Palette{
			Primary:    lipgloss.Color("#8c2f39"),
			Secondary:  lipgloss.Color("#5e3b4e"),
			Accent:     lipgloss.Color("#f2b134"),
			Background: lipgloss.Color("#fbf6ef"),
			Muted:      lipgloss.Color("#9a8f97"),
			Error:      lipgloss.Color("#f04c56"),
		},
		glyphs: glyphsFor(IconsAuto),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Default returns the theme with terminal-detected icons
func Default() Theme {
	return New()
}

// Palette returns the colors in use
func (t Theme) Palette() Palette {
	return t.palette
}

// Icon returns the glyph for name, falling back to ASCII
func (t Theme) Icon(name string) string {
	if icon, ok := t.glyphs[name]; ok {
		return icon
	}
	return asciiGlyphs[name]
}

func (t Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Background(t.palette.Primary).
		Foreground(t.palette.Background).
		Align(lipgloss.Center)
}

func (t Theme) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.palette.Secondary).
		Foreground(t.palette.Background).
		Padding(0, statusPadding)
}

// PanelStyle frames the result list and the detail pane
func (t Theme) PanelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.palette.Accent).
		Padding(panelPadding)
}

// FocusedPanelStyle is PanelStyle for the panel that owns the keyboard
func (t Theme) FocusedPanelStyle() lipgloss.Style {
	return t.PanelStyle().BorderForeground(t.palette.Primary)
}

func (t Theme) PanelTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Underline(true)
}

// FilterStyle renders the genre and rating badges
func (t Theme) FilterStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Background(t.palette.Accent).
		Foreground(t.palette.Background)
}

// SelectedStyle highlights the row under the list cursor.
func (t Theme) SelectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.palette.Primary)
}

// MutedStyle renders secondary text such as hints and empty states.
func (t Theme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette.Muted)
}

func (t Theme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette.Error).Bold(true)
}

func (t Theme) SpinnerColor() lipgloss.Color {
	return t.palette.Accent
}

func glyphsFor(icons Icons) map[string]string {
	switch icons {
	case IconsEmoji:
		return emojiGlyphs
	case IconsASCII:
		return asciiGlyphs
	}
	if isLimitedTerminal() {
		return asciiGlyphs
	}
	return emojiGlyphs
}

// isLimitedTerminal detects environments where emoji often render badly
func isLimitedTerminal() bool {
	if os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != "" {
		return true
	}
	return runtime.GOOS == "windows"
}

var emojiGlyphs = map[string]string{
	"movie":   "🎬",
	"search":  "🔍",
	"genre":   "🎭",
	"rating":  "⭐",
	"year":    "📅",
	"poster":  "🖼",
	"trailer": "▶",
	"loading": "⏳",
	"error":   "❌",
	"empty":   "∅",
	"cursor":  "➜",
	"arrows":  "↑↓",
}

var asciiGlyphs = map[string]string{
	"movie":   "[M]",
	"search":  "[?]",
	"genre":   "[G]",
	"rating":  "*",
	"year":    "[Y]",
	"poster":  "[P]",
	"trailer": ">",
	"loading": "...",
	"error":   "[!]",
	"empty":   "-",
	"cursor":  ">",
	"arrows":  "^v",
}
