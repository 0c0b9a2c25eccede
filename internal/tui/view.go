package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vivekv1504/movie-search/internal/provider"
	"github.com/vivekv1504/movie-search/internal/search"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// View renders the header, search controls, the two panels and the status bar
func (m *Model) View() string {
	state := m.ctrl.State()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.input.View(),
		m.renderFilters(state),
		m.renderPanels(state),
		m.renderStatusBar(state),
	)
}

func (m *Model) renderHeader() string {
	title := m.theme.Icon("movie") + " Movie Search"
	return m.theme.HeaderStyle().Width(m.width).Render(title)
}

// GenreLabel is the selected genre's display name
func (m *Model) GenreLabel() string {
	options := m.genreOptions()
	if m.genreIdx >= len(options) {
		return options[0].Name
	}
	return options[m.genreIdx].Name
}

// RatingLabel is the selected minimum rating's display name
func (m *Model) RatingLabel() string {
	return ratingLabel(ratingSteps[m.ratingIdx])
}

func ratingLabel(v float64) string {
	if v <= 0 {
		return "Any"
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "+"
}

func (m *Model) renderFilters(state search.State) string {
	genre := m.theme.FilterStyle().Render(m.theme.Icon("genre") + " " + m.GenreLabel())
	rating := m.theme.FilterStyle().Render(m.theme.Icon("rating") + " " + m.RatingLabel())
	hint := m.theme.MutedStyle().Render("g/G genre  r/R rating")
	if m.focus == focusInput {
		hint = m.theme.MutedStyle().Render("tab to browse results")
	}
	if state.Status == search.StatusLoading {
		hint = m.spinner.View() + " " + hint
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, genre, " ", rating, "  ", hint)
}

func (m *Model) renderPanels(state search.State) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderList(state), m.renderDetail())
}

// statusLine is the list placeholder for non-result states, "" when there are
// results to show.
func statusLine(state search.State) string {
	switch {
	case state.Status == search.StatusLoading:
		return LoadingText
	case state.Status == search.StatusErrored:
		return ErrorPrefix + state.Err
	case state.Status == search.StatusLoaded && len(state.Results) == 0:
		return EmptyText
	}
	return ""
}

func (m *Model) renderList(state search.State) string {
	inner := max(m.listWidth-4, 1)
	style := m.theme.PanelStyle()
	if m.focus == focusList {
		style = m.theme.FocusedPanelStyle()
	}
	style = style.Width(m.listWidth - 2).Height(m.panelHeight - 2)

	var b strings.Builder
	b.WriteString(m.theme.PanelTitleStyle().Render("Results"))
	b.WriteString("\n")

	if line := statusLine(state); line != "" {
		lineStyle := m.theme.MutedStyle()
		if state.Status == search.StatusErrored {
			lineStyle = m.theme.ErrorStyle()
		}
		b.WriteString(lineStyle.Render(runewidth.Truncate(line, inner, "…")))
		return style.Render(b.String())
	}

	end := min(m.offset+m.listRows, len(state.Results))
	for i := m.offset; i < end; i++ {
		row := m.formatRow(state.Results[i], inner-2)
		if i == m.cursor {
			b.WriteString(m.theme.SelectedStyle().Render(m.theme.Icon("cursor") + " " + row))
		} else {
			b.WriteString("  " + row)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return style.Render(b.String())
}

// formatRow renders "Title (Year)  ★ 7.4" truncated to width
func (m *Model) formatRow(movie provider.Movie, width int) string {
	suffix := ""
	if movie.Rating > 0 {
		suffix = fmt.Sprintf("  %s %.1f", m.theme.Icon("rating"), movie.Rating)
	}
	title := movie.Title
	if movie.Year != "" {
		title += " (" + movie.Year + ")"
	}
	avail := width - runewidth.StringWidth(suffix)
	if avail < 4 {
		return runewidth.Truncate(title, max(width, 1), "…")
	}
	return runewidth.Truncate(title, avail, "…") + suffix
}

func (m *Model) renderDetail() string {
	style := m.theme.PanelStyle().
		Width(m.detailWidth - 2).
		Height(m.panelHeight - 2)
	title := m.theme.PanelTitleStyle().Render("Details")
	return style.Render(title + "\n" + m.detail.View())
}

// refreshDetail rebuilds the detail viewport for the selected movie
func (m *Model) refreshDetail() {
	if m.detail == nil {
		return
	}
	m.detail.SetContent(m.detailContent())
	m.detail.GotoTop()
}

func (m *Model) detailContent() string {
	movie, ok := m.Selected()
	if !ok {
		return m.theme.MutedStyle().Render("Nothing selected")
	}
	width := max(m.detailWidth-4, 10)
	state := m.ctrl.State()

	poster := movie.Poster
	if poster == "" {
		poster = "No Image"
	}
	year := movie.Year
	if year == "" {
		year = "-"
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(runewidth.Truncate(movie.Title, width, "…")),
		fmt.Sprintf("%s %s", m.theme.Icon("year"), year),
		fmt.Sprintf("%s %.1f", m.theme.Icon("rating"), movie.Rating),
		fmt.Sprintf("%s %s", m.theme.Icon("poster"), runewidth.Truncate(poster, width-3, "…")),
	}
	if movie.Genre != "" {
		lines = append(lines, fmt.Sprintf("%s %s", m.theme.Icon("genre"), movie.Genre))
	}
	if overview := strings.TrimSpace(movie.Overview); overview != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(width).Render(overview))
	}
	if state.ActiveTrailer != nil && state.TrailerFor == movie.Title {
		lines = append(lines, "",
			m.theme.Icon("trailer")+" "+runewidth.Truncate(state.ActiveTrailer.Title, width-2, "…"),
			m.theme.MutedStyle().Render(state.ActiveTrailer.URL()),
		)
	}
	return strings.Join(lines, "\n")
}

// trailerStatus describes the trailer lookup, "" when there is nothing to say
func (m *Model) trailerStatus(state search.State) string {
	switch {
	case m.playErr != "":
		return m.playErr
	case state.LoadingTrailer:
		return "Loading trailer for " + state.TrailerFor + "…"
	case state.TrailerNotice != "":
		return state.TrailerNotice
	case state.ActiveTrailer != nil:
		return m.theme.Icon("trailer") + " " + state.ActiveTrailer.Title + " (p play, x close)"
	}
	return ""
}

func (m *Model) renderStatusBar(state search.State) string {
	left := statusLine(state)
	if left == "" {
		left = fmt.Sprintf("%d of %d movies", len(state.Results), state.TotalResults)
	}
	if trailer := m.trailerStatus(state); trailer != "" {
		left += "  |  " + trailer
	}
	right := m.theme.Icon("arrows") + " move  enter trailer  esc quit"

	avail := m.width - 2
	if runewidth.StringWidth(left)+runewidth.StringWidth(right)+2 > avail {
		right = ""
	}
	left = runewidth.Truncate(left, max(avail, 1), "…")
	pad := max(avail-runewidth.StringWidth(left)-runewidth.StringWidth(right), 0)
	return m.theme.StatusBarStyle().Width(m.width).Render(left + strings.Repeat(" ", pad) + right)
}
