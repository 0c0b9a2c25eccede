package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/vivekv1504/movie-search/internal/player"
	"github.com/vivekv1504/movie-search/internal/provider"
	"github.com/vivekv1504/movie-search/internal/search"
	"github.com/vivekv1504/movie-search/internal/tui/components"
	"github.com/vivekv1504/movie-search/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// Status bar texts
const (
	LoadingText = "Loading movies…"
	EmptyText   = "No movies found."
	ErrorPrefix = "Error: "
)

// ratingSteps are the minimum rating choices; zero means Any
var ratingSteps = []float64{0, 2, 4, 6, 7, 8}

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

// debounceMsg fires once a query edit has been quiet for the debounce delay
type debounceMsg struct{ generation uint64 }

// searchResultMsg carries a search response tagged with its generation
type searchResultMsg struct {
	generation uint64
	page       provider.Page
	err        error
}

// genresMsg carries the genre list fetched at startup
type genresMsg struct{ genres []provider.Genre }

// trailerResultMsg carries a trailer lookup tagged with its token
type trailerResultMsg struct {
	token   uint64
	trailer *provider.Trailer
	err     error
}

// playFinishedMsg reports the end of a player launch
type playFinishedMsg struct{ err error }

// Options configures a Model
type Options struct {
	Context  context.Context
	Searcher search.Searcher
	Player   player.Player
	Debounce time.Duration
	Logger   *slog.Logger
	Theme    *theme.Theme
}

// Model is the interactive movie browser. All search state lives in the
// Controller; the model only turns its requests into bubbletea commands.
type Model struct {
	ctx      context.Context
	searcher search.Searcher
	player   player.Player
	logger   *slog.Logger
	theme    theme.Theme

	ctrl         *search.Controller
	searchCancel context.CancelFunc

	input   textinput.Model
	spinner spinner.Model
	detail  *viewport.Model

	focus     focusArea
	cursor    int
	offset    int
	genreIdx  int // 0 is All
	ratingIdx int // 0 is Any
	playErr   string

	width  int
	height int

	// Layout metrics
	listWidth    int
	detailWidth  int
	panelHeight  int
	listRows     int
	detailHeight int
}

// New returns a model with default dimensions, later adjusted on the first
// WindowSize message.
func New(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	th := theme.Default()
	if opts.Theme != nil {
		th = *opts.Theme
	}
	p := opts.Player
	if p == nil {
		p = player.New("browser")
	}

	runewidth.DefaultCondition.EastAsianWidth = false
	runewidth.DefaultCondition.StrictEmojiNeutral = true

	input := textinput.New()
	input.Placeholder = "Search movies"
	input.Prompt = th.Icon("search") + " "
	input.CharLimit = 200
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = spin.Style.Foreground(th.SpinnerColor())

	m := &Model{
		ctx:      ctx,
		searcher: opts.Searcher,
		player:   p,
		logger:   logger,
		theme:    th,
		ctrl:     search.NewController(opts.Debounce),
		input:    input,
		spinner:  spin,
		width:    80,
		height:   24,
	}
	m.CalculateLayout()
	m.detail = components.NewViewport(m.detailWidth-4, m.detailHeight, th)
	m.refreshDetail()
	return m
}

// State exposes the controller snapshot
func (m *Model) State() search.State {
	return m.ctrl.State()
}

// Selected returns the movie under the cursor
func (m *Model) Selected() (provider.Movie, bool) {
	results := m.ctrl.State().Results
	if m.cursor < 0 || m.cursor >= len(results) {
		return provider.Movie{}, false
	}
	return results[m.cursor], true
}

// CalculateLayout derives panel sizes from the window size
func (m *Model) CalculateLayout() {
	// header, input, filters, blank line, status bar
	ph := m.height - 5
	if ph < 6 {
		ph = 6
	}
	m.panelHeight = ph
	m.listWidth = m.width * 5 / 10
	if m.listWidth < 20 {
		m.listWidth = 20
	}
	m.detailWidth = m.width - m.listWidth
	if m.detailWidth < 20 {
		m.detailWidth = 20
	}

	// border (2) + padding (2), plus the panel title line
	m.listRows = max(ph-5, 1)
	m.detailHeight = max(ph-5, 1)

	if m.detail != nil {
		m.detail.Width = max(m.detailWidth-4, 1)
		m.detail.Height = m.detailHeight
	}
	m.input.Width = max(m.width-runewidth.StringWidth(m.input.Prompt)-2, 10)
}

// Init fetches genres and runs the initial search
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.fetchGenres(),
		m.run(m.ctrl.Refresh()),
	)
}

// Update handles input and async results
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.CalculateLayout()
		m.refreshDetail()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case debounceMsg:
		if !m.ctrl.Begin(msg.generation) {
			return m, nil
		}
		return m, m.searchCmd(search.Request{
			Generation: msg.generation,
			Criteria:   m.ctrl.Criteria(),
			Page:       1,
		})

	case searchResultMsg:
		if !m.ctrl.Resolve(msg.generation, msg.page, msg.err) {
			m.logger.Debug("dropping stale search response", "generation", msg.generation)
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("search failed", "generation", msg.generation, "error", msg.err)
		}
		m.cursor = 0
		m.offset = 0
		m.refreshDetail()
		return m, nil

	case genresMsg:
		m.ctrl.SetGenres(msg.genres)
		return m, nil

	case trailerResultMsg:
		if !m.ctrl.ResolveTrailer(msg.token, msg.trailer, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("trailer lookup failed", "error", msg.err)
		}
		m.refreshDetail()
		return m, nil

	case playFinishedMsg:
		m.playErr = ""
		if msg.err != nil {
			m.playErr = msg.err.Error()
			m.logger.Warn("player failed", "player", m.player.Name(), "error", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == focusInput {
		return m.updateInput(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.cancelSearch()
		return m, tea.Quit
	case "tab":
		return m, m.toggleFocus()
	case "up":
		m.move(-1)
		return m, nil
	case "down":
		m.move(1)
		return m, nil
	case "pgup":
		m.detail.HalfPageUp()
		return m, nil
	case "pgdown":
		m.detail.HalfPageDown()
		return m, nil
	case "enter":
		return m, m.requestTrailer()
	}

	if m.focus == focusInput {
		return m.updateInput(msg)
	}

	switch msg.String() {
	case "k":
		m.move(-1)
	case "j":
		m.move(1)
	case "g":
		return m, m.cycleGenre(1)
	case "G":
		return m, m.cycleGenre(-1)
	case "r":
		return m, m.cycleRating(1)
	case "R":
		return m, m.cycleRating(-1)
	case "t":
		return m, m.requestTrailer()
	case "p":
		return m, m.play()
	case "x":
		m.ctrl.CloseTrailer()
		m.playErr = ""
		m.refreshDetail()
	case "/":
		return m, m.toggleFocus()
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	req, ok := m.ctrl.SetQuery(m.input.Value())
	if !ok {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.run(req))
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
		return nil
	}
	m.focus = focusInput
	return m.input.Focus()
}

func (m *Model) move(delta int) {
	n := len(m.ctrl.State().Results)
	if n == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.listRows {
		m.offset = m.cursor - m.listRows + 1
	}
	m.refreshDetail()
}

// genreOptions is "All" followed by the fetched genres
func (m *Model) genreOptions() []provider.Genre {
	genres := m.ctrl.State().Genres
	return append([]provider.Genre{{ID: "", Name: "All"}}, genres...)
}

func (m *Model) cycleGenre(step int) tea.Cmd {
	options := m.genreOptions()
	m.genreIdx = wrap(m.genreIdx+step, len(options))
	req, ok := m.ctrl.SetGenre(options[m.genreIdx].ID)
	if !ok {
		return nil
	}
	return m.run(req)
}

func (m *Model) cycleRating(step int) tea.Cmd {
	m.ratingIdx = wrap(m.ratingIdx+step, len(ratingSteps))
	req, ok := m.ctrl.SetMinRating(ratingSteps[m.ratingIdx])
	if !ok {
		return nil
	}
	return m.run(req)
}

func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}

// run turns a controller request into a command. Debounced requests come
// back as a debounceMsg and only search if still current.
func (m *Model) run(req search.Request) tea.Cmd {
	if req.Delay > 0 {
		return components.DebounceMsg(req.Delay, debounceMsg{generation: req.Generation})
	}
	return m.searchCmd(req)
}

func (m *Model) searchCmd(req search.Request) tea.Cmd {
	if m.searcher == nil {
		return nil
	}
	m.cancelSearch()
	ctx, cancel := context.WithCancel(m.ctx)
	m.searchCancel = cancel

	searcher := m.searcher
	return func() tea.Msg {
		defer cancel()
		page, err := searcher.SearchMovies(ctx, req.Criteria, req.Page)
		return searchResultMsg{generation: req.Generation, page: page, err: err}
	}
}

func (m *Model) cancelSearch() {
	if m.searchCancel != nil {
		m.searchCancel()
		m.searchCancel = nil
	}
}

func (m *Model) fetchGenres() tea.Cmd {
	if m.searcher == nil {
		return nil
	}
	ctx, searcher := m.ctx, m.searcher
	return func() tea.Msg {
		return genresMsg{genres: searcher.FetchGenres(ctx)}
	}
}

func (m *Model) requestTrailer() tea.Cmd {
	movie, ok := m.Selected()
	if !ok || m.searcher == nil {
		return nil
	}
	token := m.ctrl.RequestTrailer(movie)
	m.playErr = ""
	ctx, searcher := m.ctx, m.searcher
	return func() tea.Msg {
		trailer, err := searcher.FetchTrailer(ctx, movie)
		return trailerResultMsg{token: token, trailer: trailer, err: err}
	}
}

// play hands the active trailer to the player. Terminal players take over
// the screen until they exit; the browser is launched in the background.
func (m *Model) play() tea.Cmd {
	trailer := m.ctrl.State().ActiveTrailer
	if trailer == nil {
		return nil
	}
	p, ctx := m.player, m.ctx
	url, title := trailer.URL(), trailer.Title

	if p.Detached() {
		return func() tea.Msg {
			return playFinishedMsg{err: player.Play(ctx, p, url, title)}
		}
	}
	if !p.Available() {
		return func() tea.Msg {
			return playFinishedMsg{err: fmt.Errorf("%s not found in PATH", p.Name())}
		}
	}
	return tea.ExecProcess(p.Command(ctx, url, title), func(err error) tea.Msg {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = nil
		}
		return playFinishedMsg{err: err}
	})
}
