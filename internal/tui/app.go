package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/rail"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/tui/components"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
)

const (
	tickInterval  = 100 * time.Millisecond
	statusTimeout = 3 * time.Second

	// Vertical layout: single footer line
	ChromeHeight = 1
)

// Options tunes the model
type Options struct {
	CardWidth    int    // width of one movie card
	InitialGenre string // genre to bind to the custom rail once genres load
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	HomeSvc *service.HomeService
	logger  *slog.Logger

	// UI Components
	Banner      components.Banner
	Rows        []components.RailRow // fixed rails, then the custom rail
	GenrePicker components.GenrePicker
	DetailModal components.DetailModal

	// Focus is 0 for the banner, i+1 for Rows[i]
	Focus int

	// Data
	Genres       []domain.Genre
	genresLoaded bool
	genresErr    error
	initialGenre string

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int
}

// NewModel creates a new application model
func NewModel(svc *service.HomeService, opts Options, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	var rows []components.RailRow
	for _, r := range svc.Rails() {
		rows = append(rows, components.NewRailRow(r.Snapshot(), opts.CardWidth, false))
	}
	if c := svc.CustomRail(); c != nil {
		rows = append(rows, components.NewRailRow(c.Snapshot(), opts.CardWidth, true))
	}

	m := Model{
		State:        StateBrowsing,
		HomeSvc:      svc,
		logger:       logger,
		Banner:       components.NewBanner(),
		Rows:         rows,
		GenrePicker:  components.NewGenrePicker(),
		DetailModal:  components.NewDetailModal(),
		initialGenre: opts.InitialGenre,
	}
	m.applyFocus()
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		LoadBestMovieCmd(m.HomeSvc),
		LoadGenresCmd(m.HomeSvc),
		TickCmd(tickInterval),
	}
	for _, r := range m.HomeSvc.AllRails() {
		cmds = append(cmds, LoadRailCmd(r))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		m.Banner.SetSpinnerFrame(m.SpinnerFrame)
		m.DetailModal.SetSpinnerFrame(m.SpinnerFrame)
		for i := range m.Rows {
			m.Rows[i].SetSpinnerFrame(m.SpinnerFrame)
		}
		return m, TickCmd(tickInterval)

	case RailLoadedMsg:
		return m.handleRailLoaded(msg)

	case BestMovieLoadedMsg:
		if msg.Err != nil {
			m.logger.Error("best movie failed", "error", msg.Err)
			m.Banner.SetError(msg.Err)
			return m, nil
		}
		m.Banner.SetFeature(msg.Feature)
		return m, nil

	case GenresLoadedMsg:
		return m.handleGenresLoaded(msg)

	case DetailLoadedMsg:
		if msg.Err != nil {
			m.logger.Error("detail failed", "id", msg.ID, "error", msg.Err)
			m.DetailModal.SetError(msg.ID, msg.Err)
			return m, nil
		}
		m.DetailModal.SetMovie(msg.Movie)
		return m, nil

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// handleRailLoaded applies a rail result to its row. Stale results and
// snapshots older than what the row already shows are dropped.
func (m Model) handleRailLoaded(msg RailLoadedMsg) (tea.Model, tea.Cmd) {
	idx := m.rowIndex(msg.Outcome.RailID)
	if idx < 0 {
		return m, nil
	}
	if msg.Outcome.Status == rail.OutcomeStale {
		m.logger.Debug("dropping stale rail result", "rail", msg.Outcome.RailID, "generation", msg.Outcome.Generation)
		return m, nil
	}

	row := &m.Rows[idx]
	if msg.View.Generation < row.RailView().Generation {
		return m, nil
	}
	row.SetView(msg.View)

	title := msg.View.Title
	switch msg.Outcome.Status {
	case rail.OutcomePartial:
		return m.setStatus(fmt.Sprintf("%s: partial results (%v)", title, msg.Outcome.Err), true)
	case rail.OutcomeFailed:
		if errors.Is(msg.Outcome.Err, domain.ErrCatalogOffline) {
			return m.setStatus("Catalog is offline", true)
		}
		return m.setStatus(fmt.Sprintf("%s: %v", title, msg.Outcome.Err), true)
	case rail.OutcomeExhausted:
		return m.setStatus(fmt.Sprintf("%s: no more movies", title), false)
	}
	return m, nil
}

func (m Model) handleGenresLoaded(msg GenresLoadedMsg) (tea.Model, tea.Cmd) {
	m.Genres = msg.Genres
	m.genresErr = msg.Err
	m.genresLoaded = msg.Err == nil

	if m.GenrePicker.IsVisible() {
		m.GenrePicker.SetGenres(msg.Genres)
		if msg.Err != nil {
			m.GenrePicker.SetError(msg.Err)
		}
	}
	if msg.Err != nil {
		m.logger.Warn("genre list incomplete", "genres", len(msg.Genres), "error", msg.Err)
	}

	if m.initialGenre == "" {
		return m, nil
	}
	query := m.initialGenre
	m.initialGenre = ""

	g, ok := service.ResolveGenre(query, m.Genres)
	if !ok {
		return m.setStatus(fmt.Sprintf("Unknown genre %q", query), true)
	}
	cmd := m.selectGenre(g)
	model, status := m.setStatus("Genre: "+g.Name, false)
	return model, tea.Batch(cmd, status)
}

// selectGenre rebinds the custom rail and focuses it
func (m *Model) selectGenre(g domain.Genre) tea.Cmd {
	idx := m.customIndex()
	custom := m.HomeSvc.CustomRail()
	if idx < 0 || custom == nil {
		return nil
	}
	m.Rows[idx].SetLoading()
	m.Rows[idx].ResetCursor()
	m.Focus = idx + 1
	m.applyFocus()
	return SetGenreCmd(custom, g.Name)
}

func (m Model) setStatus(text string, isErr bool) (Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return m, ClearStatusCmd(statusTimeout)
}

func (m Model) rowIndex(id string) int {
	for i, r := range m.Rows {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

func (m Model) customIndex() int {
	for i, r := range m.Rows {
		if r.IsCustom() {
			return i
		}
	}
	return -1
}

// focusedRow returns the focused row, or nil when the banner has focus
func (m *Model) focusedRow() *components.RailRow {
	if m.Focus < 1 || m.Focus > len(m.Rows) {
		return nil
	}
	return &m.Rows[m.Focus-1]
}

func (m *Model) applyFocus() {
	if m.Focus < 0 {
		m.Focus = 0
	}
	if m.Focus > len(m.Rows) {
		m.Focus = len(m.Rows)
	}
	m.Banner.SetFocused(m.Focus == 0)
	for i := range m.Rows {
		m.Rows[i].SetFocused(m.Focus == i+1)
	}
}
