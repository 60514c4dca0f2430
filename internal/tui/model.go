// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/export"
	"github.com/Veraticus/finanzas/internal/finance"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/Veraticus/finanzas/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// OverviewLoader fetches everything the dashboard shows.
type OverviewLoader interface {
	LoadOverview(ctx context.Context, filters *model.MovementFilters) (finance.Overview, error)
}

// State represents the current state of the TUI.
type State int

const (
	// StateLoading means a request is in flight.
	StateLoading State = iota
	// StateReady shows the last loaded overview.
	StateReady
	// StateUnavailable means the backend could not be reached; r retries.
	StateUnavailable
	// StateLoggedOut means the session is missing or was rejected.
	StateLoggedOut
	// StateFailed covers every other failure; r retries.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	case StateLoggedOut:
		return "logged_out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Model holds the dashboard state.
type Model struct {
	ctx        context.Context
	loader     OverviewLoader
	lastErr    error
	logger     *slog.Logger
	theme      themes.Theme
	overview   finance.Overview
	typeFilter model.MovementType
	help       help.Model
	keymap     KeyMap
	spinner    spinner.Model
	table      table.Model
	page       int
	pageSize   int
	seq        int
	width      int
	height     int
	state      State
	loaded     bool
	quitting   bool
}

// New creates a dashboard model. The first load starts from Init.
func New(ctx context.Context, loader OverviewLoader, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	t := table.New(
		table.WithColumns(columns(cfg.Width)),
		table.WithFocused(true),
		table.WithHeight(tableHeight(cfg.Height)),
	)
	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.Header
	styles.Selected = cfg.Theme.Selected
	t.SetStyles(styles)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = cfg.Theme.StatusInfo

	return Model{
		ctx:      ctx,
		loader:   loader,
		logger:   slog.Default().With("component", "dashboard"),
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		table:    t,
		pageSize: cfg.PageSize,
		width:    cfg.Width,
		height:   cfg.Height,
		state:    StateLoading,
		seq:      1,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadOverview(m.ctx, m.loader, m.filters(), m.seq))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(columns(msg.Width))
		m.table.SetHeight(tableHeight(msg.Height))
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.state != StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case overviewLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m.applyOverview(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.state {
	case StateLoading, StateLoggedOut:
		return m, nil
	case StateUnavailable, StateFailed:
		if key.Matches(msg, m.keymap.Refresh) {
			return m.reload()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Refresh):
		return m.reload()
	case key.Matches(msg, m.keymap.NextPage):
		if !m.overview.Page.HasNext() {
			return m, nil
		}
		m.page++
		return m.reload()
	case key.Matches(msg, m.keymap.PrevPage):
		if m.page == 0 {
			return m, nil
		}
		m.page--
		return m.reload()
	case key.Matches(msg, m.keymap.CycleType):
		m.typeFilter = nextTypeFilter(m.typeFilter)
		m.page = 0
		return m.reload()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// reload supersedes any in-flight request.
func (m Model) reload() (tea.Model, tea.Cmd) {
	m.seq++
	m.state = StateLoading
	return m, tea.Batch(m.spinner.Tick, loadOverview(m.ctx, m.loader, m.filters(), m.seq))
}

func (m Model) applyOverview(msg overviewLoadedMsg) Model {
	if msg.err != nil {
		m.lastErr = msg.err
		switch {
		case errors.Is(msg.err, common.ErrUnauthorized), errors.Is(msg.err, common.ErrNotAuthenticated):
			m.state = StateLoggedOut
		case errors.Is(msg.err, common.ErrBackendUnavailable), errors.Is(msg.err, common.ErrTimeout):
			m.state = StateUnavailable
		default:
			m.state = StateFailed
		}
		m.logger.Warn("dashboard load failed",
			"state", m.state.String(),
			"kind", common.KindOf(msg.err),
			"error", msg.err)
		return m
	}

	m.lastErr = nil
	m.loaded = true
	m.overview = msg.overview
	m.page = msg.overview.Page.Number
	m.state = StateReady
	m.table.SetRows(rows(msg.overview.Page.Movements))
	m.table.GotoTop()
	return m
}

func (m Model) filters() *model.MovementFilters {
	page, size := m.page, m.pageSize
	return &model.MovementFilters{
		Page: &page,
		Size: &size,
		Type: m.typeFilter,
	}
}

// State reports the current dashboard state.
func (m Model) State() State {
	return m.state
}

// Err is the failure behind the current state, if any.
func (m Model) Err() error {
	return m.lastErr
}

func nextTypeFilter(t model.MovementType) model.MovementType {
	switch t {
	case "":
		return model.MovementIncome
	case model.MovementIncome:
		return model.MovementExpense
	default:
		return ""
	}
}

func columns(width int) []table.Column {
	// Fixed columns take 62 cells plus padding; the description gets the rest.
	desc := width - 62 - 14
	if desc < 16 {
		desc = 16
	}
	return []table.Column{
		{Title: "Fecha", Width: 10},
		{Title: "Descripción", Width: desc},
		{Title: "Categoría", Width: 16},
		{Title: "Monto", Width: 18},
		{Title: "Moneda", Width: 6},
		{Title: "Tipo", Width: 7},
		{Title: "Ref.", Width: 5},
	}
}

func tableHeight(height int) int {
	// Header box, status line and help take roughly 12 rows.
	if h := height - 12; h > 3 {
		return h
	}
	return 3
}

func rows(movements []model.Movement) []table.Row {
	out := make([]table.Row, 0, len(movements))
	for _, mv := range movements {
		tx := model.ToTransaction(mv)
		out = append(out, table.Row{
			export.FormatDate(tx.Date),
			tx.Description,
			tx.Category,
			export.FormatCurrency(tx.Amount, tx.Currency),
			string(tx.Currency),
			export.TypeLabel(tx.Type),
			tx.Reference,
		})
	}
	return out
}
