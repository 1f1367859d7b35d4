// Package search provides the memory search view for the TUI.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/temporal"
)

// Config wires the view to the core services.
type Config struct {
	Retrieval driving.RetrievalService
	Insight   driving.InsightService
	Owner     string
	Now       func() time.Time
}

// View represents the search view with input, insight line, results list,
// and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	cfg Config
	ctx context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a query, false = navigating results

	lastQuery string
	rng       *domain.TemporalRange
	mood      *domain.MoodAnalysis
	miss      bool
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, cfg Config) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		cfg:        cfg,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context used for retrieval calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	cmds = append(cmds, cmd)
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)

	return v, tea.Batch(cmds...)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.focusInput = false
			v.input.Blur()
			return v, tea.Batch(v.statusbar.StartSearching(), v.performSearch(query))
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(msg.String(), v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(msg.String(), v.keymap.Expand):
		v.list.ToggleExpanded()
	case keymap.Matches(msg.String(), v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}
	return v, nil
}

// performSearch reads the query's time reference and mood locally, then
// retrieves in the background.
func (v *View) performSearch(query string) tea.Cmd {
	now := v.cfg.Now()
	var (
		rng  *domain.TemporalRange
		mood *domain.MoodAnalysis
	)
	if v.cfg.Insight != nil {
		rng = v.cfg.Insight.ParseTemporal(query, now)
		mood = v.cfg.Insight.AnalyzeMood(query)
	}

	retrieval := v.cfg.Retrieval
	ctx := v.ctx
	req := domain.RetrieveRequest{Query: query, OwnerID: v.cfg.Owner}

	return func() tea.Msg {
		if retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		res, err := retrieval.RetrieveForMessage(ctx, req, now)
		return messages.SearchCompleted{Query: query, Result: res, Range: rng, Mood: mood, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	v.lastQuery = msg.Query
	v.rng = msg.Range
	v.mood = msg.Mood

	if msg.Err != nil {
		v.miss = false
		v.list.SetResults(nil)
		v.setError(msg.Err)
		return
	}

	v.err = nil
	var results []domain.SearchResult
	if msg.Result != nil {
		results = msg.Result.Content
		v.miss = msg.Result.HadTemporalMiss
	}
	v.list.SetResults(results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(results))
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.focusInput = true
	v.input.Focus()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("recall"), "", v.input.View(), "")

	if insight := v.renderInsight(); insight != "" {
		sections = append(sections, insight, "")
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.miss && v.rng != nil {
		sections = append(sections,
			v.styles.Warning.Render(fmt.Sprintf("Nothing saved for %s; showing closest memories.", v.rng.Description)),
			"")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderInsight describes the period and mood read from the last query.
func (v *View) renderInsight() string {
	var parts []string
	if v.rng != nil {
		period := v.rng.Description
		if !v.rng.From.IsZero() {
			from := temporal.FormatDate(v.rng.From)
			to := temporal.FormatDate(v.rng.To)
			if from == to {
				period += " (" + from + ")"
			} else {
				period += " (" + from + " / " + to + ")"
			}
		}
		if v.rng.Fuzzy {
			period += " ~"
		}
		parts = append(parts, "Period: "+period)
	}
	if v.mood != nil {
		parts = append(parts, fmt.Sprintf("Mood: %s (%.0f%%)", v.mood.Mood.Description(), v.mood.Confidence*100))
	}
	if len(parts) == 0 {
		return ""
	}
	return v.styles.Insight.Render(strings.Join(parts, "  ·  "))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-12)
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current input value.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input value.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// LastQuery returns the query of the last completed search.
func (v *View) LastQuery() string {
	return v.lastQuery
}

// Results returns the current results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.SearchResult {
	return v.list.SelectedResult()
}

// Range returns the period read from the last query, if any.
func (v *View) Range() *domain.TemporalRange {
	return v.rng
}

// Mood returns the mood read from the last query, if any.
func (v *View) Mood() *domain.MoodAnalysis {
	return v.mood
}

// TemporalMiss reports whether the last ranged search found nothing.
func (v *View) TemporalMiss() bool {
	return v.miss
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to an empty query.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.err = nil
	v.rng = nil
	v.mood = nil
	v.miss = false
	v.lastQuery = ""
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
