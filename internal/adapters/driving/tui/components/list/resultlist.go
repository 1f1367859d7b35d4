// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/temporal"
)

// linesPerResult is the height of a collapsed entry: title, meta and preview.
const linesPerResult = 3

// ResultList displays retrieved memories in a navigable list.
type ResultList struct {
	results  []domain.SearchResult
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No memories")
	}

	lines := make([]string, 0, len(r.results)+3)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Memories (%d)", len(r.results))), "")

	visible := (r.height - 2) / linesPerResult
	if visible < 1 {
		visible = 1
	}
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.results))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}

	if r.expanded {
		if sel := r.SelectedResult(); sel != nil {
			body := r.styles.Content.Width(max(r.width-4, 20)).Render(sel.Content)
			lines = append(lines, "", body)
		}
	}

	return strings.Join(lines, "\n")
}

// renderResult formats a single hit: title and similarity, then source and
// date, then a one-line preview of the content.
func (r *ResultList) renderResult(index int, result *domain.SearchResult) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := result.Title
	if title == "" {
		title = "(untitled)"
	}
	maxTitle := max(r.width-12, 10)
	title = truncate(title, maxTitle)

	score := fmt.Sprintf("%3.0f%%", result.Similarity*100)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s %s", indicator, maxTitle, title, score))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s ", indicator, maxTitle, title)) +
			r.styles.Muted.Render(score)
	}

	meta := string(result.Source)
	if result.CreatedAt != nil {
		meta += " · " + temporal.FormatDate(*result.CreatedAt)
	}
	metaLine := r.styles.Subtitle.Render("    " + meta)

	preview := strings.Join(strings.Fields(result.Content), " ")
	previewLine := r.styles.Muted.Render("    " + truncate(preview, max(r.width-6, 20)))

	return titleLine + "\n" + metaLine + "\n" + previewLine
}

// truncate shortens s to n display cells, ending with an ellipsis.
func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > n {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// SetResults replaces the list contents and resets the selection.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
	r.expanded = false
}

// Results returns the current results.
func (r *ResultList) Results() []domain.SearchResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// ToggleExpanded shows or hides the full content of the selection.
func (r *ResultList) ToggleExpanded() {
	if len(r.results) > 0 {
		r.expanded = !r.expanded
	}
}

// Expanded reports whether the selection is shown in full.
func (r *ResultList) Expanded() bool {
	return r.expanded
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
		r.expanded = false
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
		r.expanded = false
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.results) == 0
}
