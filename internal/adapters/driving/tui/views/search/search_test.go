package search

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/recall/internal/core/domain"
)

type mockRetrieval struct {
	result  *domain.RetrievalResult
	err     error
	lastReq domain.RetrieveRequest
	lastNow time.Time
}

func (m *mockRetrieval) Retrieve(context.Context, string, string, *domain.TemporalRange) (*domain.RetrievalResult, error) {
	return m.result, m.err
}

func (m *mockRetrieval) RetrieveForMessage(_ context.Context, req domain.RetrieveRequest, now time.Time) (*domain.RetrievalResult, error) {
	m.lastReq = req
	m.lastNow = now
	return m.result, m.err
}

type mockInsight struct {
	rng  *domain.TemporalRange
	mood *domain.MoodAnalysis
}

func (m *mockInsight) AnalyzeMood(string) *domain.MoodAnalysis              { return m.mood }
func (m *mockInsight) ParseTemporal(string, time.Time) *domain.TemporalRange { return m.rng }

var fixedNow = time.Date(2025, 10, 14, 10, 0, 0, 0, time.UTC)

func yesterday() *domain.TemporalRange {
	from := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	return &domain.TemporalRange{From: from, To: from.Add(24*time.Hour - time.Nanosecond), Description: "ieri"}
}

func testResults() []domain.SearchResult {
	return []domain.SearchResult{
		{ID: "1", Title: "Trasloco", Content: "scatoloni e furgone", Source: domain.SourceClaude, Similarity: 0.9},
		{ID: "2", Title: "Cena", Content: "pizza con Marco", Source: domain.SourceChatGPT, Similarity: 0.7},
	}
}

func newTestView(r *mockRetrieval, in *mockInsight) *View {
	cfg := Config{Retrieval: r, Owner: "alice", Now: func() time.Time { return fixedNow }}
	if in != nil {
		cfg.Insight = in
	}
	v := NewView(nil, nil, cfg)
	v.SetDimensions(100, 40)
	return v
}

func typeQuery(v *View, q string) *View {
	for _, r := range q {
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return v
}

func TestNewView_Defaults(t *testing.T) {
	v := NewView(nil, nil, Config{})

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.NotNil(t, v.keymap)
	assert.NotNil(t, v.cfg.Now)
	assert.True(t, v.InputFocused())
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_EnterSubmitsQuery(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)
	v = typeQuery(v, "ieri")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.NotNil(t, cmd)
	assert.False(t, v.InputFocused())
	assert.Equal(t, "ieri", v.Query())
}

func TestView_EnterIgnoresBlankQuery(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)
	v = typeQuery(v, "   ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.True(t, v.InputFocused())
}

func TestView_PerformSearch(t *testing.T) {
	r := &mockRetrieval{result: &domain.RetrievalResult{Content: testResults()}}
	in := &mockInsight{rng: yesterday(), mood: &domain.MoodAnalysis{Mood: domain.MoodPositive, Confidence: 0.6}}
	v := newTestView(r, in)

	msg := v.performSearch("cosa ho fatto ieri")()

	done, ok := msg.(messages.SearchCompleted)
	require.True(t, ok)
	assert.NoError(t, done.Err)
	assert.Equal(t, "cosa ho fatto ieri", done.Query)
	assert.Len(t, done.Result.Content, 2)
	assert.Equal(t, "ieri", done.Range.Description)
	assert.Equal(t, domain.MoodPositive, done.Mood.Mood)
	assert.Equal(t, "alice", r.lastReq.OwnerID)
	assert.Equal(t, "cosa ho fatto ieri", r.lastReq.Query)
	assert.Equal(t, fixedNow, r.lastNow)
}

func TestView_PerformSearch_NoRetrieval(t *testing.T) {
	v := NewView(nil, nil, Config{Owner: "alice"})

	msg := v.performSearch("x")()

	errMsg, ok := msg.(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, ErrNoRetrievalService)
}

func TestView_SearchCompleted(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)

	v, _ = v.Update(messages.SearchCompleted{
		Query:  "ieri",
		Result: &domain.RetrievalResult{Content: testResults()},
		Range:  yesterday(),
		Mood:   &domain.MoodAnalysis{Mood: domain.MoodNegative, Confidence: 0.4},
	})

	assert.NoError(t, v.Err())
	assert.Len(t, v.Results(), 2)
	assert.Equal(t, "ieri", v.LastQuery())
	assert.False(t, v.TemporalMiss())
	assert.Equal(t, "1", v.SelectedResult().ID)

	view := v.View()
	assert.Contains(t, view, "Period: ieri (lunedì 13 ottobre 2025)")
	assert.Contains(t, view, "Mood: "+domain.MoodNegative.Description())
	assert.Contains(t, view, "Trasloco")
	assert.Contains(t, view, "2 memories")
}

func TestView_SearchCompleted_TemporalMiss(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)

	v, _ = v.Update(messages.SearchCompleted{
		Query:  "ieri",
		Result: &domain.RetrievalResult{Content: testResults()[:1], HadTemporalMiss: true},
		Range:  yesterday(),
	})

	assert.True(t, v.TemporalMiss())
	assert.Contains(t, v.View(), "Nothing saved for ieri")
}

func TestView_SearchCompleted_Error(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)
	v.SetQuery("ieri")

	v, _ = v.Update(messages.SearchCompleted{Query: "ieri", Err: domain.ErrEmbeddingUnavailable})

	assert.ErrorIs(t, v.Err(), domain.ErrEmbeddingUnavailable)
	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Results())
	assert.Contains(t, v.View(), "Error:")
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)

	v, _ = v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
}

func TestView_ResultsNavigation(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)
	v, _ = v.Update(messages.SearchCompleted{Result: &domain.RetrievalResult{Content: testResults()}})

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, v.SelectedIndex())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.SelectedIndex())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, v.View(), "scatoloni e furgone")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.NotNil(t, cmd)
	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Query())
}

func TestView_EscGoesToMenu(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_Reset(t *testing.T) {
	v := newTestView(&mockRetrieval{}, nil)
	v, _ = v.Update(messages.SearchCompleted{
		Query:  "ieri",
		Result: &domain.RetrievalResult{Content: testResults(), HadTemporalMiss: true},
		Range:  yesterday(),
	})

	v.Reset()

	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Results())
	assert.Nil(t, v.Range())
	assert.Nil(t, v.Mood())
	assert.False(t, v.TemporalMiss())
	assert.Empty(t, v.LastQuery())
}

func TestView_WindowSize(t *testing.T) {
	v := NewView(nil, nil, Config{})

	v, _ = v.Update(tea.WindowSizeMsg{Width: 120, Height: 50})

	assert.True(t, v.Ready())
	assert.Equal(t, 120, v.Width())
	assert.Equal(t, 50, v.Height())
}
