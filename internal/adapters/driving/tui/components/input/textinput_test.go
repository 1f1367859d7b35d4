package input

import (
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/styles"
)

func TestNewQueryInput(t *testing.T) {
	in := NewQueryInput(styles.DefaultStyles())

	require.NotNil(t, in)
	assert.True(t, in.Focused())
	assert.Equal(t, "", in.Value())
	assert.Equal(t, DefaultPlaceholder, in.textinput.Placeholder)
}

func TestNewQueryInput_NilStyles(t *testing.T) {
	in := NewQueryInput(nil)

	assert.NotNil(t, in.styles)
}

func TestNewSecretInput(t *testing.T) {
	in := NewSecretInput(nil, "API key: ")

	assert.False(t, in.Focused())
	assert.Equal(t, textinput.EchoPassword, in.textinput.EchoMode)

	in.Focus()
	in.SetValue("sk-secret")
	assert.NotContains(t, in.View(), "sk-secret")
	assert.Contains(t, in.View(), "API key")
}

func TestQueryInput_Typing(t *testing.T) {
	in := NewQueryInput(nil)

	for _, r := range "ieri" {
		in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "ieri", in.Value())
	assert.Contains(t, in.View(), "Recall")
}

func TestQueryInput_FocusBlurReset(t *testing.T) {
	in := NewQueryInput(nil)
	in.SetValue("query")

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())

	in.Reset()
	assert.Equal(t, "", in.Value())
}

func TestQueryInput_SetWidth(t *testing.T) {
	in := NewQueryInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Greater(t, in.textinput.Width, 20)

	in.SetWidth(10)
	assert.Equal(t, 20, in.textinput.Width)
}

func TestQueryInput_Init(t *testing.T) {
	assert.NotNil(t, NewQueryInput(nil).Init())
}
