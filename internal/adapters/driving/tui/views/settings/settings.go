// Package settings provides the embedding configuration view for the TUI.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/recall/internal/config"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// ErrNoSettingsService indicates that no settings service was provided.
var ErrNoSettingsService = errors.New("settings service not available")

// Section tracks which part of the view is active.
type Section int

const (
	SectionOverview Section = iota
	SectionProvider
	SectionAPIKey
)

// View shows the effective configuration and edits the embedding provider.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.SettingsService
	ctx     context.Context

	settings *domain.Settings
	entries  []driving.SettingEntry
	err      error
	notice   string
	checking bool

	section  Section
	selected int
	provider domain.AIProvider
	apiKey   *input.QueryInput

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:  s,
		keymap:  km,
		service: service,
		ctx:     context.Background(),
		apiKey:  input.NewSecretInput(s, "API key: "),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context used when probing the provider.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	service := v.service
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		s, err := service.Get()
		return messages.SettingsLoaded{Settings: s, Entries: service.Entries(), Err: err}
	}
}

func (v *View) save(provider domain.AIProvider, apiKey string) tea.Cmd {
	service := v.service
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsSaved{Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Err: service.SetEmbeddingProvider(provider, "", apiKey)}
	}
}

func (v *View) check() tea.Cmd {
	service := v.service
	ctx := v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsValidated{Err: ErrNoSettingsService}
		}
		return messages.SettingsValidated{Err: service.ValidateEmbeddingConfig(ctx)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.settings = msg.Settings
		}
		v.entries = msg.Entries
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Saved " + string(v.provider)
		v.toOverview()
		return v, v.load()

	case messages.SettingsValidated:
		v.checking = false
		v.err = msg.Err
		if msg.Err == nil {
			v.notice = "Embedding provider reachable"
		} else {
			v.notice = ""
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.toOverview()
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Edit):
			v.section = SectionProvider
			v.selected = v.currentProviderIndex()
			v.notice = ""
		case keymap.Matches(msg.String(), v.keymap.Check) && !v.checking:
			v.checking = true
			v.notice = "Checking..."
			return v, v.check()
		}

	case SectionProvider:
		providers := domain.AllAIProviders()
		switch {
		case keymap.Matches(msg.String(), v.keymap.Up):
			if v.selected > 0 {
				v.selected--
			}
		case keymap.Matches(msg.String(), v.keymap.Down):
			if v.selected < len(providers)-1 {
				v.selected++
			}
		case keymap.Matches(msg.String(), v.keymap.Select):
			v.provider = providers[v.selected]
			if v.provider.RequiresAPIKey() {
				v.section = SectionAPIKey
				v.apiKey.SetValue("")
				return v, v.apiKey.Focus()
			}
			return v, v.save(v.provider, "")
		}

	case SectionAPIKey:
		if msg.Type == tea.KeyEnter {
			key := strings.TrimSpace(v.apiKey.Value())
			if key == "" {
				return v, nil
			}
			return v, v.save(v.provider, key)
		}
		var cmd tea.Cmd
		v.apiKey, cmd = v.apiKey.Update(msg)
		return v, cmd
	}

	return v, nil
}

func (v *View) toOverview() {
	v.section = SectionOverview
	v.selected = 0
	v.apiKey.SetValue("")
	v.apiKey.Blur()
}

func (v *View) currentProviderIndex() int {
	if v.settings == nil {
		return 0
	}
	for i, p := range domain.AllAIProviders() {
		if p == v.settings.Embedding.Provider {
			return i
		}
	}
	return 0
}

// View renders the settings view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Embedding settings"))
	b.WriteString("\n\n")

	switch v.section {
	case SectionOverview:
		v.renderOverview(&b)
	case SectionProvider:
		v.renderProviders(&b)
	case SectionAPIKey:
		b.WriteString(v.styles.Subtitle.Render(v.provider.Description()))
		b.WriteString("\n\n")
		b.WriteString(v.apiKey.View())
		b.WriteString("\n")
		if v.provider == domain.AIProviderCloudflare {
			b.WriteString(v.styles.Muted.Render("Cloudflare also needs: recall config set " + config.KeyEmbeddingAccountID + " <id>"))
			b.WriteString("\n")
		}
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	} else if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(v.footer()))
	return b.String()
}

func (v *View) renderOverview(b *strings.Builder) {
	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
		return
	}

	e := v.settings.Embedding
	status := v.styles.Success.Render("configured")
	if !e.IsConfigured() {
		status = v.styles.Warning.Render("not configured")
	}
	fmt.Fprintf(b, "Provider:   %s\n", v.styles.Normal.Render(e.Provider.Description()))
	if e.Model != "" {
		fmt.Fprintf(b, "Model:      %s\n", e.Model)
	}
	fmt.Fprintf(b, "Status:     %s\n", status)
	fmt.Fprintf(b, "Store:      %s\n", v.settings.Store.Kind)
	fmt.Fprintf(b, "Owner:      %s\n", v.settings.Owner)

	if len(v.entries) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Stored values"))
	b.WriteString("\n")
	for _, entry := range v.entries {
		fmt.Fprintf(b, "  %-28s %s\n", entry.Key, v.styles.Muted.Render(config.Display(entry.Key, entry.Value)))
	}
}

func (v *View) renderProviders(b *strings.Builder) {
	for i, p := range domain.AllAIProviders() {
		line := p.Description()
		if v.settings != nil && p == v.settings.Embedding.Provider {
			line += " (current)"
		}
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}
}

func (v *View) footer() string {
	switch v.section {
	case SectionProvider:
		return "[j/k] Navigate  [Enter] Select  [Esc] Cancel"
	case SectionAPIKey:
		return "[Enter] Save  [Esc] Cancel"
	default:
		hints := make([]string, 0, 3)
		for _, binding := range v.keymap.SettingsHelp() {
			h := binding.Help()
			hints = append(hints, "["+h.Key+"] "+h.Desc)
		}
		return strings.Join(hints, "  ")
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.apiKey.SetWidth(width)
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.Settings {
	return v.settings
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Notice returns the last informational message.
func (v *View) Notice() string {
	return v.notice
}

// Reset returns the view to the overview.
func (v *View) Reset() {
	v.toOverview()
	v.err = nil
	v.notice = ""
	v.checking = false
}
