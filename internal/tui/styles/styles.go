// Package styles provides Lip Gloss styling shared by the wizard and
// chat UI.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary     = lipgloss.Color("#8B5CF6") // Violet
	Secondary   = lipgloss.Color("#34D399") // Green
	Accent      = lipgloss.Color("#FBBF24") // Amber
	Error       = lipgloss.Color("#F87171") // Red
	Surface     = lipgloss.Color("#374151") // Dark gray
	TextPrimary = lipgloss.Color("#F9FAFB") // Almost white
	TextMuted   = lipgloss.Color("#9CA3AF") // Light gray

	// Headers
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	PhaseHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginTop(1).
			MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Italic(true)

	// Chat message styles
	UserMessage = lipgloss.NewStyle().
			Foreground(Secondary).
			PaddingLeft(2)

	AssistantMessage = lipgloss.NewStyle().
				Foreground(TextPrimary).
				PaddingLeft(2)

	SystemMessage = lipgloss.NewStyle().
			Foreground(TextMuted).
			Italic(true).
			PaddingLeft(2)

	// Messages
	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningText = lipgloss.NewStyle().
			Foreground(Accent)

	SuccessText = lipgloss.NewStyle().
			Foreground(Secondary)

	InfoText = lipgloss.NewStyle().
			Foreground(Accent)

	MutedText = lipgloss.NewStyle().
			Foreground(TextMuted)

	// Review table
	FieldName = lipgloss.NewStyle().
			Foreground(TextMuted).
			Width(14)

	FieldValue = lipgloss.NewStyle().
			Foreground(TextPrimary)

	// List items
	ListItem = lipgloss.NewStyle().
			PaddingLeft(2)

	// Input area
	InputPrompt = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// Status bar
	StatusBar = lipgloss.NewStyle().
			Background(Surface).
			Foreground(TextMuted).
			Padding(0, 1)

	// Spinner
	Spinner = lipgloss.NewStyle().
			Foreground(Primary)

	// Borders
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Surface)
)
