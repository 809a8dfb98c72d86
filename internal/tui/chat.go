package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yshim/storyweaver/internal/assist"
	"github.com/yshim/storyweaver/internal/tui/styles"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleSystem    = "system"
)

type chatMessage struct {
	role    string
	content string
}

// ChatModel is the Bubble Tea model for the interactive chat. Besides
// free text it understands two commands: "exit" (also "quit") leaves
// the chat and "clear" resets the transcript while keeping the project
// context.
type ChatModel struct {
	assistant      *assist.Assistant
	projectContext string

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	messages     []chatMessage
	streaming    bool
	chunks       <-chan assist.StreamChunk
	cancelStream context.CancelFunc
	partial      strings.Builder
	err          error
	ready        bool
	quitting     bool
}

// NewChatModel creates the chat model. projectContext may be empty when
// chat is started outside a project directory.
func NewChatModel(assistant *assist.Assistant, projectContext string) *ChatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about your story, or type 'exit' to leave..."
	ta.Focus()
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	m := &ChatModel{
		assistant:      assistant,
		projectContext: projectContext,
		textarea:       ta,
		spinner:        sp,
	}

	if projectContext != "" {
		m.messages = append(m.messages, chatMessage{role: roleSystem, content: "Project context loaded."})
	} else {
		m.messages = append(m.messages, chatMessage{role: roleSystem, content: "No project context (not in a project directory)."})
	}
	return m
}

// Init implements tea.Model.
func (m *ChatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update implements tea.Model.
func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-8)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 8
		}
		m.textarea.SetWidth(msg.Width - 4)
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.stopStream()
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if !m.streaming {
				return m.handleSubmit()
			}
		}

	case spinner.TickMsg:
		if m.streaming {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case StreamChunkMsg:
		m.partial.WriteString(msg.Content)
		m.refreshViewport()
		return m, tea.Batch(waitForChunk(m.chunks), m.spinner.Tick)

	case StreamDoneMsg:
		m.messages = append(m.messages, chatMessage{role: roleAssistant, content: m.partial.String()})
		m.partial.Reset()
		m.stopStream()
		m.textarea.Focus()
		m.refreshViewport()

	case StreamErrorMsg:
		m.err = msg.Err
		m.partial.Reset()
		m.stopStream()
		m.textarea.Focus()
		m.refreshViewport()
	}

	if !m.streaming {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}

	switch strings.ToLower(input) {
	case "exit", "quit":
		m.stopStream()
		m.quitting = true
		return m, tea.Quit
	case "clear":
		m.stopStream()
		m.messages = m.messages[:1]
		m.err = nil
		m.textarea.Reset()
		m.refreshViewport()
		return m, nil
	}

	m.messages = append(m.messages, chatMessage{role: roleUser, content: input})
	m.textarea.Reset()
	m.err = nil

	ctx, cancel := context.WithCancel(context.Background())
	chunks, err := m.assistant.ChatStream(ctx, input, m.projectContext)
	if err != nil {
		cancel()
		m.err = err
		m.refreshViewport()
		return m, nil
	}

	m.streaming = true
	m.chunks = chunks
	m.cancelStream = cancel
	m.textarea.Blur()
	m.refreshViewport()
	return m, tea.Batch(waitForChunk(chunks), m.spinner.Tick)
}

// stopStream cancels any in-flight generation and clears stream state.
func (m *ChatModel) stopStream() {
	if m.cancelStream != nil {
		m.cancelStream()
		m.cancelStream = nil
	}
	m.streaming = false
	m.chunks = nil
}

func (m *ChatModel) refreshViewport() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for _, msg := range m.messages {
		switch msg.role {
		case roleUser:
			b.WriteString(styles.UserMessage.Render("You: "+msg.content) + "\n\n")
		case roleAssistant:
			b.WriteString(styles.AssistantMessage.Render(msg.content) + "\n\n")
		case roleSystem:
			b.WriteString(styles.SystemMessage.Render(msg.content) + "\n\n")
		}
	}

	if m.streaming && m.partial.Len() > 0 {
		b.WriteString(styles.AssistantMessage.Render(m.partial.String()) + "\n")
	}
	if m.err != nil {
		b.WriteString(styles.ErrorText.Render("Error: "+m.err.Error()) + "\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m *ChatModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	var status string
	if m.streaming {
		status = m.spinner.View() + " thinking..."
	} else {
		status = styles.StatusBar.Render("enter: send • esc: quit • commands: exit, clear")
	}

	return fmt.Sprintf(
		"%s\n%s\n\n%s\n%s",
		styles.Title.Render("Story Chat"),
		m.viewport.View(),
		m.textarea.View(),
		status,
	)
}
