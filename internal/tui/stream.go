// Package tui provides the interactive chat interface using Bubble Tea.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yshim/storyweaver/internal/assist"
)

// Messages emitted while a response is streaming.
type (
	// StreamChunkMsg carries one increment of the assistant's response.
	StreamChunkMsg struct{ Content string }

	// StreamDoneMsg signals the response finished.
	StreamDoneMsg struct{}

	// StreamErrorMsg signals the stream failed.
	StreamErrorMsg struct{ Err error }
)

// waitForChunk returns a command that delivers the next chunk from the
// stream as a Bubble Tea message. The model re-issues it after every
// chunk until done.
func waitForChunk(chunks <-chan assist.StreamChunk) tea.Cmd {
	return func() tea.Msg {
		chunk, ok := <-chunks
		if !ok {
			return StreamDoneMsg{}
		}
		if chunk.Err != nil {
			return StreamErrorMsg{Err: chunk.Err}
		}
		if chunk.Done {
			return StreamDoneMsg{}
		}
		return StreamChunkMsg{Content: chunk.Delta}
	}
}
