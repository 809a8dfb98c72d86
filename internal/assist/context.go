package assist

import (
	"fmt"

	"github.com/yshim/storyweaver/internal/token"
	"github.com/yshim/storyweaver/pkg/types"
)

// contextTokenBudget caps how much project context is injected into the
// chat system prompt, leaving room for the conversation itself.
const contextTokenBudget = 1024

// ProjectContext renders the project record as a compact context block
// for chat, trimmed to a token budget so a long synopsis cannot crowd
// out the conversation.
func ProjectContext(p *types.Project) string {
	text := fmt.Sprintf("Project: %s\nGenre: %s\nSynopsis: %s", p.Name, p.Genre, p.Synopsis)

	counter, err := token.NewCounter("")
	if err != nil {
		return text
	}
	return counter.Truncate(text, contextTokenBudget)
}
