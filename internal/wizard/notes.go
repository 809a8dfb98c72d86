// Package wizard implements the interactive character creation flow.
package wizard

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Notes is the content imported from a markdown notes file. Title seeds
// the backstory summary, Bullets become key events, and Body is handed
// to the generation assistant for expansion.
type Notes struct {
	Title   string
	Body    string
	Bullets []string
}

var notesMarkdown = goldmark.New()

// ParseNotesFile reads and parses a markdown notes file.
func ParseNotesFile(path string) (*Notes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read notes file: %w", err)
	}
	return ParseNotes(string(data)), nil
}

// ParseNotes extracts the first H1 title and all top-level list items
// from markdown content. The body is the content with any YAML
// frontmatter stripped.
func ParseNotes(content string) *Notes {
	_, body := splitFrontmatter(content)

	source := []byte(body)
	doc := notesMarkdown.Parser().Parse(text.NewReader(source))

	notes := &Notes{Body: body}
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 && notes.Title == "" {
				notes.Title = string(node.Text(source))
			}
		case *ast.ListItem:
			item := strings.TrimSpace(nodeText(node, source))
			if item != "" {
				notes.Bullets = append(notes.Bullets, item)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return notes
}

// nodeText collects the plain text of a node's children.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if textBlock, ok := child.(*ast.TextBlock); ok {
			b.Write(textBlock.Text(source))
			continue
		}
		if para, ok := child.(*ast.Paragraph); ok {
			b.Write(para.Text(source))
		}
	}
	return b.String()
}

// splitFrontmatter separates YAML frontmatter from the markdown body.
func splitFrontmatter(content string) (string, string) {
	lines := strings.Split(content, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != "---" {
		return "", content
	}

	end := 0
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == 0 {
		return "", content
	}

	frontmatter := strings.Join(lines[1:end], "\n")
	body := strings.TrimSpace(strings.Join(lines[end+1:], "\n"))
	return frontmatter, body
}
