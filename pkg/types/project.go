// Package types provides shared data models for storyweaver.
package types

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Field length limits for project records.
const (
	MaxProjectNameLen = 100
	MaxGenreLen       = 50
	MaxSynopsisLen    = 2000
)

// ValidationError describes a single invalid field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Project is the root configuration record stored in story.json.
type Project struct {
	Name      string    `json:"name"`
	Genre     string    `json:"genre"`
	Synopsis  string    `json:"synopsis"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProject builds a validated project record. Name and synopsis are
// trimmed, genre is trimmed and lowercased. Returns a *ValidationError
// on the first violation found.
func NewProject(name, genre, synopsis string) (*Project, error) {
	name = strings.TrimSpace(name)
	if err := validateProjectName(name); err != nil {
		return nil, err
	}

	genre = strings.ToLower(strings.TrimSpace(genre))
	if genre == "" {
		return nil, &ValidationError{Field: "genre", Message: "cannot be empty"}
	}
	if utf8.RuneCountInString(genre) > MaxGenreLen {
		return nil, &ValidationError{Field: "genre", Message: fmt.Sprintf("must be at most %d characters", MaxGenreLen)}
	}

	synopsis = strings.TrimSpace(synopsis)
	if synopsis == "" {
		return nil, &ValidationError{Field: "synopsis", Message: "cannot be empty"}
	}
	if utf8.RuneCountInString(synopsis) > MaxSynopsisLen {
		return nil, &ValidationError{Field: "synopsis", Message: fmt.Sprintf("must be at most %d characters", MaxSynopsisLen)}
	}

	return &Project{
		Name:      name,
		Genre:     genre,
		Synopsis:  synopsis,
		CreatedAt: time.Now(),
	}, nil
}

// Validate re-checks a project record loaded from disk.
func (p *Project) Validate() error {
	if err := validateProjectName(strings.TrimSpace(p.Name)); err != nil {
		return err
	}
	if g := strings.TrimSpace(p.Genre); g == "" || utf8.RuneCountInString(g) > MaxGenreLen {
		return &ValidationError{Field: "genre", Message: fmt.Sprintf("must be 1-%d characters", MaxGenreLen)}
	}
	if s := strings.TrimSpace(p.Synopsis); s == "" || utf8.RuneCountInString(s) > MaxSynopsisLen {
		return &ValidationError{Field: "synopsis", Message: fmt.Sprintf("must be 1-%d characters", MaxSynopsisLen)}
	}
	return nil
}

func validateProjectName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if utf8.RuneCountInString(name) > MaxProjectNameLen {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", MaxProjectNameLen)}
	}
	if !isSafeName(name, false) {
		return &ValidationError{
			Field:   "name",
			Message: "can only contain letters, numbers, spaces, hyphens, and underscores",
		}
	}
	return nil
}

// isSafeName reports whether a name contains only letters, digits, spaces,
// hyphens, underscores and, when allowApostrophe is set, apostrophes.
// At least one letter or digit is required.
func isSafeName(name string, allowApostrophe bool) bool {
	hasAlnum := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			hasAlnum = true
		case r == ' ' || r == '-' || r == '_':
		case r == '\'' && allowApostrophe:
		default:
			return false
		}
	}
	return hasAlnum
}
