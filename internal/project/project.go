// Package project manages the on-disk story project: the root record in
// story.json and the directory skeleton the character store requires.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yshim/storyweaver/internal/storage"
	"github.com/yshim/storyweaver/pkg/types"
)

// On-disk layout, relative to the project root.
const (
	StoryFile     = "story.json"
	DataDir       = "story_data"
	CharactersDir = "characters"
	IndexFile     = "characters_index.json"
)

var (
	ErrProjectExists   = errors.New("project already exists")
	ErrProjectNotFound = errors.New("project not found")
)

// InvalidProjectError reports a structurally broken project, carrying
// every violation found rather than just the first.
type InvalidProjectError struct {
	Path     string
	Problems []string
}

func (e *InvalidProjectError) Error() string {
	return fmt.Sprintf("invalid project structure at %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

// Summary is the display projection of an open project.
type Summary struct {
	Name           string
	Genre          string
	Synopsis       string
	CharacterCount int
	LastModified   time.Time
}

// Create validates the metadata, then creates the project skeleton under
// parentDir and writes story.json plus an empty character index. The
// directory name is the sanitized project name. Returns the project path.
//
// Creation is not atomic: a crash mid-way can leave a partial skeleton.
func Create(name, genre, synopsis, parentDir string) (string, error) {
	record, err := types.NewProject(name, genre, synopsis)
	if err != nil {
		return "", err
	}

	projectPath := filepath.Join(parentDir, storage.SanitizeName(record.Name))
	if _, err := os.Stat(projectPath); err == nil {
		return "", fmt.Errorf("%w: %s", ErrProjectExists, projectPath)
	}

	charactersPath := filepath.Join(projectPath, DataDir, CharactersDir)
	if err := os.MkdirAll(charactersPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create project directories: %w", err)
	}

	if err := storage.WriteJSON(filepath.Join(projectPath, StoryFile), record); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", StoryFile, err)
	}

	indexPath := filepath.Join(projectPath, DataDir, IndexFile)
	if err := storage.WriteJSON(indexPath, &types.CharacterIndex{Characters: []types.IndexEntry{}}); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", IndexFile, err)
	}

	return projectPath, nil
}

// Validate checks the project structure without failing fast: it reports
// every violation found. A nil problem list means the project is valid.
func Validate(path string) (bool, []string) {
	info, err := os.Stat(path)
	if err != nil {
		return false, []string{fmt.Sprintf("project directory does not exist: %s", path)}
	}
	if !info.IsDir() {
		return false, []string{fmt.Sprintf("path is not a directory: %s", path)}
	}

	var problems []string

	storyPath := filepath.Join(path, StoryFile)
	if info, err := os.Stat(storyPath); err != nil {
		problems = append(problems, "missing "+StoryFile)
	} else if info.IsDir() {
		problems = append(problems, StoryFile+" is not a file")
	} else {
		var record types.Project
		if err := storage.ReadJSON(storyPath, &record); err != nil {
			problems = append(problems, fmt.Sprintf("invalid JSON in %s: %v", StoryFile, err))
		} else if err := record.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("invalid project data in %s: %v", StoryFile, err))
		}
	}

	dataPath := filepath.Join(path, DataDir)
	if info, err := os.Stat(dataPath); err != nil {
		problems = append(problems, "missing "+DataDir+" directory")
	} else if !info.IsDir() {
		problems = append(problems, DataDir+" is not a directory")
	} else {
		charactersPath := filepath.Join(dataPath, CharactersDir)
		if info, err := os.Stat(charactersPath); err != nil {
			problems = append(problems, fmt.Sprintf("missing %s/%s directory", DataDir, CharactersDir))
		} else if !info.IsDir() {
			problems = append(problems, fmt.Sprintf("%s/%s is not a directory", DataDir, CharactersDir))
		}
	}

	return len(problems) == 0, problems
}

// Open validates and loads the project record at path. A missing root or
// story.json yields ErrProjectNotFound; any other structural problem
// yields an *InvalidProjectError carrying the full list.
func Open(path string) (*types.Project, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, path)
	}
	if _, err := os.Stat(filepath.Join(path, StoryFile)); err != nil {
		return nil, fmt.Errorf("%w: missing %s at %s", ErrProjectNotFound, StoryFile, path)
	}

	if ok, problems := Validate(path); !ok {
		return nil, &InvalidProjectError{Path: path, Problems: problems}
	}

	var record types.Project
	if err := storage.ReadJSON(filepath.Join(path, StoryFile), &record); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", StoryFile, err)
	}
	return &record, nil
}

// GetSummary opens the project and gathers display info. The character
// count comes from the index, falling back to counting character
// subdirectories when the index is unreadable.
func GetSummary(path string) (*Summary, error) {
	record, err := Open(path)
	if err != nil {
		return nil, err
	}

	count := 0
	var index types.CharacterIndex
	if err := storage.ReadJSON(filepath.Join(path, DataDir, IndexFile), &index); err == nil {
		count = len(index.Characters)
	} else {
		entries, err := os.ReadDir(filepath.Join(path, DataDir, CharactersDir))
		if err == nil {
			for _, e := range entries {
				if e.IsDir() {
					count++
				}
			}
		}
	}

	info, err := os.Stat(filepath.Join(path, StoryFile))
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", StoryFile, err)
	}

	return &Summary{
		Name:           record.Name,
		Genre:          record.Genre,
		Synopsis:       record.Synopsis,
		CharacterCount: count,
		LastModified:   info.ModTime(),
	}, nil
}
