// Package character implements the character record store: full records
// on disk, a synchronized index for fast listing, and the relationship
// dependency rules enforced on delete.
package character

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yshim/storyweaver/internal/project"
	"github.com/yshim/storyweaver/internal/storage"
	"github.com/yshim/storyweaver/pkg/types"
)

// RecordFile is the sole file inside each character directory.
const RecordFile = "description.json"

var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrCharacterExists   = errors.New("character already exists")
)

// DependencyError blocks deletion of a character that other characters
// still reference in their relationship lists.
type DependencyError struct {
	Name       string
	Dependents []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("cannot delete %q: referenced by characters: %s",
		e.Name, strings.Join(e.Dependents, ", "))
}

// Listing is one row of the character list view.
type Listing struct {
	Name       string     `json:"name"`
	Role       types.Role `json:"role"`
	Age        *int       `json:"age"`
	Completion int        `json:"completion"`
}

// Service owns the character records and index of one project. Callers
// never touch the files under story_data/characters directly.
type Service struct {
	projectPath   string
	charactersDir string
	indexPath     string
}

// NewService creates a character service rooted at the project path.
func NewService(projectPath string) *Service {
	return &Service{
		projectPath:   projectPath,
		charactersDir: filepath.Join(projectPath, project.DataDir, project.CharactersDir),
		indexPath:     filepath.Join(projectPath, project.DataDir, project.IndexFile),
	}
}

// validateProject ensures the project skeleton the store writes into
// already exists.
func (s *Service) validateProject() error {
	if _, err := os.Stat(s.projectPath); err != nil {
		return fmt.Errorf("%w: %s", project.ErrProjectNotFound, s.projectPath)
	}
	if _, err := os.Stat(s.charactersDir); err != nil {
		return fmt.Errorf("%w: missing characters directory %s", project.ErrProjectNotFound, s.charactersDir)
	}
	return nil
}

// loadIndex reads the index, returning an empty index when the file is
// missing. The index is only a hint; reads fall back to direct lookup.
func (s *Service) loadIndex() (*types.CharacterIndex, error) {
	var index types.CharacterIndex
	if err := storage.ReadJSON(s.indexPath, &index); err != nil {
		if os.IsNotExist(err) {
			return &types.CharacterIndex{}, nil
		}
		return nil, err
	}
	return &index, nil
}

func (s *Service) saveIndex(index *types.CharacterIndex) error {
	if index.Characters == nil {
		index.Characters = []types.IndexEntry{}
	}
	return storage.WriteJSON(s.indexPath, index)
}

// dirFor returns the direct directory path for a name, via sanitization.
func (s *Service) dirFor(name string) string {
	return filepath.Join(s.charactersDir, storage.SanitizeName(name))
}

func (s *Service) fileFor(name string) string {
	return filepath.Join(s.dirFor(name), RecordFile)
}

// readRecord loads and validates one record file.
func readRecord(path string) (*types.Character, error) {
	var c types.Character
	if err := storage.ReadJSON(path, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create writes a new character record and its index entry. It fails if
// a directory for the sanitized name already exists. Timestamps are
// stamped to now and the LoRA trigger is generated when absent. Returns
// the character's directory path.
func (s *Service) Create(c *types.Character) (string, error) {
	if err := s.validateProject(); err != nil {
		return "", err
	}
	if err := c.Validate(); err != nil {
		return "", err
	}

	dir := s.dirFor(c.Basics.Name)
	if _, err := os.Stat(dir); err == nil {
		return "", fmt.Errorf("%w: %s", ErrCharacterExists, c.Basics.Name)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create character directory: %w", err)
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.LoraTrigger == "" {
		c.LoraTrigger = c.GenerateLoraTrigger()
	}

	if err := storage.WriteJSON(filepath.Join(dir, RecordFile), c); err != nil {
		return "", fmt.Errorf("failed to write character record: %w", err)
	}

	index, err := s.loadIndex()
	if err != nil {
		return "", fmt.Errorf("failed to load character index: %w", err)
	}
	index.Add(types.EntryFor(c, filepath.Base(dir)))
	if err := s.saveIndex(index); err != nil {
		return "", fmt.Errorf("failed to save character index: %w", err)
	}

	return dir, nil
}

// Get loads a character by name, case-insensitively. The index path is
// tried first; a stale or missing entry falls back to the direct path
// derived from the sanitized name.
func (s *Service) Get(name string) (*types.Character, error) {
	if err := s.validateProject(); err != nil {
		return nil, err
	}

	index, err := s.loadIndex()
	if err == nil {
		if entry := index.Get(name); entry != nil {
			path := filepath.Join(s.projectPath, project.DataDir, filepath.FromSlash(entry.Path), RecordFile)
			if c, err := readRecord(path); err == nil {
				return c, nil
			}
		}
	}

	if c, err := readRecord(s.fileFor(name)); err == nil {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCharacterNotFound, name)
}

// Update overwrites an existing character record. UpdatedAt is refreshed
// and, when an appearance is present, the LoRA trigger is recomputed
// unconditionally (unlike creation, which only fills it in when absent).
func (s *Service) Update(c *types.Character) error {
	if err := s.validateProject(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	name := c.Basics.Name
	file := s.fileFor(name)
	if _, err := os.Stat(file); err != nil {
		index, ierr := s.loadIndex()
		if ierr == nil {
			if entry := index.Get(name); entry != nil {
				file = filepath.Join(s.projectPath, project.DataDir, filepath.FromSlash(entry.Path), RecordFile)
			}
		}
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("%w: %s", ErrCharacterNotFound, name)
		}
	}

	c.UpdatedAt = time.Now()
	if c.Appearance != nil {
		c.LoraTrigger = c.GenerateLoraTrigger()
	}

	if err := storage.WriteJSON(file, c); err != nil {
		return fmt.Errorf("failed to write character record: %w", err)
	}

	index, err := s.loadIndex()
	if err != nil {
		return fmt.Errorf("failed to load character index: %w", err)
	}
	index.Add(types.EntryFor(c, storage.SanitizeName(name)))
	return s.saveIndex(index)
}

// Delete removes a character. When other characters reference it and
// force is false, a *DependencyError listing the blockers is returned
// and nothing is mutated. When forced, matching relationship entries are
// first stripped from each dependent record (best-effort: dependents
// that fail to load are skipped), then the character's directory and
// index entry are removed. Returns the names of affected dependents.
func (s *Service) Delete(name string, force bool) ([]string, error) {
	if err := s.validateProject(); err != nil {
		return nil, err
	}

	dir := s.dirFor(name)
	if _, err := os.Stat(dir); err != nil {
		index, ierr := s.loadIndex()
		if ierr == nil {
			if entry := index.Get(name); entry != nil {
				dir = filepath.Join(s.projectPath, project.DataDir, filepath.FromSlash(entry.Path))
			}
		}
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCharacterNotFound, name)
		}
	}

	dependents, err := s.RelationshipDependencies(name)
	if err != nil {
		return nil, err
	}
	if len(dependents) > 0 && !force {
		return nil, &DependencyError{Name: name, Dependents: dependents}
	}

	for _, depName := range dependents {
		dep, err := s.Get(depName)
		if err != nil {
			continue
		}
		kept := dep.Relationships[:0]
		for _, rel := range dep.Relationships {
			if strings.EqualFold(rel.TargetCharacter, name) {
				continue
			}
			kept = append(kept, rel)
		}
		dep.Relationships = kept
		if err := s.Update(dep); err != nil {
			continue
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("failed to remove character directory: %w", err)
	}

	index, err := s.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load character index: %w", err)
	}
	index.Remove(name)
	if err := s.saveIndex(index); err != nil {
		return nil, err
	}

	return dependents, nil
}

// List returns one row per index entry, optionally filtered by role. An
// unrecognized role filter means no filtering. The completion percentage
// requires the full record; a record that fails to load lists as 0
// rather than failing the whole listing.
func (s *Service) List(roleFilter string) ([]Listing, error) {
	if err := s.validateProject(); err != nil {
		return nil, err
	}

	index, err := s.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load character index: %w", err)
	}

	filterRole, filterOK := types.ParseRole(roleFilter)

	var result []Listing
	for _, entry := range index.Characters {
		if roleFilter != "" && filterOK && entry.Role != filterRole {
			continue
		}

		completion := 0
		if c, err := s.Get(entry.Name); err == nil {
			completion = c.CompletionPercentage()
		}

		result = append(result, Listing{
			Name:       entry.Name,
			Role:       entry.Role,
			Age:        entry.Age,
			Completion: completion,
		})
	}
	return result, nil
}

// Exists reports whether a character with the given name (matched
// case-insensitively) is present in the index.
func (s *Service) Exists(name string) bool {
	if err := s.validateProject(); err != nil {
		return false
	}
	index, err := s.loadIndex()
	if err != nil {
		return false
	}
	return index.Get(name) != nil
}

// RelationshipDependencies returns the names of all other characters
// whose relationship lists reference name, matched case-insensitively.
// Dependents that fail to load are skipped.
func (s *Service) RelationshipDependencies(name string) ([]string, error) {
	if err := s.validateProject(); err != nil {
		return nil, err
	}

	index, err := s.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load character index: %w", err)
	}

	var dependents []string
	for _, entry := range index.Characters {
		if strings.EqualFold(entry.Name, name) {
			continue
		}
		c, err := s.Get(entry.Name)
		if err != nil {
			continue
		}
		for _, rel := range c.Relationships {
			if strings.EqualFold(rel.TargetCharacter, name) {
				dependents = append(dependents, entry.Name)
				break
			}
		}
	}
	return dependents, nil
}

// RebuildIndex reconstructs the index from scratch by scanning every
// character directory, silently skipping unparsable ones. This is the
// repair path for index/record divergence.
func (s *Service) RebuildIndex() error {
	if err := s.validateProject(); err != nil {
		return err
	}

	index := &types.CharacterIndex{}

	entries, err := os.ReadDir(s.charactersDir)
	if err != nil {
		return fmt.Errorf("failed to scan characters directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		c, err := readRecord(filepath.Join(s.charactersDir, entry.Name(), RecordFile))
		if err != nil {
			continue
		}
		index.Add(types.EntryFor(c, entry.Name()))
	}

	return s.saveIndex(index)
}
