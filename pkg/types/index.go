package types

import (
	"strings"
	"time"
)

// IndexEntry is a denormalized projection of a character record used for
// fast listing. Path is relative to the story_data directory.
type IndexEntry struct {
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Age       *int      `json:"age"`
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CharacterIndex is the ordered collection of index entries stored in
// characters_index.json. It is a hint for enumeration; the per-character
// record files remain the source of truth for content.
type CharacterIndex struct {
	Characters []IndexEntry `json:"characters"`
}

// Get returns the entry matching name case-insensitively, or nil.
func (idx *CharacterIndex) Get(name string) *IndexEntry {
	for i := range idx.Characters {
		if strings.EqualFold(idx.Characters[i].Name, name) {
			return &idx.Characters[i]
		}
	}
	return nil
}

// Add upserts an entry: any existing entry with the same case-insensitive
// name is removed before the new one is appended.
func (idx *CharacterIndex) Add(entry IndexEntry) {
	idx.Remove(entry.Name)
	idx.Characters = append(idx.Characters, entry)
}

// Remove deletes the entry matching name case-insensitively and reports
// whether anything was removed.
func (idx *CharacterIndex) Remove(name string) bool {
	kept := idx.Characters[:0]
	removed := false
	for _, e := range idx.Characters {
		if strings.EqualFold(e.Name, name) {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	idx.Characters = kept
	return removed
}

// EntryFor builds the index projection of a character. The directory
// name is the character's sanitized on-disk token.
func EntryFor(c *Character, dirName string) IndexEntry {
	return IndexEntry{
		Name:      c.Basics.Name,
		Role:      c.Basics.Role,
		Age:       c.Basics.Age,
		Path:      "characters/" + dirName,
		UpdatedAt: c.UpdatedAt,
	}
}
