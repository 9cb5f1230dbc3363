package board

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/1broseidon/gridswap/internal/grid"
)

// Saved is a persisted board arrangement.
type Saved struct {
	Name     string          `json:"name"`
	Sections [][]string      `json:"sections"`
	Locked   []grid.Position `json:"locked,omitempty"`
}

// Snapshot captures the board's arrangement under name.
func (b *Board) Snapshot(name string) *Saved {
	return &Saved{
		Name:     name,
		Sections: b.Sections(),
		Locked:   b.LockedPositions(),
	}
}

// Restore builds a board from a saved arrangement.
func Restore(s *Saved) (*Board, error) {
	if s == nil {
		return nil, fmt.Errorf("saved board is nil")
	}
	if len(s.Sections) == 0 {
		return nil, fmt.Errorf("saved board %q has no sections", s.Name)
	}
	for i, items := range s.Sections {
		if len(items) == 0 {
			return nil, fmt.Errorf("saved board %q: section %d is empty", s.Name, i)
		}
	}
	b := FromSections(s.Sections)
	for _, pos := range s.Locked {
		if err := b.Lock(pos); err != nil {
			return nil, fmt.Errorf("saved board %q: %w", s.Name, err)
		}
	}
	return b, nil
}

// Store keeps named boards as JSON files in a directory.
type Store struct {
	Dir string
}

// DefaultStore returns the store under ~/.config/gridswap/boards.
func DefaultStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &Store{Dir: filepath.Join(homeDir, ".config", "gridswap", "boards")}, nil
}

// ValidateName rejects names that would escape the store directory.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("board name is required")
	}
	if strings.Contains(name, string(os.PathSeparator)) || name != filepath.Base(name) {
		return fmt.Errorf("invalid board name %q", name)
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("invalid board name %q", name)
	}
	return nil
}

func (s *Store) path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name+".json"), nil
}

// Write saves a board arrangement, replacing any with the same name.
func (s *Store) Write(saved *Saved) error {
	if saved == nil {
		return fmt.Errorf("saved board is nil")
	}
	path, err := s.path(saved.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create board directory: %w", err)
	}

	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write board %q: %w", saved.Name, err)
	}
	return nil
}

// Read loads a saved arrangement.
func (s *Store) Read(name string) (*Saved, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board %q: %w", name, err)
	}
	var saved Saved
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("failed to parse board %q: %w", name, err)
	}
	if saved.Name == "" {
		saved.Name = name
	}
	return &saved, nil
}

// Delete removes a saved arrangement.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete board %q: %w", name, err)
	}
	return nil
}

// List returns saved board names in sorted order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(out)
	return out, nil
}
