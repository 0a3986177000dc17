// Package storage keeps terminal view preferences between sessions, one
// directory per rack. Knob values are never stored.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoPrefs is returned by Load when a rack has never been saved.
var ErrNoPrefs = errors.New("storage: no saved preferences")

const prefsFile = "prefs.json"

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Prefs is how the host last showed a rack.
type Prefs struct {
	Rack      string    `json:"rack"`
	Timestamp time.Time `json:"timestamp"`
	Theme     string    `json:"theme,omitempty"`
	// Focus is the id of the highlighted knob.
	Focus string `json:"focus,omitempty"`
}

// rackDir maps a rack name to a single directory below the base dir.
func rackDir(name string) string {
	name = filepath.Base(filepath.Clean(strings.TrimSpace(name)))
	switch name {
	case "", ".", "..", string(filepath.Separator):
		return "default"
	}
	return name
}

// Save writes p for rack, replacing earlier preferences.
func (s *Store) Save(rack string, p Prefs) (*Prefs, error) {
	dir := filepath.Join(s.baseDir, rackDir(rack))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	p.Rack = rack
	p.Timestamp = s.now()

	f, err := os.Create(filepath.Join(dir, prefsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads the preferences of rack.
func (s *Store) Load(rack string) (*Prefs, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, rackDir(rack), prefsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w for rack %q", ErrNoPrefs, rack)
		}
		return nil, err
	}

	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("storage: rack %q: %w", rack, err)
	}
	return &p, nil
}

// List returns the preferences of every rack, newest first.
func (s *Store) List() ([]Prefs, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Prefs{}, nil
		}
		return nil, err
	}

	all := make([]Prefs, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), prefsFile))
		if err != nil {
			continue
		}
		var p Prefs
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })
	return all, nil
}
