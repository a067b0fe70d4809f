package intent

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultTableYAML []byte

// Table is the loaded pattern set. Built once at start-up and shared read-only.
type Table struct {
	Patterns []Pattern         `yaml:"patterns"`
	Triggers []TriggerCategory `yaml:"triggers"`

	byID map[ID]*Pattern
}

var ErrInvalidTable = errors.New("invalid intent table")

// DefaultTable parses the embedded table.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultTableYAML)
}

// LoadTable reads a table from disk. An empty path means the embedded default.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intent table %s: %w", path, err)
	}
	return ParseTable(data)
}

func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) validate() error {
	if len(t.Patterns) == 0 {
		return fmt.Errorf("%w: no patterns", ErrInvalidTable)
	}

	t.byID = make(map[ID]*Pattern, len(t.Patterns))
	for i := range t.Patterns {
		p := &t.Patterns[i]
		if p.ID == "" {
			return fmt.Errorf("%w: pattern %d has no id", ErrInvalidTable, i)
		}
		if _, dup := t.byID[p.ID]; dup {
			return fmt.Errorf("%w: duplicate pattern %q", ErrInvalidTable, p.ID)
		}
		if len(p.Keywords) == 0 && len(p.Phrases) == 0 {
			return fmt.Errorf("%w: pattern %q has no keywords or phrases", ErrInvalidTable, p.ID)
		}
		if p.BaseConfidence <= 0 || p.BaseConfidence > 1 {
			return fmt.Errorf("%w: pattern %q base_confidence %.2f out of (0,1]", ErrInvalidTable, p.ID, p.BaseConfidence)
		}
		if p.PhraseWeight < 0 || p.KeywordWeight < 0 {
			return fmt.Errorf("%w: pattern %q has negative weight", ErrInvalidTable, p.ID)
		}
		for j, kw := range p.Keywords {
			p.Keywords[j] = Normalize(kw)
		}
		for j, ph := range p.Phrases {
			p.Phrases[j] = Normalize(ph)
		}
		t.byID[p.ID] = p
	}

	seen := make(map[string]bool, len(t.Triggers))
	for i := range t.Triggers {
		c := &t.Triggers[i]
		if c.Name == "" || len(c.Phrases) == 0 {
			return fmt.Errorf("%w: trigger category %d is empty", ErrInvalidTable, i)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate trigger category %q", ErrInvalidTable, c.Name)
		}
		seen[c.Name] = true
		for j, ph := range c.Phrases {
			c.Phrases[j] = Normalize(ph)
		}
	}
	return nil
}

// Pattern looks up a pattern by id.
func (t *Table) Pattern(id ID) (*Pattern, bool) {
	p, ok := t.byID[id]
	return p, ok
}
