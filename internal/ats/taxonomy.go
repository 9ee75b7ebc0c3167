package ats

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

// DefaultRole is the role whose weights apply when no role cue matches.
const DefaultRole = "default"

// Skill is a canonical skill name and the surface forms that count as it.
type Skill struct {
	Name     string   `yaml:"name" json:"name"`
	Variants []string `yaml:"variants" json:"variants"`
}

// Category groups skills under a scoring category such as "databases".
type Category struct {
	Name   string  `yaml:"name" json:"name"`
	Skills []Skill `yaml:"skills" json:"skills"`
}

// CategoryWeight is one category's share of a role's weight budget.
type CategoryWeight struct {
	Category string  `yaml:"category" json:"category"`
	Weight   float64 `yaml:"weight" json:"weight"`
}

// Role describes a job family, the cues that identify it and its category weights.
type Role struct {
	Name    string           `yaml:"name" json:"name"`
	Cues    []string         `yaml:"cues" json:"cues,omitempty"`
	Weights []CategoryWeight `yaml:"weights" json:"weights"`
}

// Emphasis is a word that raises the importance of nearby skills.
type Emphasis struct {
	Word   string  `yaml:"word" json:"word"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// EducationLevel is a degree level with its rank in the hierarchy.
type EducationLevel struct {
	Level    string   `yaml:"level" json:"level"`
	Rank     int      `yaml:"rank" json:"rank"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Taxonomy is the immutable configuration the engine scores against.
// It must not be modified after it has been handed to an Engine.
type Taxonomy struct {
	Version      int              `yaml:"version" json:"version"`
	Categories   []Category       `yaml:"categories" json:"categories"`
	Roles        []Role           `yaml:"roles" json:"roles"`
	Emphasis     []Emphasis       `yaml:"emphasis" json:"emphasis"`
	RequiredCues []string         `yaml:"requiredCues" json:"requiredCues"`
	Education    []EducationLevel `yaml:"education" json:"education"`
}

var loadDefault = sync.OnceValues(func() (*Taxonomy, error) {
	return ParseTaxonomy(defaultTaxonomyYAML)
})

// DefaultTaxonomy returns the embedded taxonomy. The result is shared; do not mutate it.
func DefaultTaxonomy() (*Taxonomy, error) {
	return loadDefault()
}

// MustDefaultTaxonomy is DefaultTaxonomy for callers that cannot proceed without it.
func MustDefaultTaxonomy() *Taxonomy {
	t, err := DefaultTaxonomy()
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTaxonomy decodes and validates a YAML taxonomy document.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid taxonomy: %w", err)
	}
	for i := range t.Categories {
		for j := range t.Categories[i].Skills {
			s := &t.Categories[i].Skills[j]
			for k, v := range s.Variants {
				s.Variants[k] = strings.ToLower(strings.TrimSpace(v))
			}
		}
	}
	return &t, nil
}

func (t *Taxonomy) validate() error {
	if len(t.Categories) == 0 {
		return errors.New("no categories")
	}
	categories := make(map[string]bool, len(t.Categories))
	skills := make(map[string]bool)
	for _, c := range t.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return errors.New("category without name")
		}
		if categories[c.Name] {
			return fmt.Errorf("duplicate category %q", c.Name)
		}
		categories[c.Name] = true
		for _, s := range c.Skills {
			if strings.TrimSpace(s.Name) == "" {
				return fmt.Errorf("category %q: skill without name", c.Name)
			}
			if skills[s.Name] {
				return fmt.Errorf("duplicate skill %q", s.Name)
			}
			skills[s.Name] = true
			if len(s.Variants) == 0 {
				return fmt.Errorf("skill %q has no variants", s.Name)
			}
			for _, v := range s.Variants {
				if strings.TrimSpace(v) == "" {
					return fmt.Errorf("skill %q has an empty variant", s.Name)
				}
			}
		}
	}
	for _, r := range t.Roles {
		for _, w := range r.Weights {
			if w.Weight < 0 {
				return fmt.Errorf("role %q: negative weight for %q", r.Name, w.Category)
			}
		}
	}
	ranks := make(map[int]string, len(t.Education))
	for _, e := range t.Education {
		if prev, ok := ranks[e.Rank]; ok {
			return fmt.Errorf("education levels %q and %q share rank %d", prev, e.Level, e.Rank)
		}
		ranks[e.Rank] = e.Level
	}
	return nil
}

// CategoryNames lists category names in taxonomy order.
func (t *Taxonomy) CategoryNames() []string {
	out := make([]string, 0, len(t.Categories))
	for _, c := range t.Categories {
		out = append(out, c.Name)
	}
	return out
}

// Role returns the named role, falling back to the default role.
func (t *Taxonomy) Role(name string) (Role, bool) {
	var fallback Role
	found := false
	for _, r := range t.Roles {
		if r.Name == name {
			return r, true
		}
		if r.Name == DefaultRole {
			fallback = r
			found = true
		}
	}
	return fallback, found
}

// DetectRoleType returns the first role with a cue starting a word in text, or DefaultRole.
func (t *Taxonomy) DetectRoleType(text string) string {
	for _, r := range t.Roles {
		for _, cue := range r.Cues {
			if compile(`(?i)` + prefixPattern(cue)).MatchString(text) {
				return r.Name
			}
		}
	}
	return DefaultRole
}

// EducationLevels returns the levels whose keywords occur in text, in taxonomy order.
func (t *Taxonomy) EducationLevels(text string) []string {
	found := make([]string, 0, 2)
	for _, e := range t.Education {
		if hasEducationKeyword(text, e.Keywords) {
			found = append(found, e.Level)
		}
	}
	return found
}

func (t *Taxonomy) educationRank(level string) (int, bool) {
	for _, e := range t.Education {
		if e.Level == level {
			return e.Rank, true
		}
	}
	return 0, false
}

// orderedCategories returns the categories of skills in taxonomy order, followed by
// any categories the taxonomy does not know, sorted by name.
func (t *Taxonomy) orderedCategories(skills map[string][]ExtractedRequirement) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, c := range t.Categories {
		if _, ok := skills[c.Name]; ok {
			out = append(out, c.Name)
			seen[c.Name] = true
		}
	}
	var extra []string
	for name := range skills {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
