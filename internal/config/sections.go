package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Section is a navigation target of the command palette and the keywords that open it.
type Section struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type sectionsFile struct {
	Sections []Section `yaml:"sections"`
}

// DefaultSections returns the built-in navigation keywords.
func DefaultSections() []Section {
	return []Section{
		{Name: "dashboard", Keywords: []string{"dashboard", "home", "overview"}},
		{Name: "finance", Keywords: []string{"finance", "ledger", "budget", "wealth"}},
		{Name: "habits", Keywords: []string{"habits", "streaks"}},
		{Name: "library", Keywords: []string{"library", "books", "vault"}},
		{Name: "journal", Keywords: []string{"journal", "diary"}},
		{Name: "profile", Keywords: []string{"profile", "rank"}},
	}
}

// LoadSections reads section keywords from a YAML file.
// An empty path or a missing file yields DefaultSections.
func LoadSections(path string) ([]Section, error) {
	if path == "" {
		return DefaultSections(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSections(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("LoadSections: reading %s: %w", path, err)
	}

	var file sectionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("LoadSections: parsing %s: %w", path, err)
	}

	sections := make([]Section, 0, len(file.Sections))
	for _, s := range file.Sections {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("LoadSections: section without a name in %s", path)
		}
		keywords := make([]string, 0, len(s.Keywords))
		for _, k := range s.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keywords = append(keywords, k)
			}
		}
		sections = append(sections, Section{Name: name, Keywords: keywords})
	}
	if len(sections) == 0 {
		return DefaultSections(), nil
	}
	return sections, nil
}
