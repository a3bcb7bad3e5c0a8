package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Operator maps the initials an inspector writes in a photo reference to the
// name used in the photo folder.
type Operator struct {
	Alphabet string `yaml:"alphabet" json:"alphabet"`
	Name     string `yaml:"name" json:"name"`
}

// Names is an initials table. Use Sorted before substituting.
type Names []Operator

// NameBook holds one initials table per project plus a shared default.
type NameBook struct {
	Default  Names            `yaml:"default"`
	Projects map[string]Names `yaml:"projects"`
}

// LoadNames reads a NameBook from a YAML file.
func LoadNames(path string) (*NameBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read names file: %w", err)
	}
	return ParseNames(data)
}

// ParseNames decodes a YAML NameBook.
func ParseNames(data []byte) (*NameBook, error) {
	var book NameBook
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("parse names: %w", err)
	}
	for project, names := range book.Projects {
		for _, n := range names {
			if n.Alphabet == "" {
				return nil, fmt.Errorf("project %q: operator %q has no alphabet", project, n.Name)
			}
		}
	}
	return &book, nil
}

// For returns the project's table followed by the defaults, longest initials first.
func (b *NameBook) For(project string) Names {
	if b == nil {
		return nil
	}
	out := make(Names, 0, len(b.Projects[project])+len(b.Default))
	out = append(out, b.Projects[project]...)
	out = append(out, b.Default...)
	return out.Sorted()
}

// Sorted returns a copy ordered by descending initials length so that "SA" is
// tried before "S".
func (n Names) Sorted() Names {
	out := make(Names, len(n))
	copy(out, n)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Alphabet) > len(out[j].Alphabet)
	})
	return out
}

// Replace substitutes initials with full names, longest initials first, and
// turns ASCII spaces into the full-width space used by folder names.
func (n Names) Replace(s string) string {
	for _, op := range n.Sorted() {
		if op.Alphabet == "" {
			continue
		}
		if strings.Contains(s, op.Alphabet) {
			s = strings.ReplaceAll(s, op.Alphabet, op.Name)
		}
	}
	return strings.ReplaceAll(s, " ", "　")
}
