// Package programs holds the higher-study program table and resolves
// program names returned by the analysis service to display metadata.
package programs

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed programs.yaml
var defaultTable []byte

// InstitutionKind tells a renderer which heading to use for Institutions.
type InstitutionKind string

const (
	KindUniversities InstitutionKind = "universities"
	KindPlatforms    InstitutionKind = "platforms"
)

// Metadata describes one program. It is treated as immutable once loaded.
type Metadata struct {
	Duration     string          `json:"duration"`
	AvgCost      string          `json:"avgCost"`
	Kind         InstitutionKind `json:"kind"`
	Institutions []string        `json:"institutions"`
	Careers      []string        `json:"careers"`
	Requirements string          `json:"requirements"`
}

// InstitutionsHeading returns "Top Universities" or "Top Platforms".
func (m Metadata) InstitutionsHeading() string {
	if m.Kind == KindPlatforms {
		return "Top Platforms"
	}
	return "Top Universities"
}

// Fallback is returned for any name missing from the table.
func Fallback() Metadata {
	return Metadata{
		Duration:     "1-2 years",
		AvgCost:      "Varies",
		Kind:         KindUniversities,
		Institutions: []string{"Research programs online"},
		Careers:      []string{"Various career opportunities"},
		Requirements: "Bachelor's degree or equivalent",
	}
}

// ErrInvalidTable is wrapped by every Load failure.
var ErrInvalidTable = errors.New("invalid program table")

// Catalog is a name-keyed lookup table that preserves file order.
type Catalog struct {
	names   []string
	entries map[string]Metadata
}

type tableFile struct {
	Programs []tableEntry `yaml:"programs"`
}

type tableEntry struct {
	Name            string   `yaml:"name"`
	Duration        string   `yaml:"duration"`
	AvgCost         string   `yaml:"avgCost"`
	TopUniversities []string `yaml:"topUniversities"`
	TopPlatforms    []string `yaml:"topPlatforms"`
	Careers         []string `yaml:"careers"`
	Requirements    string   `yaml:"requirements"`
}

// Load parses a YAML program table.
func Load(r io.Reader) (*Catalog, error) {
	var file tableFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidTable, err)
	}

	c := &Catalog{
		names:   make([]string, 0, len(file.Programs)),
		entries: make(map[string]Metadata, len(file.Programs)),
	}
	for i, e := range file.Programs {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidTable, i)
		}
		if _, dup := c.entries[e.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate program %q", ErrInvalidTable, e.Name)
		}
		md, err := e.metadata()
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTable, e.Name, err)
		}
		c.names = append(c.names, e.Name)
		c.entries[e.Name] = md
	}
	return c, nil
}

func (e tableEntry) metadata() (Metadata, error) {
	hasUni := len(e.TopUniversities) > 0
	hasPlat := len(e.TopPlatforms) > 0
	md := Metadata{
		Duration:     e.Duration,
		AvgCost:      e.AvgCost,
		Careers:      append([]string(nil), e.Careers...),
		Requirements: e.Requirements,
	}
	switch {
	case hasUni && hasPlat:
		return Metadata{}, errors.New("both topUniversities and topPlatforms set")
	case hasUni:
		md.Kind = KindUniversities
		md.Institutions = append([]string(nil), e.TopUniversities...)
	case hasPlat:
		md.Kind = KindPlatforms
		md.Institutions = append([]string(nil), e.TopPlatforms...)
	default:
		return Metadata{}, errors.New("one of topUniversities or topPlatforms is required")
	}
	return md, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the embedded table.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(bytes.NewReader(defaultTable))
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that cannot proceed without the table.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Resolve returns the metadata for name, or Fallback when name is unknown.
// Matching is exact and case-sensitive.
func (c *Catalog) Resolve(name string) Metadata {
	if md, ok := c.Lookup(name); ok {
		return md
	}
	return Fallback()
}

// Lookup reports whether name is in the table.
func (c *Catalog) Lookup(name string) (Metadata, bool) {
	if c == nil {
		return Metadata{}, false
	}
	md, ok := c.entries[name]
	if !ok {
		return Metadata{}, false
	}
	return md.clone(), true
}

// Names lists program names in table order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

// Len returns the number of programs.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

func (m Metadata) clone() Metadata {
	m.Institutions = append([]string(nil), m.Institutions...)
	m.Careers = append([]string(nil), m.Careers...)
	return m
}
