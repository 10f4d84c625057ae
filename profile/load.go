package profile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reoring/mrfvalidator/extract"
)

// ErrInvalidProfile is returned for profile files that do not describe
// extraction tables.
var ErrInvalidProfile = errors.New("profile: invalid profile file")

// DuplicateKeyError reports a key repeated in one YAML mapping, with both
// positions.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("profile: duplicate key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

type rawEntry struct {
	File  string `yaml:"file"`
	Path  string `yaml:"path"`
	Limit int    `yaml:"limit"`
}

// LoadFile reads a profile file.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load reads profiles from YAML:
//
//	in-network-rates:
//	  - file: providerGroups.json
//	    path: in_network.[].negotiated_rates.[].provider_groups
//	    limit: 100
//
// Kinds and entries keep file order.
func Load(r io.Reader) (*Set, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return NewSet(), nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return NewSet(), nil
		}
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping of document kinds", ErrInvalidProfile, doc.Line)
	}
	if err := checkDuplicates(doc); err != nil {
		return nil, err
	}

	set := NewSet()
	for i := 0; i < len(doc.Content); i += 2 {
		k, v := doc.Content[i], doc.Content[i+1]
		if v.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: line %d: kind %q must list entries", ErrInvalidProfile, v.Line, k.Value)
		}
		p := Profile{Kind: k.Value}
		for _, item := range v.Content {
			e, err := decodeEntry(item)
			if err != nil {
				return nil, fmt.Errorf("%w: kind %q: %w", ErrInvalidProfile, k.Value, err)
			}
			p.Entries = append(p.Entries, e)
		}
		set.put(p)
	}
	return set, nil
}

func decodeEntry(n *yaml.Node) (Entry, error) {
	if n.Kind != yaml.MappingNode {
		return Entry{}, fmt.Errorf("line %d: entry must be a mapping", n.Line)
	}
	if err := checkDuplicates(n); err != nil {
		return Entry{}, err
	}
	for i := 0; i < len(n.Content); i += 2 {
		switch key := n.Content[i]; key.Value {
		case "file", "path", "limit":
		default:
			return Entry{}, fmt.Errorf("line %d: unknown field %q", key.Line, key.Value)
		}
	}
	var raw rawEntry
	if err := n.Decode(&raw); err != nil {
		return Entry{}, err
	}
	if raw.File == "" {
		return Entry{}, fmt.Errorf("line %d: missing file", n.Line)
	}
	if raw.Limit < 0 {
		return Entry{}, fmt.Errorf("line %d: negative limit", n.Line)
	}
	p, err := extract.ParsePattern(raw.Path)
	if err != nil {
		return Entry{}, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return Entry{File: raw.File, Pattern: p, Limit: raw.Limit}, nil
}

func checkDuplicates(n *yaml.Node) error {
	first := make(map[string][2]int, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		k := n.Content[i]
		if pos, dup := first[k.Value]; dup {
			return &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
		}
		first[k.Value] = [2]int{k.Line, k.Column}
	}
	return nil
}
