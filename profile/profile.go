// Package profile holds the per-document-kind extraction tables: which
// locations of a document are copied to which output file.
package profile

import (
	"errors"
	"fmt"
	"slices"

	"github.com/reoring/mrfvalidator/extract"
)

// ErrUnknownProfile is returned for a document kind with no profile.
var ErrUnknownProfile = errors.New("profile: unknown document kind")

// Entry routes one location pattern to one output file.
type Entry struct {
	File    string
	Pattern extract.Pattern
	// Limit caps the number of regions written; 0 means unlimited.
	Limit int
}

// Profile is the ordered extraction table of one document kind. Entry order
// decides which entry wins when patterns overlap.
type Profile struct {
	Kind    string
	Entries []Entry
}

// Files returns the distinct output files in entry order.
func (p Profile) Files() []string {
	var out []string
	for _, e := range p.Entries {
		if !slices.Contains(out, e.File) {
			out = append(out, e.File)
		}
	}
	return out
}

// SinkSource yields the sink registered for an output file.
type SinkSource interface {
	Get(file string) (extract.Sink, bool)
}

// Bindings resolves every entry against sinks.
func (p Profile) Bindings(sinks SinkSource) ([]extract.Binding, error) {
	out := make([]extract.Binding, 0, len(p.Entries))
	for _, e := range p.Entries {
		s, ok := sinks.Get(e.File)
		if !ok {
			return nil, fmt.Errorf("%w: %s entry %s", extract.ErrUndefinedSink, p.Kind, e.File)
		}
		out = append(out, extract.Binding{Name: e.File, Pattern: e.Pattern, Sink: s, Limit: e.Limit})
	}
	return out, nil
}

// Set is an ordered collection of profiles keyed by kind.
type Set struct {
	byKind map[string]Profile
	order  []string
}

// NewSet builds a set; a later profile for the same kind replaces the earlier.
func NewSet(ps ...Profile) *Set {
	s := &Set{byKind: make(map[string]Profile, len(ps))}
	for _, p := range ps {
		s.put(p)
	}
	return s
}

func (s *Set) put(p Profile) {
	if _, ok := s.byKind[p.Kind]; !ok {
		s.order = append(s.order, p.Kind)
	}
	s.byKind[p.Kind] = p
}

// Lookup returns the profile for kind.
func (s *Set) Lookup(kind string) (Profile, error) {
	p, ok := s.byKind[kind]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, kind)
	}
	return p, nil
}

// Kinds lists kinds in definition order.
func (s *Set) Kinds() []string { return slices.Clone(s.order) }

// Merge returns a new set holding s overlaid with other.
func (s *Set) Merge(other *Set) *Set {
	out := NewSet()
	for _, k := range s.order {
		out.put(s.byKind[k])
	}
	if other != nil {
		for _, k := range other.order {
			out.put(other.byKind[k])
		}
	}
	return out
}

const (
	KindInNetworkRates   = "in-network-rates"
	KindAllowedAmounts   = "allowed-amounts"
	KindTableOfContents  = "table-of-contents"
	lastUpdatedFile      = "lastUpdated.json"
	lastUpdatedPattern   = "last_updated_on"
	negotiatedPricesPath = "in_network.[].negotiated_rates.[].negotiated_prices.[]"
)

// Builtin returns the extraction tables for the price transparency file kinds.
func Builtin() *Set {
	return NewSet(
		Profile{Kind: KindInNetworkRates, Entries: []Entry{
			entry("additionalInfo.json", negotiatedPricesPath+".additional_information"),
			entry("negotiatedType.json", negotiatedPricesPath+".negotiated_type"),
			entry("providerGroups.json", "in_network.[].negotiated_rates.[].provider_groups"),
			entry("providerReferences.json", "provider_references.[].location"),
			entry(lastUpdatedFile, lastUpdatedPattern),
		}},
		Profile{Kind: KindAllowedAmounts, Entries: []Entry{
			entry(lastUpdatedFile, lastUpdatedPattern),
		}},
		Profile{Kind: KindTableOfContents, Entries: []Entry{
			entry("allowedAmountFiles.json", "reporting_structure.[].allowed_amount_file"),
			entry("inNetworkFiles.json", "reporting_structure.[].in_network_files"),
		}},
	)
}

func entry(file, pattern string) Entry {
	p, err := extract.ParsePattern(pattern)
	if err != nil {
		panic(err)
	}
	return Entry{File: file, Pattern: p}
}
