package extract

import (
	"errors"
	"fmt"
	"strings"
)

// SegmentKind tells a named child apart from an array-element wildcard.
type SegmentKind uint8

const (
	SegmentNamed SegmentKind = iota
	SegmentAnyIndex
)

// Segment is one step of a Pattern.
type Segment struct {
	Kind SegmentKind
	Key  string // set for SegmentNamed
}

// Named returns a segment addressing the member key.
func Named(key string) Segment { return Segment{Kind: SegmentNamed, Key: key} }

// AnyIndex returns a segment matching every position inside an array.
func AnyIndex() Segment { return Segment{Kind: SegmentAnyIndex} }

func (s Segment) String() string {
	if s.Kind == SegmentAnyIndex {
		return anyIndexToken
	}
	return s.Key
}

const anyIndexToken = "[]"

// ErrInvalidPattern is returned for empty or malformed pattern text.
var ErrInvalidPattern = errors.New("extract: invalid pattern")

// Pattern is an immutable location description. Patterns ending in a named
// segment select one keyed value; patterns ending in AnyIndex select every
// element of the addressed array, each as its own region.
type Pattern struct {
	segs []Segment
}

// NewPattern builds a pattern from segments. Every AnyIndex is preceded by a
// named segment, since the tracker records each array as a name frame
// followed by an index frame; anonymous arrays get Named("").
func NewPattern(segs ...Segment) (Pattern, error) {
	if len(segs) == 0 {
		return Pattern{}, fmt.Errorf("%w: no segments", ErrInvalidPattern)
	}
	out := make([]Segment, 0, len(segs)+1)
	for _, s := range segs {
		if s.Kind == SegmentAnyIndex && (len(out) == 0 || out[len(out)-1].Kind == SegmentAnyIndex) {
			out = append(out, Named(""))
		}
		out = append(out, s)
	}
	return Pattern{segs: out}, nil
}

// MustPattern is NewPattern that panics on error; intended for static tables.
func MustPattern(segs ...Segment) Pattern {
	p, err := NewPattern(segs...)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePattern parses the dotted form, e.g. "in_network.[].negotiated_rates".
// "[]" stands for AnyIndex. Member names containing '.' cannot be expressed.
func ParsePattern(text string) (Pattern, error) {
	if strings.TrimSpace(text) == "" {
		return Pattern{}, fmt.Errorf("%w: empty", ErrInvalidPattern)
	}
	parts := strings.Split(text, ".")
	segs := make([]Segment, 0, len(parts))
	for _, p := range parts {
		switch p {
		case anyIndexToken:
			segs = append(segs, AnyIndex())
		case "":
			return Pattern{}, fmt.Errorf("%w: empty segment in %q", ErrInvalidPattern, text)
		default:
			segs = append(segs, Named(p))
		}
	}
	return NewPattern(segs...)
}

// Len returns the number of segments.
func (p Pattern) Len() int { return len(p.segs) }

// Segment returns the i-th segment.
func (p Pattern) Segment(i int) Segment { return p.segs[i] }

// Last returns the terminal segment.
func (p Pattern) Last() Segment { return p.segs[len(p.segs)-1] }

// TargetsElements reports whether the pattern selects array elements.
func (p Pattern) TargetsElements() bool {
	return len(p.segs) > 0 && p.Last().Kind == SegmentAnyIndex
}

// IsZero reports whether p was never built.
func (p Pattern) IsZero() bool { return len(p.segs) == 0 }

// String renders the dotted form. Implicit anonymous names are omitted so
// that ParsePattern(p.String()) yields an equal pattern.
func (p Pattern) String() string {
	var b strings.Builder
	for i, s := range p.segs {
		if s.Kind == SegmentNamed && s.Key == "" && i+1 < len(p.segs) && p.segs[i+1].Kind == SegmentAnyIndex {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}
