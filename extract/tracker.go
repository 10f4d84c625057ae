package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	eng "github.com/reoring/mrfvalidator/internal/engine"
)

// ErrInconsistentState reports a structural event that contradicts the
// tracker's stacks (pop of an empty stack, mismatched container close). It
// indicates a broken event source, not bad document data, and aborts the pass.
var ErrInconsistentState = errors.New("extract: inconsistent traversal state")

// Frame is one level of a Location. A named frame carries the member key; an
// AnyIndex frame carries the running element count of its array, so one
// frame holds both the symbolic and the concrete segment.
type Frame struct {
	Seg   Segment
	Index int
}

// Location is the path from the document root to the current event. Values
// returned by Tracker.Location alias tracker storage and are only valid until
// the next tracker call; use Clone to keep one.
type Location struct {
	frames []Frame
}

// Len returns the number of frames.
func (l Location) Len() int { return len(l.frames) }

// Frame returns the i-th frame.
func (l Location) Frame(i int) Frame { return l.frames[i] }

// Parent returns the location with the innermost frame removed.
func (l Location) Parent() Location {
	if len(l.frames) == 0 {
		return l
	}
	return Location{frames: l.frames[:len(l.frames)-1]}
}

// Clone returns an independent copy.
func (l Location) Clone() Location {
	return Location{frames: append([]Frame(nil), l.frames...)}
}

// Dotted renders the concrete path as "a.b.0.c". Anonymous array names are
// omitted; the root renders as "".
func (l Location) Dotted() string { return l.DottedWith("", false) }

// DottedWith renders the concrete path extended by one member key.
func (l Location) DottedWith(key string, withKey bool) string {
	var b strings.Builder
	sep := func() {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
	}
	for _, f := range l.frames {
		switch {
		case f.Seg.Kind == SegmentAnyIndex:
			sep()
			b.WriteString(strconv.Itoa(f.Index))
		case f.Seg.Key != "":
			sep()
			b.WriteString(f.Seg.Key)
		}
	}
	if withKey {
		sep()
		b.WriteString(key)
	}
	return b.String()
}

// Pointer renders the concrete path as a JSON Pointer ("/a/b/0/c").
func (l Location) Pointer() string {
	var b strings.Builder
	for _, f := range l.frames {
		switch {
		case f.Seg.Kind == SegmentAnyIndex:
			b.WriteByte('/')
			b.WriteString(strconv.Itoa(f.Index))
		case f.Seg.Key != "":
			b.WriteByte('/')
			b.WriteString(eng.EscapePointerToken(f.Seg.Key))
		}
	}
	return b.String()
}

func (l Location) String() string { return l.Dotted() }

type openContainer struct {
	array  bool
	pushed bool // object pushed a named frame on enter
}

// Tracker maintains the traversal location as structural events arrive.
// Exactly one method call is expected per event.
type Tracker struct {
	frames     []Frame
	open       []openContainer
	pending    string
	hasPending bool
}

// Location returns the current location (aliasing tracker storage).
func (t *Tracker) Location() Location { return Location{frames: t.frames} }

// Pending returns the member key awaiting its value.
func (t *Tracker) Pending() (string, bool) { return t.pending, t.hasPending }

// Depth returns the number of open containers.
func (t *Tracker) Depth() int { return len(t.open) }

// InArray reports whether the innermost open container is an array.
func (t *Tracker) InArray() bool {
	n := len(t.open)
	return n > 0 && t.open[n-1].array
}

// Reset clears all state for a new pass.
func (t *Tracker) Reset() {
	t.frames = t.frames[:0]
	t.open = t.open[:0]
	t.pending, t.hasPending = "", false
}

// OnKey records name as the pending key for the next value.
func (t *Tracker) OnKey(name string) error {
	n := len(t.open)
	if n == 0 || t.open[n-1].array {
		return fmt.Errorf("%w: key %q outside an object", ErrInconsistentState, name)
	}
	t.pending, t.hasPending = name, true
	return nil
}

// OnEnterObject pushes the pending key, if any. Objects without a pending key
// are array elements (or the root) and are represented by the enclosing
// array's index frame.
func (t *Tracker) OnEnterObject() {
	pushed := t.hasPending
	if pushed {
		t.frames = append(t.frames, Frame{Seg: Named(t.pending)})
		t.pending, t.hasPending = "", false
	}
	t.open = append(t.open, openContainer{pushed: pushed})
}

// OnExitObject pops the frame pushed by the matching enter, or counts the
// closed object as one element of the enclosing array.
func (t *Tracker) OnExitObject() error {
	c, err := t.close(false)
	if err != nil {
		return err
	}
	if c.pushed {
		if len(t.frames) == 0 {
			return fmt.Errorf("%w: object frame underflow", ErrInconsistentState)
		}
		t.frames = t.frames[:len(t.frames)-1]
		return nil
	}
	t.countElement()
	return nil
}

// OnEnterArray pushes Named(key) (Named("") for anonymous arrays) followed by
// an index frame starting at 0.
func (t *Tracker) OnEnterArray() {
	key := t.pending
	t.pending, t.hasPending = "", false
	t.frames = append(t.frames, Frame{Seg: Named(key)}, Frame{Seg: AnyIndex()})
	t.open = append(t.open, openContainer{array: true})
}

// OnExitArray pops both frames pushed by the matching enter.
func (t *Tracker) OnExitArray() error {
	if _, err := t.close(true); err != nil {
		return err
	}
	if len(t.frames) < 2 {
		return fmt.Errorf("%w: array frame underflow", ErrInconsistentState)
	}
	t.frames = t.frames[:len(t.frames)-2]
	t.countElement()
	return nil
}

// OnScalar counts a scalar array element or consumes the pending key.
func (t *Tracker) OnScalar() {
	if t.InArray() {
		t.frames[len(t.frames)-1].Index++
		return
	}
	t.pending, t.hasPending = "", false
}

func (t *Tracker) close(array bool) (openContainer, error) {
	n := len(t.open)
	if n == 0 {
		return openContainer{}, fmt.Errorf("%w: close without open container", ErrInconsistentState)
	}
	c := t.open[n-1]
	if c.array != array {
		return openContainer{}, fmt.Errorf("%w: mismatched container close", ErrInconsistentState)
	}
	t.open = t.open[:n-1]
	t.pending, t.hasPending = "", false
	return c, nil
}

// countElement advances the enclosing array's index after a container element
// closes.
func (t *Tracker) countElement() {
	if t.InArray() {
		t.frames[len(t.frames)-1].Index++
	}
}

// Apply dispatches a token to the matching tracker method.
func (t *Tracker) Apply(tok eng.Token) error {
	switch tok.Kind {
	case eng.KindKey:
		return t.OnKey(tok.String)
	case eng.KindBeginObject:
		t.OnEnterObject()
	case eng.KindEndObject:
		return t.OnExitObject()
	case eng.KindBeginArray:
		t.OnEnterArray()
	case eng.KindEndArray:
		return t.OnExitArray()
	default:
		t.OnScalar()
	}
	return nil
}
