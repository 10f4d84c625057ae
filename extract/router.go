package extract

import (
	"errors"
	"fmt"
	"log/slog"

	eng "github.com/reoring/mrfvalidator/internal/engine"
)

// Binding ties a pattern to the sink that receives its matched regions.
type Binding struct {
	Name    string
	Pattern Pattern
	Sink    Sink
	// Limit caps the number of regions routed to Sink; 0 means unlimited.
	// A binding that reached its limit is exhausted and never arms again.
	Limit int
}

type bindingState struct {
	Binding
	regions int
}

func (b *bindingState) exhausted() bool { return b.Limit > 0 && b.regions >= b.Limit }

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the logger used for region open/close debug records.
func WithLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.log = l
		}
	}
}

// Router forwards the events of matched regions to their bindings' sinks. At
// most one binding is armed at a time; when several patterns match the same
// location the first in declaration order wins.
//
// A Router serves one forward pass and is not restartable.
type Router struct {
	bindings []bindingState
	tracker  Tracker
	armed    int // index into bindings; -1 when idle
	depth    int // containers opened inside the armed region
	log      *slog.Logger
}

// NewRouter validates bindings and returns an idle router.
func NewRouter(bindings []Binding, opts ...RouterOption) (*Router, error) {
	r := &Router{armed: -1, log: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(r)
	}
	r.bindings = make([]bindingState, 0, len(bindings))
	for i, b := range bindings {
		if b.Sink == nil {
			return nil, fmt.Errorf("%w: binding %d (%s)", ErrUndefinedSink, i, b.Name)
		}
		if b.Pattern.IsZero() {
			return nil, fmt.Errorf("%w: binding %d (%s) has no pattern", ErrInvalidPattern, i, b.Name)
		}
		r.bindings = append(r.bindings, bindingState{Binding: b})
	}
	return r, nil
}

// Location returns the current traversal location.
func (r *Router) Location() Location { return r.tracker.Location() }

// Armed returns the name of the armed binding.
func (r *Router) Armed() (string, bool) {
	if r.armed < 0 {
		return "", false
	}
	return r.bindings[r.armed].Name, true
}

// Regions returns how many complete regions the named binding has received.
func (r *Router) Regions(name string) int {
	n := 0
	for i := range r.bindings {
		if r.bindings[i].Name == name {
			n += r.bindings[i].regions
		}
	}
	return n
}

// Handle processes one structural event. Key and container-enter events are
// matched after the tracker update, exits and scalars before it.
func (r *Router) Handle(tok Token) error {
	switch tok.Kind {
	case eng.KindKey:
		if err := r.tracker.OnKey(tok.String); err != nil {
			return err
		}
		if r.armed >= 0 {
			if r.holds() {
				return r.sink().Key(tok.String)
			}
			return r.abort()
		}
		return r.armOnKey(tok.String)

	case eng.KindBeginObject, eng.KindBeginArray:
		if err := r.armOnElement(); err != nil {
			return err
		}
		if tok.Kind == eng.KindBeginObject {
			r.tracker.OnEnterObject()
		} else {
			r.tracker.OnEnterArray()
		}
		if r.armed < 0 {
			return nil
		}
		if !r.holds() {
			return r.abort()
		}
		r.depth++
		return r.forward(tok)

	case eng.KindEndObject, eng.KindEndArray:
		if r.armed >= 0 {
			if err := r.forward(tok); err != nil {
				return err
			}
			r.depth--
		}
		var err error
		if tok.Kind == eng.KindEndObject {
			err = r.tracker.OnExitObject()
		} else {
			err = r.tracker.OnExitArray()
		}
		if err != nil {
			return err
		}
		if r.armed >= 0 && r.depth == 0 {
			r.complete()
		}
		return nil

	default:
		if err := r.armOnElement(); err != nil {
			return err
		}
		if r.armed >= 0 {
			if err := r.forward(tok); err != nil {
				return err
			}
		}
		r.tracker.OnScalar()
		if r.armed >= 0 && r.depth == 0 {
			r.complete()
		}
		return nil
	}
}

// Close closes every bound sink once and joins their errors. It is safe to
// call after a failed or cancelled pass.
func (r *Router) Close() error {
	seen := make(map[Sink]struct{}, len(r.bindings))
	var errs []error
	for i := range r.bindings {
		s := r.bindings[i].Sink
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.armed = -1
	return errors.Join(errs...)
}

func (r *Router) sink() Sink { return r.bindings[r.armed].Sink }

// holds re-tests the armed pattern at the current location.
func (r *Router) holds() bool {
	pending, has := r.tracker.Pending()
	return Match(r.tracker.Location(), pending, has, r.bindings[r.armed].Pattern) != Reject
}

// armOnKey arms the first keyed binding the pending key completes.
func (r *Router) armOnKey(name string) error {
	loc := r.tracker.Location()
	for i := range r.bindings {
		b := &r.bindings[i]
		if b.exhausted() || b.Pattern.TargetsElements() {
			continue
		}
		if Match(loc, name, true, b.Pattern) == PartialPrefix {
			return r.arm(i, loc.DottedWith(name, true))
		}
	}
	return nil
}

// armOnElement arms the first element binding whose array is the current
// container. It runs before the tracker counts the element, so the index
// frame holds the element's own position.
func (r *Router) armOnElement() error {
	if r.armed >= 0 || !r.tracker.InArray() {
		return nil
	}
	loc := r.tracker.Location()
	for i := range r.bindings {
		b := &r.bindings[i]
		if b.exhausted() || !b.Pattern.TargetsElements() || loc.Len() != b.Pattern.Len() {
			continue
		}
		if Match(loc, "", false, b.Pattern) == Exact {
			return r.arm(i, loc.Dotted())
		}
	}
	return nil
}

func (r *Router) arm(i int, key string) error {
	r.armed, r.depth = i, 0
	r.log.Debug("extract: region opened", "binding", r.bindings[i].Name, "path", key)
	return r.bindings[i].Sink.Key(key)
}

func (r *Router) complete() {
	b := &r.bindings[r.armed]
	b.regions++
	r.log.Debug("extract: region closed", "binding", b.Name, "regions", b.regions)
	r.armed, r.depth = -1, 0
}

// abort handles an armed pattern that no longer matches inside an open
// region. Regions end exactly when their value completes, so this only
// happens when the event stream and the tracker disagree.
func (r *Router) abort() error {
	name := r.bindings[r.armed].Name
	r.armed, r.depth = -1, 0
	return fmt.Errorf("%w: binding %s lost its match at %s", ErrInconsistentState, name, r.tracker.Location().Pointer())
}

func (r *Router) forward(tok Token) error {
	s := r.sink()
	switch tok.Kind {
	case eng.KindBeginObject:
		return s.BeginObject()
	case eng.KindEndObject:
		return s.EndObject()
	case eng.KindBeginArray:
		return s.BeginArray()
	case eng.KindEndArray:
		return s.EndArray()
	default:
		return s.Scalar(tok)
	}
}
