package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	eng "github.com/reoring/mrfvalidator/internal/engine"
	"github.com/reoring/mrfvalidator/internal/jsonout"
)

// Token is the structural event type consumed by the tracker, router and sinks.
type Token = eng.Token

// WriterOptions configures sink output; an empty Indent gives compact JSON.
type WriterOptions = jsonout.Options

// DefaultWriterOptions indents with two spaces.
var DefaultWriterOptions = jsonout.Default

// ErrUnbalancedOutput is returned when sink calls do not form a JSON value.
var ErrUnbalancedOutput = jsonout.ErrUnbalanced

// ErrUndefinedSink is returned when a binding has no sink.
var ErrUndefinedSink = errors.New("extract: binding has no sink")

// Sink receives the structural events of matched regions. Each region starts
// with Key(concrete dotted path) followed by exactly one value.
type Sink interface {
	Key(name string) error
	BeginObject() error
	EndObject() error
	BeginArray() error
	EndArray() error
	Scalar(tok Token) error
	Close() error
}

// ReportSink writes regions as members of one enclosing JSON object:
//
//	{
//	  "a.b.0.c": "x",
//	  "a.b.1.c": "y"
//	}
//
// The envelope is opened on creation and closed by Close, so output is a
// complete document even when the pass stops early.
type ReportSink struct {
	w      *jsonout.Writer
	closer io.Closer
	closed bool
	err    error
}

// NewReportSink opens the envelope on w. The caller keeps ownership of w.
func NewReportSink(w io.Writer, opt WriterOptions) (*ReportSink, error) {
	s := &ReportSink{w: jsonout.NewWriter(w, opt)}
	if err := s.w.BeginObject(); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateFileSink creates (or truncates) path and returns a sink owning the file.
func CreateFileSink(path string, opt WriterOptions) (*ReportSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s, err := NewReportSink(f, opt)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

func (s *ReportSink) guard() error {
	if s.closed {
		return fmt.Errorf("extract: write to closed sink")
	}
	return nil
}

func (s *ReportSink) Key(name string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.w.Key(name)
}

func (s *ReportSink) BeginObject() error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.w.BeginObject()
}

func (s *ReportSink) EndObject() error {
	if err := s.guard(); err != nil {
		return err
	}
	// The envelope belongs to Close.
	if s.w.Depth() <= 1 {
		return ErrUnbalancedOutput
	}
	return s.w.EndObject()
}

func (s *ReportSink) BeginArray() error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.w.BeginArray()
}

func (s *ReportSink) EndArray() error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.w.EndArray()
}

func (s *ReportSink) Scalar(tok Token) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.w.Scalar(tok)
}

// Close finishes the envelope, flushes, and closes an owned file. Calling it
// again returns the first result.
func (s *ReportSink) Close() error {
	if s.closed {
		return s.err
	}
	s.closed = true
	err := s.w.CloseAll()
	if err == nil {
		err = s.w.Flush()
	}
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
	}
	s.err = err
	return err
}

// SinkSet owns a group of sinks and closes each of them exactly once.
type SinkSet struct {
	sinks  map[string]Sink
	order  []string
	closed bool
}

// OpenFileSinks creates one file sink per name under dir. If any file cannot be
// created, the sinks opened so far are closed and the error is returned.
func OpenFileSinks(dir string, names []string, opt WriterOptions) (*SinkSet, error) {
	set := &SinkSet{sinks: make(map[string]Sink, len(names))}
	for _, name := range names {
		if _, ok := set.sinks[name]; ok {
			continue
		}
		s, err := CreateFileSink(filepath.Join(dir, name), opt)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("extract: open sink %q: %w", name, err), set.Close())
		}
		set.Add(name, s)
	}
	return set, nil
}

// Add registers a sink under name. A name already present keeps its first sink.
func (s *SinkSet) Add(name string, sink Sink) {
	if s.sinks == nil {
		s.sinks = make(map[string]Sink)
	}
	if _, ok := s.sinks[name]; ok {
		return
	}
	s.sinks[name] = sink
	s.order = append(s.order, name)
}

// Get returns the sink registered under name.
func (s *SinkSet) Get(name string) (Sink, bool) {
	sink, ok := s.sinks[name]
	return sink, ok
}

// Names returns sink names in registration order.
func (s *SinkSet) Names() []string { return append([]string(nil), s.order...) }

// Close closes every sink and joins their errors.
func (s *SinkSet) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for _, name := range s.order {
		if err := s.sinks[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("extract: close sink %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
