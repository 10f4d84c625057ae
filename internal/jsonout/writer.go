// Package jsonout writes JSON incrementally from structural events.
package jsonout

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/mrfvalidator/internal/engine"
)

// ErrUnbalanced is returned when writer calls do not form a JSON value.
var ErrUnbalanced = errors.New("jsonout: unbalanced output")

// Options configures JSON output.
type Options struct {
	// Indent is repeated once per nesting level. Empty means compact output.
	Indent string
	// BufferSize sizes the output buffer; <= 0 uses the bufio default.
	BufferSize int
}

// Default indents with two spaces.
var Default = Options{Indent: "  "}

type writerFrame struct {
	array bool
	count int
}

// Writer emits JSON incrementally. Strings are encoded with go-json (HTML
// escaping disabled); numbers are copied from the token text so extracted
// values keep their original spelling.
type Writer struct {
	out      *bufio.Writer
	indent   string
	stack    []writerFrame
	afterKey bool
	scratch  bytes.Buffer
	enc      *j.Encoder
	err      error
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer, opt Options) *Writer {
	var out *bufio.Writer
	if opt.BufferSize > 0 {
		out = bufio.NewWriterSize(w, opt.BufferSize)
	} else {
		out = bufio.NewWriter(w)
	}
	wr := &Writer{out: out, indent: opt.Indent}
	wr.enc = j.NewEncoder(&wr.scratch)
	wr.enc.SetEscapeHTML(false)
	return wr
}

// Depth returns the number of open containers.
func (w *Writer) Depth() int { return len(w.stack) }

// Err returns the first write error.
func (w *Writer) Err() error { return w.err }

func (w *Writer) write(s string) {
	if w.err == nil {
		_, w.err = w.out.WriteString(s)
	}
}

func (w *Writer) newline(depth int) {
	if w.indent == "" {
		return
	}
	w.write("\n")
	w.write(strings.Repeat(w.indent, depth))
}

// prefix writes the separator that precedes a member name or element.
func (w *Writer) prefix() {
	n := len(w.stack)
	if n == 0 {
		return
	}
	top := &w.stack[n-1]
	if top.count > 0 {
		w.write(",")
	}
	top.count++
	w.newline(n)
}

func (w *Writer) beginValue() error {
	if w.err != nil {
		return w.err
	}
	if w.afterKey {
		w.afterKey = false
		return nil
	}
	if n := len(w.stack); n > 0 && !w.stack[n-1].array {
		return ErrUnbalanced
	}
	w.prefix()
	return nil
}

// Key writes a member name; the next call must write its value.
func (w *Writer) Key(name string) error {
	n := len(w.stack)
	if w.err != nil {
		return w.err
	}
	if n == 0 || w.stack[n-1].array || w.afterKey {
		return ErrUnbalanced
	}
	w.prefix()
	w.encodeString(name)
	if w.indent == "" {
		w.write(":")
	} else {
		w.write(": ")
	}
	w.afterKey = true
	return w.err
}

func (w *Writer) begin(array bool) error {
	if err := w.beginValue(); err != nil {
		return err
	}
	if array {
		w.write("[")
	} else {
		w.write("{")
	}
	w.stack = append(w.stack, writerFrame{array: array})
	return w.err
}

func (w *Writer) end(array bool) error {
	n := len(w.stack)
	if w.err != nil {
		return w.err
	}
	if n == 0 || w.stack[n-1].array != array || w.afterKey {
		return ErrUnbalanced
	}
	if w.stack[n-1].count > 0 {
		w.newline(n - 1)
	}
	w.stack = w.stack[:n-1]
	if array {
		w.write("]")
	} else {
		w.write("}")
	}
	return w.err
}

// BeginObject opens an object.
func (w *Writer) BeginObject() error { return w.begin(false) }

// EndObject closes the innermost object.
func (w *Writer) EndObject() error { return w.end(false) }

// BeginArray opens an array.
func (w *Writer) BeginArray() error { return w.begin(true) }

// EndArray closes the innermost array.
func (w *Writer) EndArray() error { return w.end(true) }

// Scalar writes a string, number, bool or null token.
func (w *Writer) Scalar(tok eng.Token) error {
	switch tok.Kind {
	case eng.KindString:
		return w.String(tok.String)
	case eng.KindNumber:
		return w.Number(tok.Number)
	case eng.KindBool:
		return w.Bool(tok.Bool)
	case eng.KindNull:
		return w.Null()
	}
	return ErrUnbalanced
}

// String writes a string value.
func (w *Writer) String(s string) error {
	if err := w.beginValue(); err != nil {
		return err
	}
	w.encodeString(s)
	return w.err
}

// Number writes number text verbatim; the caller guarantees it is valid JSON.
func (w *Writer) Number(text string) error { return w.Raw(text) }

// Raw writes an already encoded JSON value.
func (w *Writer) Raw(text string) error {
	if err := w.beginValue(); err != nil {
		return err
	}
	w.write(text)
	return w.err
}

// Bool writes true or false.
func (w *Writer) Bool(v bool) error {
	if err := w.beginValue(); err != nil {
		return err
	}
	if v {
		w.write("true")
	} else {
		w.write("false")
	}
	return w.err
}

// Null writes null.
func (w *Writer) Null() error {
	if err := w.beginValue(); err != nil {
		return err
	}
	w.write("null")
	return w.err
}

func (w *Writer) encodeString(s string) {
	if w.err != nil {
		return
	}
	w.scratch.Reset()
	if w.err = w.enc.Encode(s); w.err != nil {
		return
	}
	w.write(string(bytes.TrimRight(w.scratch.Bytes(), "\n")))
}

// CloseAll terminates a dangling member with null and closes every open
// container, so an interrupted stream still yields well-formed JSON.
func (w *Writer) CloseAll() error {
	if w.afterKey {
		if err := w.Null(); err != nil {
			return err
		}
	}
	for len(w.stack) > 0 {
		if err := w.end(w.stack[len(w.stack)-1].array); err != nil {
			return err
		}
	}
	return w.err
}

// Flush writes buffered output.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.out.Flush()
	return w.err
}
