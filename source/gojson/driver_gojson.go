// Package gojson tokenizes JSON with github.com/goccy/go-json.
//
// The go-json token reader does not validate commas or colons between
// tokens; `[1 2]` and `{"a" 1}` tokenize as if the separators were present.
// Use this driver for trusted, well-formed input only.
package gojson

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/mrfvalidator/internal/engine"
)

type source struct {
	dec  *j.Decoder
	cnt  *countingReader
	keys eng.KeyState
}

// countingReader reports how many bytes the decoder has pulled so far. The
// decoder reads ahead, so the figure is an upper bound of the token offset.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
func NewReader(r io.Reader) eng.TokenSource {
	cnt := &countingReader{r: r}
	dec := j.NewDecoder(cnt)
	dec.UseNumber()
	return &source{dec: dec, cnt: cnt}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, fmt.Errorf("offset %d: %w", s.cnt.n, err)
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.keys.Open(false)
			return s.token(eng.KindBeginObject), nil
		case '[':
			s.keys.Open(true)
			return s.token(eng.KindBeginArray), nil
		case '}':
			s.keys.Close()
			return s.token(eng.KindEndObject), nil
		default:
			s.keys.Close()
			return s.token(eng.KindEndArray), nil
		}
	case string:
		t := s.token(eng.KindString)
		if s.keys.String() {
			t.Kind = eng.KindKey
		}
		t.String = v
		return t, nil
	case j.Number:
		s.keys.Scalar()
		t := s.token(eng.KindNumber)
		t.Number = string(v)
		return t, nil
	case float64:
		s.keys.Scalar()
		t := s.token(eng.KindNumber)
		t.Number = strconv.FormatFloat(v, 'g', -1, 64)
		return t, nil
	case bool:
		s.keys.Scalar()
		t := s.token(eng.KindBool)
		t.Bool = v
		return t, nil
	}
	s.keys.Scalar()
	return s.token(eng.KindNull), nil
}

func (s *source) token(k eng.Kind) eng.Token {
	return eng.Token{Kind: k, Offset: s.cnt.n}
}

func (s *source) Location() int64 { return s.cnt.n }
