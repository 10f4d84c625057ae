package mrfvalidator

import (
	"fmt"
	"io"
	"sort"

	eng "github.com/reoring/mrfvalidator/internal/engine"
	gojsonsrc "github.com/reoring/mrfvalidator/source/gojson"
	jsonsrc "github.com/reoring/mrfvalidator/source/json"
)

// Token is one structural event of a document: a container boundary, a
// member name or a scalar.
type Token = eng.Token

// TokenSource yields the tokens of one document.
type TokenSource = eng.TokenSource

// JSONDriver turns JSON input into a TokenSource. Drivers are passed
// explicitly through Options; there is no process-wide default to swap.
type JSONDriver interface {
	NewReader(r io.Reader) TokenSource
	Name() string
}

// DriverFunc adapts a constructor such as gojson.NewReader to JSONDriver.
type DriverFunc struct {
	Label string
	New   func(io.Reader) TokenSource
}

func (d DriverFunc) NewReader(r io.Reader) TokenSource { return d.New(r) }
func (d DriverFunc) Name() string                      { return d.Label }

var (
	// EncodingJSON tokenizes with encoding/json. It is the default.
	EncodingJSON JSONDriver = DriverFunc{Label: "encoding/json", New: jsonsrc.NewReader}
	// GoJSON tokenizes with github.com/goccy/go-json. Its token reader does
	// not check commas and colons, so `{"a" 1}` tokenizes like `{"a":1}`.
	// Use it only for input already known to be well-formed.
	GoJSON JSONDriver = DriverFunc{Label: "gojson", New: gojsonsrc.NewReader}
)

var drivers = map[string]JSONDriver{
	"gojson":        GoJSON,
	"go-json":       GoJSON,
	"encoding/json": EncodingJSON,
	"json":          EncodingJSON,
}

// DriverByName resolves a driver by the names accepted on the command line.
// The empty name selects EncodingJSON.
func DriverByName(name string) (JSONDriver, error) {
	if name == "" {
		return EncodingJSON, nil
	}
	if d, ok := drivers[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("unknown JSON driver %q (known: %v)", name, DriverNames())
}

// DriverNames lists accepted driver names.
func DriverNames() []string {
	out := make([]string, 0, len(drivers))
	for k := range drivers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// enforce wraps src with the depth, size and duplicate-key checks of opt.
// Findings that do not stop the pass are handed to report.
func enforce(src TokenSource, opt Options, report func(Issue)) TokenSource {
	var sink func(eng.SimpleIssue)
	if report != nil {
		sink = func(si eng.SimpleIssue) {
			report(Issue{Path: si.Path, Code: si.Code, Message: si.Message, Offset: src.Location()})
		}
	}
	return eng.WrapWithEnforcement(src, eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.Limits.MaxDepth,
		MaxBytes:    opt.Limits.MaxBytes,
		IssueSink:   sink,
		FailFast:    opt.FailFast,
	})
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}
