package mrfvalidator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/reoring/mrfvalidator/extract"
	"github.com/reoring/mrfvalidator/profile"
)

// Severity expresses how an enforcement finding is treated.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// ParseSeverity accepts "ignore", "warn" and "error".
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "", "ignore":
		return Ignore, nil
	case "warn":
		return Warn, nil
	case "error":
		return Error, nil
	}
	return Ignore, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) String() string {
	switch s {
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "ignore"
	}
}

// Strictness configures duplicate-key handling.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
}

// Limits bound the input a pass accepts. Zero disables a limit.
type Limits struct {
	MaxDepth int
	MaxBytes int64
}

// DefaultBufferSize is the read buffer used when Options.BufferSize is zero.
const DefaultBufferSize = 4069

// Options bundles everything one validation pass needs besides the schema
// and the input.
type Options struct {
	// Driver tokenizes the input; nil selects EncodingJSON.
	Driver JSONDriver
	// BufferSize sizes the read buffer in front of the driver.
	BufferSize int
	Strictness Strictness
	Limits     Limits
	// FailFast turns duplicate-key warnings into errors. Schema fail-fast is
	// a compile option of the schema.Validator.
	FailFast bool

	// Profile selects the extraction table; nil disables extraction.
	Profile *profile.Profile
	// OutputDir receives one file per profile output.
	OutputDir string
	// Writer formats the extracted files.
	Writer extract.WriterOptions

	// Logger receives debug records from the pass; nil discards them.
	Logger *slog.Logger
}

func (o Options) driver() JSONDriver {
	if o.Driver == nil {
		return EncodingJSON
	}
	return o.Driver
}

func (o Options) bufferSize() int {
	if o.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return o.BufferSize
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
