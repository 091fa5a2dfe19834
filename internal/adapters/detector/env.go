// Package detector selects the log format from the environment.
package detector

import (
	"os"

	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// LogFormat is the rendering mode for log output.
type LogFormat int

const (
	// FormatAuto defers to environment detection.
	FormatAuto LogFormat = iota
	// FormatPretty renders colored human-readable lines.
	FormatPretty
	// FormatJSON renders one JSON object per record.
	FormatJSON
)

// String returns the flag spelling of the format.
func (f LogFormat) String() string {
	switch f {
	case FormatPretty:
		return "pretty"
	case FormatJSON:
		return "json"
	default:
		return "auto"
	}
}

// DetectEnvironment returns the format suited to where stderr goes.
// A terminal or a CI runner gets pretty output; anything else is assumed to be
// collected by a log pipeline and gets JSON.
func DetectEnvironment() LogFormat {
	return detect(term.IsTerminal(int(os.Stderr.Fd())), isCI())
}

func detect(isTTY, ci bool) LogFormat {
	if isTTY || ci {
		return FormatPretty
	}
	return FormatJSON
}

func isCI() bool {
	ci := os.Getenv("CI")
	return ci == "true" || ci == "1"
}

// ParseFormat parses a --log-format value.
func ParseFormat(s string) (LogFormat, error) {
	switch s {
	case "", "auto":
		return FormatAuto, nil
	case "pretty", "text":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatAuto, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unknown log format"), "log_format", s)
	}
}

// ResolveFormat applies an explicit choice over the detected one.
func ResolveFormat(detected, requested LogFormat) LogFormat {
	if requested == FormatAuto {
		return detected
	}
	return requested
}
