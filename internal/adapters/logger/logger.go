// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/tomobench/internal/core/ports"
)

// messager matches zerr.Error's Message(), which reports a message without its cause chain.
type messager interface {
	Message() string
}

// metadataer matches zerr.Error's Metadata().
type metadataer interface {
	Metadata() map[string]any
}

// errorEntry is one level of an error chain.
type errorEntry struct {
	message  string
	metadata map[string]any
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
}

var _ ports.Logger = (*Logger)(nil)

// New creates a new Logger writing pretty output to stderr.
func New() ports.Logger {
	return &Logger{
		logger: slog.New(NewPrettyHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})),
		output: os.Stderr,
	}
}

// SetOutput updates the logger's output destination, keeping the current mode.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuild()
}

// rebuild must be called with mu held.
func (l *Logger) rebuild() {
	w := l.output
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if l.jsonMode {
		l.logger = slog.New(slog.NewJSONHandler(w, opts))
		return
	}
	l.logger = slog.New(NewPrettyHandler(w, opts))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error together with its cause chain and metadata.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}

	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}

// collectErrorEntries walks the chain. zerr levels contribute their own message;
// the first non-zerr error contributes its full text and ends the walk.
func collectErrorEntries(err error) []errorEntry {
	var entries []errorEntry
	var pending map[string]any

	for current := err; current != nil; current = errors.Unwrap(current) {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, errorEntry{message: current.Error(), metadata: pending})
			break
		}

		var md map[string]any
		if mdr, ok := current.(metadataer); ok {
			md = mdr.Metadata()
		}

		// zerr.With on a bare error leaves an empty message; its metadata belongs to a neighbour.
		if m.Message() == "" {
			if len(entries) > 0 {
				last := &entries[len(entries)-1]
				last.metadata = mergeMetadata(last.metadata, md)
			} else {
				pending = mergeMetadata(pending, md)
			}
			continue
		}

		entries = append(entries, errorEntry{message: m.Message(), metadata: mergeMetadata(pending, md)})
		pending = nil
	}

	return entries
}

func mergeMetadata(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// formatErrorEntries renders the chain as a headline followed by a "Caused by" list.
func formatErrorEntries(entries []errorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.message, "\n")
		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			for _, line := range msgLines[1:] {
				lines = append(lines, "       "+line)
			}
			lines = append(lines, formatMetadata(entry.metadata, "       ")...)
			continue
		}

		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, "      "+line)
		}
		lines = append(lines, formatMetadata(entry.metadata, "      ")...)
	}

	return strings.Join(lines, "\n")
}

func formatMetadata(md map[string]any, indent string) []string {
	if len(md) == 0 {
		return nil
	}

	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s%s: %v", indent, k, md[k]))
	}
	return lines
}
