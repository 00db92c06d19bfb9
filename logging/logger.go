// Package logging provides leveled logging and round tracing for ecoround.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A RoundTracer for structured JSONL round traces (rounds.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug. At this level every
// played round is logged.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// RoundTracer writes one JSON object per played round to a JSONL file.
// It is safe for concurrent use. A nil RoundTracer is safe to use;
// all methods are no-ops on nil receiver.
type RoundTracer struct {
	mu   sync.Mutex
	file *os.File
}

// DefaultTraceDir is where rounds.jsonl goes when no directory is set.
const DefaultTraceDir = "."

// NewRoundTracer creates a tracer writing to dir/rounds.jsonl, or to
// DefaultTraceDir when dir is empty.
// At "info" level it returns nil and no file is created.
// Returns nil if the file cannot be opened.
func NewRoundTracer(dir string, level string) *RoundTracer {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}
	if dir == "" {
		dir = DefaultTraceDir
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, "rounds.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}
	return &RoundTracer{file: f}
}

// Log writes an event as a single JSONL line. A "time" field is added;
// the caller's map is not mutated.
func (rt *RoundTracer) Log(event map[string]any) {
	if rt == nil || rt.file == nil {
		return
	}

	entry := make(map[string]any, len(event)+1)
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	rt.mu.Lock()
	defer rt.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = rt.file.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (rt *RoundTracer) Close() {
	if rt == nil || rt.file == nil {
		return
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.file.Close()
	rt.file = nil
}
