// Package output provides output formatting for reconstruct.
package output

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// Writer handles structured output.
type Writer struct {
	encoder *json.Encoder
	compact bool
}

// Config holds output configuration.
type Config struct {
	Compact bool
	Output  io.Writer
}

// New creates a new output Writer.
func New(cfg Config) *Writer {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	enc := json.NewEncoder(cfg.Output)
	enc.SetEscapeHTML(false)
	if !cfg.Compact {
		enc.SetIndent("", "  ")
	}

	return &Writer{
		encoder: enc,
		compact: cfg.Compact,
	}
}

// Write outputs a value as JSON.
func (w *Writer) Write(v any) error {
	return w.encoder.Encode(v)
}

// WriteError writes an error as a JSON object to w.
func WriteError(w io.Writer, err error) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(map[string]string{
		"error": err.Error(),
	})
}

// Diff returns a unified diff between two versions of a file, or "" when they are equal.
func Diff(name string, before, after []byte) (string, error) {
	var sb strings.Builder
	if err := WriteDiff(&sb, name, before, after); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteDiff writes the unified diff between two versions of a file to w.  Equal versions write nothing.
func WriteDiff(w io.Writer, name string, before, after []byte) error {
	if string(before) == string(after) {
		return nil
	}
	ew := &errWriter{w: w}
	err := difflib.WriteUnifiedDiff(ew, difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err == nil {
		err = ew.err
	}
	return errors.Wrapf(err, "diffing %s", name)
}

// errWriter keeps the first write error.  difflib buffers its output and drops the error of the final
// flush.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// splitLines splits text into lines that keep their newline.  difflib.SplitLines alone would add an
// empty last line to text that already ends in one.
func splitLines(text []byte) []string {
	return difflib.SplitLines(strings.TrimSuffix(string(text), "\n"))
}
