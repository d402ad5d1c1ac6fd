// Package debug has helpers producing human readable dumps of trees.
package debug

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines, two spaces per level.
type TreeWriter struct {
	w      *strings.Builder
	indent string
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{w: &strings.Builder{}, indent: "  "}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

// WriteTo copies the accumulated text to w.
func (tw *TreeWriter) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, tw.w.String())
	return int64(n), err
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(tw.indent)
	}
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes label followed by the quoted value.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Property writes "name: value" with the value as is.
func (tw *TreeWriter) Property(depth int, name, value string) {
	tw.pad(depth)
	tw.w.WriteString(name)
	tw.w.WriteString(": ")
	tw.w.WriteString(value)
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
