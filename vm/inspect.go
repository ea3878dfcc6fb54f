package vm

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// InspectionResult is a structured view of a value, for REPL and debugger
// output.
type InspectionResult struct {
	Kind     string              // Storage kind, e.g. "mid string"
	Value    string              // Diagnostic rendering, clipped to the width
	Size     int                 // Tables: array + map entry count
	Elements []InspectionElement // Tables: preview of entries (limited)
}

// InspectionElement is one table entry in an inspection.
type InspectionElement struct {
	Key   string
	Value *InspectionResult
}

// MaxElementPreview is the maximum number of table entries to preview.
const MaxElementPreview = 10

// DefaultInspectDepth is the default recursion depth for inspection.
const DefaultInspectDepth = 2

// DefaultInspectWidth is the default clip width in terminal cells.
const DefaultInspectWidth = 60

// InspectOptions controls recursion and clipping. Zero fields take the
// defaults.
type InspectOptions struct {
	Depth int
	Width int
}

// Inspect builds an InspectionResult for v. Nested tables are expanded down
// to opts.Depth levels; rendered values wider than opts.Width cells are
// clipped with "...".
func Inspect(v Value, opts InspectOptions) *InspectionResult {
	if opts.Depth <= 0 {
		opts.Depth = DefaultInspectDepth
	}
	if opts.Width <= 0 {
		opts.Width = DefaultInspectWidth
	}
	return inspect(v, opts.Depth, opts.Width)
}

func inspect(v Value, depth, width int) *InspectionResult {
	r := &InspectionResult{
		Kind:  v.kind.String(),
		Value: runewidth.Truncate(v.Debug(), width, "..."),
	}
	t, ok := v.AsTable()
	if !ok || depth <= 0 {
		return r
	}
	release, err := t.TryBorrow()
	if err != nil {
		return r
	}
	defer release()

	r.Size = len(t.array) + t.nhash
	add := func(k, val Value) bool {
		if len(r.Elements) >= MaxElementPreview {
			return false
		}
		r.Elements = append(r.Elements, InspectionElement{
			Key:   runewidth.Truncate(k.Debug(), width, "..."),
			Value: inspect(val, depth-1, width),
		})
		return true
	}
	for i, val := range t.array {
		if val.kind != KindNil && !add(FromInt(int64(i+1)), val) {
			return r
		}
	}
	for _, bucket := range t.hash {
		for _, e := range bucket {
			if !add(e.key, e.val) {
				return r
			}
		}
	}
	return r
}

// String returns a multi-line rendering of the inspection.
func (r *InspectionResult) String() string {
	var sb strings.Builder
	r.write(&sb, 0)
	return sb.String()
}

func (r *InspectionResult) write(sb *strings.Builder, indent int) {
	prefix := strings.Repeat("  ", indent)
	sb.WriteString(prefix)
	sb.WriteString(r.Kind)
	sb.WriteString(": ")
	sb.WriteString(r.Value)
	sb.WriteString("\n")

	if len(r.Elements) == 0 {
		return
	}
	sb.WriteString(prefix)
	sb.WriteString(fmt.Sprintf("  entries (showing %d of %d):\n", len(r.Elements), r.Size))
	for _, e := range r.Elements {
		sb.WriteString(prefix)
		sb.WriteString("    [")
		sb.WriteString(e.Key)
		sb.WriteString("]\n")
		e.Value.write(sb, indent+3)
	}
}
