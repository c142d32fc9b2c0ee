// Package diff renders unified diffs for tool results and handoffs.
package diff

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxDiffInput guards against diffing very large files.
const maxDiffInput = 10 * 1024 * 1024

// Result contains a generated diff and its line statistics.
type Result struct {
	Unified      string
	AddedLines   int
	RemovedLines int
	IsBinary     bool
}

// Generator produces unified diffs between two versions of a file.
type Generator struct {
	colorEnabled bool
}

// NewGenerator creates a diff generator. Color is only for human-facing CLI
// output; tool results always pass colorEnabled=false.
func NewGenerator(colorEnabled bool) *Generator {
	return &Generator{colorEnabled: colorEnabled}
}

// Unified diffs oldContent against newContent for the named file.
func (g *Generator) Unified(oldContent, newContent, filename string) *Result {
	if oldContent == newContent {
		return &Result{}
	}

	if isBinary(oldContent) || isBinary(newContent) {
		return &Result{
			Unified:  fmt.Sprintf("Binary file %s has changed", filename),
			IsBinary: true,
		}
	}

	if len(oldContent) > maxDiffInput || len(newContent) > maxDiffInput {
		return &Result{
			Unified: fmt.Sprintf("--- a/%s\n+++ b/%s\n@@ large file, diff skipped @@", filename, filename),
		}
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldContent, newContent, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	patches := dmp.PatchMake(oldContent, diffs)
	body := dmp.PatchToText(patches)

	added, removed := countChanges(diffs)

	var out strings.Builder
	out.WriteString(g.colorize("--- a/"+filename+"\n", color.FgRed))
	out.WriteString(g.colorize("+++ b/"+filename+"\n", color.FgGreen))
	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			out.WriteString(g.colorize(line+"\n", color.FgCyan))
		case strings.HasPrefix(line, "+"):
			out.WriteString(g.colorize(line+"\n", color.FgGreen))
		case strings.HasPrefix(line, "-"):
			out.WriteString(g.colorize(line+"\n", color.FgRed))
		case line != "":
			out.WriteString(line + "\n")
		}
	}

	return &Result{
		Unified:      out.String(),
		AddedLines:   added,
		RemovedLines: removed,
	}
}

// Summary returns a human-readable one-liner for the result.
func (r *Result) Summary() string {
	if r.IsBinary {
		return "Binary file changed"
	}
	if r.AddedLines == 0 && r.RemovedLines == 0 {
		return "No changes"
	}
	var parts []string
	if r.AddedLines > 0 {
		parts = append(parts, fmt.Sprintf("+%d lines", r.AddedLines))
	}
	if r.RemovedLines > 0 {
		parts = append(parts, fmt.Sprintf("-%d lines", r.RemovedLines))
	}
	return strings.Join(parts, ", ")
}

func countChanges(diffs []diffmatchpatch.Diff) (added, removed int) {
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += lineSpan(d.Text)
		case diffmatchpatch.DiffDelete:
			removed += lineSpan(d.Text)
		}
	}
	return
}

func lineSpan(text string) int {
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

func (g *Generator) colorize(text string, attr color.Attribute) string {
	if !g.colorEnabled {
		return text
	}
	return color.New(attr).Sprint(text)
}

// isBinary checks for null bytes in the first 8000 bytes.
func isBinary(content string) bool {
	limit := len(content)
	if limit > 8000 {
		limit = 8000
	}
	for i := 0; i < limit; i++ {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
