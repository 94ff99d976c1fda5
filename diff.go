// diff.go computes the line diff between a task's original text and its
// latest replacement, and renders it for the terminal.
package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffOp is the kind of a diff line.
type DiffOp int

const (
	DiffEqual DiffOp = iota
	DiffInsert
	DiffDelete
)

// DiffLine is one line of a line-level diff, newline included.
type DiffLine struct {
	Op   DiffOp
	Text string
}

// Diff is the computed difference between a task's original and one
// version of its replacement. Values are never modified after ComputeDiff
// returns them.
type Diff struct {
	Lines   []DiffLine
	Patch   string // unified patch text; empty when nothing changed
	Added   int    // inserted lines
	Deleted int    // deleted lines
}

// DiffFunc computes a diff between original and latest.
type DiffFunc func(original, latest string) *Diff

// HasChanges reports whether the diff contains any insert or delete.
func (d *Diff) HasChanges() bool {
	return d != nil && (d.Added > 0 || d.Deleted > 0)
}

// ComputeDiff produces a line-level diff. Lines are mapped to single runes
// first so the diff never splits a line.
func ComputeDiff(original, latest string) *Diff {
	d := &Diff{}
	if original == latest {
		for _, line := range splitLines(original) {
			d.Lines = append(d.Lines, DiffLine{Op: DiffEqual, Text: line})
		}
		return d
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(original, latest)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	for _, chunk := range diffs {
		op := DiffEqual
		switch chunk.Type {
		case diffmatchpatch.DiffInsert:
			op = DiffInsert
		case diffmatchpatch.DiffDelete:
			op = DiffDelete
		}
		for _, line := range splitLines(chunk.Text) {
			d.Lines = append(d.Lines, DiffLine{Op: op, Text: line})
			switch op {
			case DiffInsert:
				d.Added++
			case DiffDelete:
				d.Deleted++
			}
		}
	}
	d.Patch = dmp.PatchToText(dmp.PatchMake(original, diffs))
	return d
}

// recomputeDiff refreshes t's cached diff from its latest text. Tasks with
// no model output yet keep whatever diff they had.
func recomputeDiff(t *FixupTask, diff DiffFunc) *Diff {
	latest, ok := t.LatestText()
	if !ok {
		return t.Diff()
	}
	d := diff(t.Original(), latest)
	t.SetDiff(d)
	return d
}

var (
	diffAdd    = color.New(color.FgGreen).SprintFunc()
	diffDel    = color.New(color.FgRed).SprintFunc()
	diffHeader = color.New(color.Bold, color.FgYellow).SprintFunc()
)

// RenderDiff formats d for a terminal with contextLines of unchanged text
// around each change.
func RenderDiff(path string, d *Diff, contextLines int) string {
	var b strings.Builder
	if d == nil || !d.HasChanges() {
		b.WriteString(diffHeader(path) + " no changes\n")
		return b.String()
	}
	b.WriteString(diffHeader(path))
	b.WriteString(" " + diffAdd("+", d.Added) + " " + diffDel("-", d.Deleted) + "\n")

	keep := make([]bool, len(d.Lines))
	for i, l := range d.Lines {
		if l.Op == DiffEqual {
			continue
		}
		lo, hi := max(0, i-contextLines), min(len(d.Lines)-1, i+contextLines)
		for j := lo; j <= hi; j++ {
			keep[j] = true
		}
	}

	skipped := false
	for i, l := range d.Lines {
		if !keep[i] {
			skipped = true
			continue
		}
		if skipped {
			b.WriteString("  ...\n")
			skipped = false
		}
		text := strings.TrimSuffix(l.Text, "\n")
		switch l.Op {
		case DiffInsert:
			b.WriteString(diffAdd("+ "+text) + "\n")
		case DiffDelete:
			b.WriteString(diffDel("- "+text) + "\n")
		default:
			b.WriteString("  " + text + "\n")
		}
	}
	return b.String()
}

// splitLines splits s after each newline. A trailing newline does not
// produce an empty final line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
