// selection.go converts between line-based selections and byte offsets in
// file contents.
package main

import "fmt"

// lineRange returns the Range covering lines first..last (1-based,
// inclusive) of content, including the last line's newline.
func lineRange(content string, first, last int) (Range, error) {
	lines := splitLines(content)
	if first < 1 || last < first || last > len(lines) {
		return Range{}, fmt.Errorf("lines %d-%d out of range (file has %d lines)", first, last, len(lines))
	}
	return Range{
		Start: Position{Line: first - 1},
		End:   Position{Line: last - 1, Character: len(lines[last-1])},
	}, nil
}

// offsetOf converts pos to a byte offset in content. A character equal to
// the line's length (newline included) addresses the start of the next line.
func offsetOf(content string, pos Position) (int, error) {
	lines := splitLines(content)
	if pos.Line == len(lines) && pos.Character == 0 {
		return len(content), nil
	}
	if pos.Line < 0 || pos.Line >= len(lines) {
		return 0, fmt.Errorf("line %d out of range (file has %d lines)", pos.Line, len(lines))
	}
	if pos.Character < 0 || pos.Character > len(lines[pos.Line]) {
		return 0, fmt.Errorf("column %d out of range on line %d", pos.Character, pos.Line)
	}
	offset := 0
	for _, l := range lines[:pos.Line] {
		offset += len(l)
	}
	return offset + pos.Character, nil
}

func rangeOffsets(content string, rng Range) (int, int, error) {
	start, err := offsetOf(content, rng.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("range start: %w", err)
	}
	end, err := offsetOf(content, rng.End)
	if err != nil {
		return 0, 0, fmt.Errorf("range end: %w", err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("range %s ends before it starts", rng)
	}
	return start, end, nil
}

// rangeText returns the text of content within rng.
func rangeText(content string, rng Range) (string, error) {
	start, end, err := rangeOffsets(content, rng)
	if err != nil {
		return "", err
	}
	return content[start:end], nil
}
