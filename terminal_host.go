// terminal_host.go implements EditorHost for the command line: the
// "editor" is a file path plus a line range, the prompt is a readline.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

// TerminalHost selects lines first..last (1-based, inclusive) of path.
// An empty path means no active editor; first == 0 means nothing selected.
type TerminalHost struct {
	path        string
	first, last int
	in          io.Reader
	out         io.Writer
}

func NewTerminalHost(path string, first, last int, in io.Reader, out io.Writer) *TerminalHost {
	return &TerminalHost{path: path, first: first, last: last, in: in, out: out}
}

func (h *TerminalHost) ActiveSelection(_ context.Context) (*Selection, error) {
	if h.path == "" {
		return nil, nil
	}
	sel := &Selection{File: &FixupFile{Path: h.path}}
	if h.first == 0 {
		return sel, nil
	}
	content, err := os.ReadFile(h.path)
	if err != nil {
		return nil, err
	}
	rng, err := lineRange(string(content), h.first, h.last)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.path, err)
	}
	sel.Range = rng
	return sel, nil
}

func (h *TerminalHost) SelectionText(_ context.Context, sel Selection) (string, error) {
	content, err := os.ReadFile(sel.File.Path)
	if err != nil {
		return "", err
	}
	return rangeText(string(content), sel.Range)
}

func (h *TerminalHost) PromptForInstruction(_ context.Context, opts PromptOptions) (string, error) {
	fmt.Fprintln(h.out, color.HiBlackString(opts.Placeholder))
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          color.CyanString(opts.Title) + " > ",
		InterruptPrompt: "^C",
		EOFPrompt:       "",
		Stdin:           readline.NewCancelableStdin(h.in),
		Stdout:          h.out,
		Stderr:          h.out,
	})
	if err != nil {
		return "", fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrPromptCancelled
	}
	return line, err
}

func (h *TerminalHost) ShowWarning(_ context.Context, message string) error {
	_, err := fmt.Fprintln(h.out, color.YellowString("warning: %s", message))
	return err
}

// scriptedHost is the non-interactive host behind submit_fixup: the
// selection and instruction come from the tool call, and a warning is
// captured for the tool result instead of being shown.
type scriptedHost struct {
	*TerminalHost
	instruction string
	warning     string
}

// newScriptedHost treats a missing end_line as a single-line selection.
func newScriptedHost(args SubmitFixupArgs) *scriptedHost {
	last := args.EndLine
	if last == 0 {
		last = args.StartLine
	}
	return &scriptedHost{
		TerminalHost: NewTerminalHost(args.File, args.StartLine, last, nil, io.Discard),
		instruction:  args.Instruction,
	}
}

func (h *scriptedHost) PromptForInstruction(_ context.Context, _ PromptOptions) (string, error) {
	return h.instruction, nil
}

func (h *scriptedHost) ShowWarning(_ context.Context, message string) error {
	h.warning = message
	return nil
}
