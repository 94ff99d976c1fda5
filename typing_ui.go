// typing_ui.go turns the user's selection plus a typed instruction into a
// new fixup task, a chat request, or nothing.
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrPromptCancelled is returned by EditorHost.PromptForInstruction when the
// user dismisses the prompt.
var ErrPromptCancelled = errors.New("instruction prompt cancelled")

const (
	emptySelectionWarning = "Select some text to fix up"
	chatMarker            = "/chat"
)

// Selection is the active editor's file and selected span.
type Selection struct {
	File  *FixupFile
	Range Range
}

// PromptOptions configures the instruction prompt.
type PromptOptions struct {
	Title       string
	Placeholder string
}

// EditorHost is the editor capability the typing UI needs.
type EditorHost interface {
	// ActiveSelection returns nil when there is no active editor.
	ActiveSelection(ctx context.Context) (*Selection, error)
	SelectionText(ctx context.Context, sel Selection) (string, error)
	// PromptForInstruction returns ErrPromptCancelled when dismissed.
	PromptForInstruction(ctx context.Context, opts PromptOptions) (string, error)
	ShowWarning(ctx context.Context, message string) error
}

// ChatDispatcher hands free text to the chat flow. The typing UI does not
// wait for or inspect the outcome.
type ChatDispatcher interface {
	DispatchChat(ctx context.Context, text string)
}

// TaskFactory creates and registers fixup tasks.
type TaskFactory interface {
	CreateTask(file *FixupFile, instruction, selectedText string, rng Range) *FixupTask
}

// FixupTypingUI collects an instruction for the current selection. It holds
// no tasks; every created task goes through the factory.
//
// Show is not re-entrant safe: two overlapping calls may both create tasks.
// Debouncing belongs to whatever binds Show to a command.
type FixupTypingUI struct {
	host    EditorHost
	factory TaskFactory
	chat    ChatDispatcher
	logger  *Logger
}

func NewFixupTypingUI(host EditorHost, factory TaskFactory, chat ChatDispatcher, logger *Logger) *FixupTypingUI {
	return &FixupTypingUI{host: host, factory: factory, chat: chat, logger: logger}
}

// Show runs the instruction flow and returns the created task, or nil when
// the user gave up, nothing was selected, or the instruction went to chat.
// Those outcomes are not errors; an error means the host itself failed.
func (ui *FixupTypingUI) Show(ctx context.Context) (*FixupTask, error) {
	sel, err := ui.host.ActiveSelection(ctx)
	if err != nil {
		return nil, ui.hostError("read active selection", err)
	}
	if sel == nil {
		return nil, nil
	}
	if sel.Range.IsEmpty() {
		if err := ui.host.ShowWarning(ctx, emptySelectionWarning); err != nil {
			return nil, ui.hostError("show warning", err)
		}
		return nil, nil
	}

	selected, err := ui.host.SelectionText(ctx, *sel)
	if err != nil {
		return nil, ui.hostError("read selection text", err)
	}

	instruction, err := ui.host.PromptForInstruction(ctx, PromptOptions{
		Title:       "Edit selected code",
		Placeholder: "Instructions (e.g. 'make this async'), or /chat <question>",
	})
	if errors.Is(err, ErrPromptCancelled) {
		ui.logger.Log("Fixup prompt dismissed")
		return nil, nil
	}
	if err != nil {
		return nil, ui.hostError("prompt for instruction", err)
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, nil
	}

	if question, ok := parseChatCommand(instruction); ok {
		ui.logger.Logf("Fixup instruction redirected to chat (%d chars)", len(question))
		ui.chat.DispatchChat(ctx, question)
		return nil, nil
	}

	task := ui.factory.CreateTask(sel.File, instruction, selected, sel.Range)
	ui.logger.LogProcessStep(task.ID(), fmt.Sprintf("created for %s %s", pathOf(sel.File), sel.Range))
	return task, nil
}

func (ui *FixupTypingUI) hostError(op string, err error) error {
	err = fmt.Errorf("fixup: %s: %w", op, err)
	ui.logger.LogError(err)
	return err
}

// parseChatCommand reports whether instruction is a chat request: it starts
// with /chat followed by the end of input or whitespace. The remainder,
// trimmed, is the chat text and may be empty or span several lines.
func parseChatCommand(instruction string) (string, bool) {
	s := strings.TrimLeftFunc(instruction, unicode.IsSpace)
	if !strings.HasPrefix(s, chatMarker) {
		return "", false
	}
	rest := s[len(chatMarker):]
	if rest != "" {
		if r, _ := utf8.DecodeRuneInString(rest); !unicode.IsSpace(r) {
			return "", false
		}
	}
	return strings.TrimSpace(rest), true
}

func pathOf(f *FixupFile) string {
	if f == nil {
		return "<unknown>"
	}
	return f.Path
}
