package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectionFixture() *Selection {
	return &Selection{
		File:  &FixupFile{Path: "src/app.go"},
		Range: Range{Start: Position{Line: 4}, End: Position{Line: 9, Character: 2}},
	}
}

func newUI(host *fakeHost) (*FixupTypingUI, *fakeFactory, *fakeChat) {
	factory := &fakeFactory{}
	chat := &fakeChat{}
	return NewFixupTypingUI(host, factory, chat, nil), factory, chat
}

func TestShowNoActiveEditor(t *testing.T) {
	host := &fakeHost{}
	ui, factory, chat := newUI(host)

	task, err := ui.Show(context.Background())
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Empty(t, host.warnings)
	assert.Zero(t, host.prompted)
	assert.Empty(t, factory.calls)
	assert.Empty(t, chat.texts)
}

func TestShowEmptySelectionWarns(t *testing.T) {
	host := &fakeHost{selection: &Selection{File: &FixupFile{Path: "a.go"}}}
	ui, factory, _ := newUI(host)

	task, err := ui.Show(context.Background())
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Equal(t, []string{"Select some text to fix up"}, host.warnings)
	assert.Zero(t, host.prompted)
	assert.Empty(t, factory.calls)
}

func TestShowCancelledPrompt(t *testing.T) {
	host := &fakeHost{selection: selectionFixture(), text: "x", promptErr: ErrPromptCancelled}
	ui, factory, chat := newUI(host)

	task, err := ui.Show(context.Background())
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Equal(t, 1, host.prompted)
	assert.Empty(t, factory.calls)
	assert.Empty(t, chat.texts)
}

func TestShowBlankInstruction(t *testing.T) {
	for _, instruction := range []string{"", "   ", "\n\t "} {
		host := &fakeHost{selection: selectionFixture(), text: "x", instruction: instruction}
		ui, factory, chat := newUI(host)

		task, err := ui.Show(context.Background())
		require.NoError(t, err)
		assert.Nil(t, task, "instruction %q", instruction)
		assert.Empty(t, factory.calls)
		assert.Empty(t, chat.texts)
	}
}

func TestShowChatRedirect(t *testing.T) {
	host := &fakeHost{selection: selectionFixture(), text: "x", instruction: "/chat explain this"}
	ui, factory, chat := newUI(host)

	task, err := ui.Show(context.Background())
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Equal(t, []string{"explain this"}, chat.texts)
	assert.Empty(t, factory.calls)
}

func TestShowCreatesTask(t *testing.T) {
	sel := selectionFixture()
	host := &fakeHost{selection: sel, text: "func f() {}\n", instruction: "make this async"}
	ui, factory, chat := newUI(host)

	task, err := ui.Show(context.Background())
	require.NoError(t, err)
	require.NotNil(t, task)
	require.Len(t, factory.calls, 1)
	call := factory.calls[0]
	assert.Same(t, sel.File, call.file)
	assert.Equal(t, "make this async", call.instruction)
	assert.Equal(t, "func f() {}\n", call.selectedText)
	assert.Equal(t, sel.Range, call.rng)
	assert.Empty(t, chat.texts)
	assert.Equal(t, StateWaiting, task.State())
}

func TestShowTrimsInstruction(t *testing.T) {
	host := &fakeHost{selection: selectionFixture(), text: "x", instruction: "  add docs \n"}
	ui, factory, _ := newUI(host)

	_, err := ui.Show(context.Background())
	require.NoError(t, err)
	require.Len(t, factory.calls, 1)
	assert.Equal(t, "add docs", factory.calls[0].instruction)
}

func TestShowWithStoreAsFactory(t *testing.T) {
	store := NewFixupStore()
	host := &fakeHost{selection: selectionFixture(), text: "x\n", instruction: "rename"}
	ui := NewFixupTypingUI(host, store, &fakeChat{}, nil)

	task, err := ui.Show(context.Background())
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Same(t, task, store.Get(task.ID()))
}

func TestShowHostFailure(t *testing.T) {
	host := &fakeHost{selectionErr: errors.New("editor crashed")}
	ui, factory, _ := newUI(host)

	task, err := ui.Show(context.Background())
	require.Error(t, err)
	assert.Nil(t, task)
	assert.Empty(t, factory.calls)
}

func TestParseChatCommand(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		isChat bool
	}{
		{"/chat explain this", "explain this", true},
		{"/chat", "", true},
		{"/chat   ", "", true},
		{"  /chat why?", "why?", true},
		{"/chat\nwhat does\nthis do", "what does\nthis do", true},
		{"/chat\texplain", "explain", true},
		{"/chatty explain", "", false},
		{"/Chat explain", "", false},
		{"please /chat explain", "", false},
		{"make this async", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := parseChatCommand(tt.in)
		assert.Equal(t, tt.isChat, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
