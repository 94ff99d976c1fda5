package main

import (
	"context"
	"sync"

	"github.com/ollama/ollama/api"
)

// fakeHost is a scripted EditorHost that records what the typing UI asked.
type fakeHost struct {
	selection    *Selection
	selectionErr error
	text         string
	instruction  string
	promptErr    error

	warnings     []string
	prompted     int
	textRequests int
}

func (h *fakeHost) ActiveSelection(context.Context) (*Selection, error) {
	return h.selection, h.selectionErr
}

func (h *fakeHost) SelectionText(context.Context, Selection) (string, error) {
	h.textRequests++
	return h.text, nil
}

func (h *fakeHost) PromptForInstruction(context.Context, PromptOptions) (string, error) {
	h.prompted++
	return h.instruction, h.promptErr
}

func (h *fakeHost) ShowWarning(_ context.Context, message string) error {
	h.warnings = append(h.warnings, message)
	return nil
}

type createCall struct {
	file         *FixupFile
	instruction  string
	selectedText string
	rng          Range
}

// fakeFactory records CreateTask calls and returns plain tasks.
type fakeFactory struct {
	calls []createCall
}

func (f *fakeFactory) CreateTask(file *FixupFile, instruction, selectedText string, rng Range) *FixupTask {
	f.calls = append(f.calls, createCall{file, instruction, selectedText, rng})
	return NewFixupTask(file, instruction, selectedText, rng)
}

type fakeChat struct {
	texts []string
}

func (c *fakeChat) DispatchChat(_ context.Context, text string) {
	c.texts = append(c.texts, text)
}

// fakeOllama streams canned chunks. If block is set, Generate waits for it
// to close (or the context to end) after the chunks.
type fakeOllama struct {
	mu         sync.Mutex
	chunks     []string
	err        error
	block      chan struct{}
	chatAnswer string
	models     *api.ListResponse

	generateReqs []*api.GenerateRequest
	chatReqs     []*api.ChatRequest
}

func (f *fakeOllama) Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error {
	f.mu.Lock()
	f.generateReqs = append(f.generateReqs, req)
	f.mu.Unlock()

	for _, c := range f.chunks {
		if err := fn(api.GenerateResponse{Response: c}); err != nil {
			return err
		}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.err != nil {
		return f.err
	}
	return fn(api.GenerateResponse{Done: true})
}

func (f *fakeOllama) Chat(_ context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error {
	f.mu.Lock()
	f.chatReqs = append(f.chatReqs, req)
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return fn(api.ChatResponse{Message: api.Message{Role: "assistant", Content: f.chatAnswer}, Done: true})
}

func (f *fakeOllama) List(context.Context) (*api.ListResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.models, nil
}

func (f *fakeOllama) generateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.generateReqs)
}
