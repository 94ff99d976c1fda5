// streamer.go drives a task through the model call: it streams the
// rewrite from Ollama into the task, keeps its diff current and settles it
// in ready or error.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const fixupSystemPrompt = `You rewrite code according to an instruction.
Reply with the rewritten code only: no explanation, no surrounding prose.
Keep the original indentation and style unless told otherwise.`

// generateClient is the part of *api.Client the streamer uses.
type generateClient interface {
	Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error
}

// Streamer runs model calls for tasks. A semaphore bounds how many run at
// once; the rest wait in StateWaiting.
type Streamer struct {
	client       generateClient
	store        *FixupStore
	logger       *Logger
	model        string
	timeout      time.Duration
	contextLines int // lines of file context sent on each side of the selection
	sem          chan struct{}

	// OnUpdate, when set, is called after every streamed chunk.
	OnUpdate func(t *FixupTask)
}

func NewStreamer(client generateClient, store *FixupStore, cfg Config, logger *Logger) *Streamer {
	return &Streamer{
		client:       client,
		store:        store,
		logger:       logger,
		model:        cfg.Model,
		timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		contextLines: cfg.ContextLines,
		sem:          make(chan struct{}, max(1, cfg.MaxConcurrent)),
	}
}

// Start runs the task in the background. Cancelling it through the store
// aborts the model call.
func (s *Streamer) Start(ctx context.Context, t *FixupTask) {
	ctx, cancel := context.WithCancel(ctx)
	s.store.SetCancelFunc(t.ID(), cancel)
	go func() {
		defer cancel()
		defer s.store.ClearCancelFunc(t.ID())
		if err := s.Run(ctx, t); err != nil {
			s.logger.LogError(err)
		}
	}()
}

// Run streams the rewrite for t and blocks until it is ready or failed.
// The timeout covers the model call only, not the wait for a free slot.
func (s *Streamer) Run(ctx context.Context, t *FixupTask) error {
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return s.fail(t, ctx.Err())
	}

	timeout := s.timeout
	if t.TimeoutSeconds > 0 {
		timeout = time.Duration(t.TimeoutSeconds) * time.Second
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := t.TrySetState(StateAsking); err != nil {
		return err
	}
	s.logger.LogProcessStep(t.ID(), "asking "+s.model)

	above, below := s.surroundingLines(t)
	stream := true
	req := &api.GenerateRequest{
		Model:   s.model,
		System:  fixupSystemPrompt,
		Prompt:  buildFixupPrompt(t, above, below),
		Stream:  &stream,
		Options: map[string]any{"temperature": 0.2},
	}

	var buf strings.Builder
	err := s.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		if resp.Response == "" {
			return nil
		}
		buf.WriteString(resp.Response)
		t.SetInProgressReplacement(buf.String())
		recomputeDiff(t, s.store.diff)
		if s.OnUpdate != nil {
			s.OnUpdate(t)
		}
		return nil
	})
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		return s.fail(t, fmt.Errorf("ollama generate: %w", err))
	}

	if err := t.SetReplacement(stripMarkdownFences(buf.String())); err != nil {
		return s.fail(t, err)
	}
	added, deleted := 0, 0
	if d := recomputeDiff(t, s.store.diff); d != nil {
		added, deleted = d.Added, d.Deleted
	}
	if err := t.TrySetState(StateReady); err != nil {
		return err
	}
	s.logger.LogProcessStep(t.ID(), fmt.Sprintf("ready (+%d -%d)", added, deleted))
	return nil
}

func (s *Streamer) fail(t *FixupTask, err error) error {
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "model call timed out"
	}
	if ferr := t.Fail(msg); ferr != nil {
		s.logger.LogError(ferr)
	}
	s.logger.LogProcessStep(t.ID(), "error: "+msg)
	return fmt.Errorf("task %s: %w", t.ID(), err)
}

// surroundingLines returns up to s.contextLines lines of the task's file on each
// side of its selection. An unreadable file or a stale range yields no
// context; the selection alone is still enough to ask.
func (s *Streamer) surroundingLines(t *FixupTask) (above, below string) {
	f := t.File()
	if s.contextLines <= 0 || f == nil {
		return "", ""
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		s.logger.Logf("Task %s: no file context: %v", t.ID(), err)
		return "", ""
	}
	content := string(data)
	start, end, err := rangeOffsets(content, t.SelectionRange())
	if err != nil {
		s.logger.Logf("Task %s: no file context: %v", t.ID(), err)
		return "", ""
	}
	before := splitLines(content[:start])
	after := splitLines(content[end:])
	above = strings.Join(before[max(0, len(before)-s.contextLines):], "")
	below = strings.Join(after[:min(len(after), s.contextLines)], "")
	return above, below
}

func buildFixupPrompt(t *FixupTask, above, below string) string {
	lang := ""
	if f := t.File(); f != nil {
		lang = strings.TrimPrefix(filepath.Ext(f.Path), ".")
	}
	var b strings.Builder
	b.WriteString("Instruction: ")
	b.WriteString(t.Instruction())
	b.WriteString("\n")
	writeFenced(&b, "Context before the code (do not repeat it):", lang, above)
	writeFenced(&b, "Code:", lang, t.Original())
	writeFenced(&b, "Context after the code (do not repeat it):", lang, below)
	return b.String()
}

func writeFenced(b *strings.Builder, label, lang, text string) {
	if text == "" && label != "Code:" {
		return
	}
	b.WriteString("\n" + label + "\n```" + lang + "\n")
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
}

// stripMarkdownFences keeps only the body of a leading ``` fence, which
// models tend to add despite the system prompt. Anything after the closing
// fence (usually an explanation) is dropped.
func stripMarkdownFences(s string) string {
	trimmed := strings.TrimLeft(s, " \t\r\n")
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	i := strings.Index(trimmed, "\n")
	if i < 0 {
		return ""
	}
	var body strings.Builder
	for _, line := range splitLines(trimmed[i+1:]) {
		if strings.TrimSpace(line) == "```" {
			break
		}
		body.WriteString(line)
	}
	return body.String()
}
