// chat.go answers /chat requests with a one-shot Ollama chat.
package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const chatSystemPrompt = "You are a concise programming assistant. Answer the question directly."

// chatClient is the part of *api.Client the chat flow uses.
type chatClient interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// askChat sends question to the model and returns the whole answer.
func askChat(ctx context.Context, client chatClient, model, question string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if question == "" {
		question = "What can you help me with?"
	}
	stream := false
	req := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "system", Content: chatSystemPrompt},
			{Role: "user", Content: question},
		},
		Stream: &stream,
	}
	var answer strings.Builder
	err := client.Chat(ctx, req, func(resp api.ChatResponse) error {
		answer.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return strings.TrimSpace(answer.String()), nil
}

// terminalChat prints chat answers to out. The typing UI does not wait on
// the answer, but a one-shot CLI would exit before it arrives, so the call
// completes before DispatchChat returns.
type terminalChat struct {
	client  chatClient
	model   string
	timeout time.Duration
	out     io.Writer
	logger  *Logger
}

func (c *terminalChat) DispatchChat(ctx context.Context, text string) {
	answer, err := askChat(ctx, c.client, c.model, text, c.timeout)
	if err != nil {
		c.logger.LogError(err)
		fmt.Fprintln(c.out, diffDel("chat failed: "+err.Error()))
		return
	}
	fmt.Fprintln(c.out, answer)
}

// capturedChat records the chat text so the MCP handler can answer it in
// the tool result.
type capturedChat struct {
	dispatched bool
	text       string
}

func (c *capturedChat) DispatchChat(_ context.Context, text string) {
	c.dispatched = true
	c.text = text
}
