// mcp_server.go exposes the fixup task collection as MCP tools over stdio.
// Every handler goes through the same store and typing UI as the terminal.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ollama/ollama/api"
)

// ollamaClient is everything the server needs from *api.Client.
type ollamaClient interface {
	generateClient
	chatClient
	List(ctx context.Context) (*api.ListResponse, error)
}

type fixupServer struct {
	baseCtx  context.Context // outlives individual tool calls; streams run under it
	client   ollamaClient
	store    *FixupStore
	streamer *Streamer
	cfg      Config
	logger   *Logger
}

func newFixupServer(ctx context.Context, client ollamaClient, cfg Config, logger *Logger) *fixupServer {
	store := NewFixupStore()
	return &fixupServer{
		baseCtx:  ctx,
		client:   client,
		store:    store,
		streamer: NewStreamer(client, store, cfg, logger),
		cfg:      cfg,
		logger:   logger,
	}
}

func (fs *fixupServer) mcpServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "fixup", Version: version}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "submit_fixup",
		Description: "Ask the local model to rewrite lines of a file. Returns a task id to poll with check_fixups. An instruction starting with /chat is answered directly instead.",
	}, fs.submitFixup)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_fixups",
		Description: "Poll fixup task states. Cheap: no replacement text is returned.",
	}, fs.checkFixups)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_fixup_result",
		Description: "Fetch replacement text and unified patch for fixup tasks.",
	}, fs.getFixupResult)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "cancel_fixups",
		Description: "Abort and discard fixup tasks that have not been applied.",
	}, fs.cancelFixups)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_models",
		Description: "List models available in the local Ollama instance.",
	}, fs.listModels)
	return server
}

func (fs *fixupServer) submitFixup(ctx context.Context, _ *mcp.CallToolRequest, args SubmitFixupArgs) (*mcp.CallToolResult, SubmitFixupOutput, error) {
	host := newScriptedHost(args)
	chat := &capturedChat{}
	ui := NewFixupTypingUI(host, fs.store, chat, fs.logger)

	task, err := ui.Show(ctx)
	if err != nil {
		return nil, SubmitFixupOutput{}, err
	}

	var out SubmitFixupOutput
	switch {
	case task != nil:
		task.TimeoutSeconds = args.TimeoutSeconds
		fs.streamer.Start(fs.baseCtx, task)
		out.TaskID = task.ID()
	case chat.dispatched:
		answer, err := askChat(ctx, fs.client, fs.cfg.Model, chat.text, fs.timeout())
		if err != nil {
			return nil, SubmitFixupOutput{}, err
		}
		out.ChatResponse = answer
	case host.warning != "":
		out.Warning = host.warning
	case args.File == "":
		out.Warning = "No file given"
	default:
		out.Warning = "Empty instruction, nothing to do"
	}
	return nil, out, nil
}

func (fs *fixupServer) checkFixups(_ context.Context, _ *mcp.CallToolRequest, args CheckFixupsArgs) (*mcp.CallToolResult, CheckFixupsOutput, error) {
	summary, statuses := fs.store.Summary(args.TaskIDs, args.File)
	return nil, CheckFixupsOutput{Summary: summary, Tasks: statuses}, nil
}

func (fs *fixupServer) getFixupResult(_ context.Context, _ *mcp.CallToolRequest, args GetFixupResultArgs) (*mcp.CallToolResult, GetFixupResultOutput, error) {
	if len(args.TaskIDs) == 0 {
		return nil, GetFixupResultOutput{}, fmt.Errorf("task_ids is required")
	}
	return nil, GetFixupResultOutput{Results: fs.store.Results(args.TaskIDs)}, nil
}

func (fs *fixupServer) cancelFixups(_ context.Context, _ *mcp.CallToolRequest, args CancelFixupsArgs) (*mcp.CallToolResult, CancelFixupsOutput, error) {
	n := fs.store.Cancel(args.TaskIDs, args.File)
	fs.logger.Logf("Cancelled %d fixup task(s)", n)
	return nil, CancelFixupsOutput{Cancelled: n}, nil
}

func (fs *fixupServer) listModels(ctx context.Context, _ *mcp.CallToolRequest, _ ListModelsArgs) (*mcp.CallToolResult, ListModelsOutput, error) {
	resp, err := fs.client.List(ctx)
	if err != nil {
		return nil, ListModelsOutput{}, fmt.Errorf("failed to list models: %w", err)
	}
	return nil, ListModelsOutput{Models: modelInfos(resp)}, nil
}

func (fs *fixupServer) timeout() time.Duration {
	return time.Duration(fs.cfg.TimeoutSeconds) * time.Second
}
