package main

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ollama/ollama/api"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as an MCP server over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := resolveConfig()
		logger := NewLogger(cfg.LogFile, cfg.JSONLogs)
		defer logger.Close()

		client, err := api.ClientFromEnvironment()
		if err != nil {
			return fmt.Errorf("could not create ollama client: %w", err)
		}

		ctx := cmd.Context()
		fs := newFixupServer(ctx, client, cfg, logger)
		logger.Logf("fixup %s serving MCP on stdio (model %s, max %d concurrent)", version, cfg.Model, cfg.MaxConcurrent)
		if err := fs.mcpServer().Run(ctx, &mcp.StdioTransport{}); err != nil {
			logger.LogError(err)
			return err
		}
		return nil
	},
}
