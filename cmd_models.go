package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available in the local Ollama instance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return fmt.Errorf("could not create ollama client: %w", err)
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		resp, err := client.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list local models: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, m := range modelInfos(resp) {
			fmt.Fprintf(out, "%-32s %-8s %-8s %s\n", m.Name, m.ParameterSize, m.QuantizationLevel, m.Family)
		}
		return nil
	},
}
