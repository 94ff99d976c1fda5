package main

import (
	"github.com/spf13/cobra"
)

var (
	modelFlag   string
	timeoutFlag int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fixup",
	Short: "Rewrite selected code with a local model",
	Long: `fixup sends a selected range of a file and an instruction to a local
Ollama model, streams back the rewrite and shows the diff.

  edit    - interactive: select lines, type an instruction
  serve   - run as an MCP server over stdio
  models  - list local models`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Ollama model (default $FIXUP_MODEL or "+defaultModel+")")
	rootCmd.PersistentFlags().IntVar(&timeoutFlag, "timeout", 0, "Model call timeout in seconds (default $FIXUP_TIMEOUT_SECONDS)")

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(modelsCmd)
}

// resolveConfig loads the environment config and applies global flags.
func resolveConfig() Config {
	cfg := LoadConfig()
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if timeoutFlag > 0 {
		cfg.TimeoutSeconds = timeoutFlag
	}
	return cfg
}
