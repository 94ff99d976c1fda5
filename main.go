// fixup rewrites selected lines of a file with a local Ollama model, either
// interactively from the terminal or as MCP tools for an agent.
package main

import "os"

const version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
