package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/ollama/ollama/api"
	"github.com/spf13/cobra"
)

var (
	editLinesFlag string
	editApplyFlag bool
	editQuietFlag bool
)

var editCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Select lines of a file and have the model rewrite them",
	Long: `Prompts for an instruction, streams the model's rewrite of the selected
lines and prints the diff. Start the instruction with /chat to ask a question
instead of editing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := resolveConfig()
		logger := NewLogger(cfg.LogFile, cfg.JSONLogs)
		defer logger.Close()

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		first, last, err := parseLineSpec(editLinesFlag)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		client, err := api.ClientFromEnvironment()
		if err != nil {
			return fmt.Errorf("could not create ollama client: %w", err)
		}

		out := cmd.OutOrStdout()
		store := NewFixupStore()
		host := NewTerminalHost(path, first, last, os.Stdin, out)
		chat := &terminalChat{client: client, model: cfg.Model, timeout: timeoutOf(cfg), out: out, logger: logger}
		ui := NewFixupTypingUI(host, store, chat, logger)

		task, err := ui.Show(ctx)
		if err != nil || task == nil {
			return err
		}

		streamer := NewStreamer(client, store, cfg, logger)
		if !editQuietFlag {
			streamer.OnUpdate = progressPrinter(out)
		}
		if err := streamer.Run(ctx, task); err != nil {
			return err
		}
		fmt.Fprint(out, "\r\033[K")
		fmt.Fprint(out, RenderDiff(task.File().Path, task.Diff(), cfg.ContextLines))

		if !editApplyFlag {
			fmt.Fprintln(out, color.HiBlackString("Re-run with --apply to write the change."))
			return nil
		}
		if err := ApplyTask(task, logger); err != nil {
			return err
		}
		fmt.Fprintln(out, color.GreenString("Applied to %s", task.File().Path))
		return nil
	},
}

func init() {
	editCmd.Flags().StringVarP(&editLinesFlag, "lines", "l", "", "Lines to select, e.g. 10-24 or 7 (1-based, inclusive)")
	editCmd.Flags().BoolVar(&editApplyFlag, "apply", false, "Write the replacement to the file when ready")
	editCmd.Flags().BoolVarP(&editQuietFlag, "quiet", "q", false, "Do not show streaming progress")
}

// parseLineSpec parses "a-b" or "a". An empty spec selects nothing.
func parseLineSpec(spec string) (int, int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0, nil
	}
	lo, hi, found := strings.Cut(spec, "-")
	first, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil || first < 1 {
		return 0, 0, fmt.Errorf("invalid --lines %q", spec)
	}
	if !found {
		return first, first, nil
	}
	last, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil || last < first {
		return 0, 0, fmt.Errorf("invalid --lines %q", spec)
	}
	return first, last, nil
}

func progressPrinter(out io.Writer) func(*FixupTask) {
	return func(t *FixupTask) {
		text, _ := t.InProgressReplacement()
		d := t.Diff()
		added, deleted := 0, 0
		if d != nil {
			added, deleted = d.Added, d.Deleted
		}
		fmt.Fprintf(out, "\r\033[K%s %d chars, %s %s",
			color.CyanString(string(t.State())), len(text), diffAdd("+", added), diffDel("-", deleted))
	}
}

func timeoutOf(cfg Config) time.Duration {
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}
