package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/keyflow/internal/input/key"
	"github.com/dshills/keyflow/internal/input/pipeline"
	"github.com/dshills/keyflow/internal/input/remap"
)

func newTraceCmd(opts *rootOptions) *cobra.Command {
	var (
		modeName string
		noFlush  bool
	)

	cmd := &cobra.Command{
		Use:   "trace KEYS...",
		Short: "Feed a key string through the pipeline and print each step",
		Long: `Feed keys one at a time through remapping, count parsing and command
matching, printing what each keystroke produced. Arguments use Vim key
notation and are concatenated.

When the input ends with keys still buffered, a timeout flush is
simulated unless --no-flush is given.

Examples:
  keyflow trace 3dd
  keyflow trace --mode insert "ajk"
  keyflow trace -c keys.toml "<C-w>" gg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := remap.ParseMode(modeName)
			if err != nil {
				return err
			}

			var keys key.Sequence
			for _, arg := range args {
				seq, err := key.ParseSequence(arg)
				if err != nil {
					return err
				}
				keys = keys.Concat(seq)
			}

			s, closer, err := opts.open(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()
			defer s.close()

			s.mode = mode
			return runTrace(cmd.OutOrStdout(), s, keys, !noFlush)
		},
	}

	cmd.Flags().StringVarP(&modeName, "mode", "m", "normal", "starting mode")
	cmd.Flags().BoolVar(&noFlush, "no-flush", false, "leave buffered keys pending at the end")
	return cmd
}

func runTrace(w io.Writer, s *session, keys key.Sequence, flush bool) error {
	for _, ev := range keys {
		mode := s.mode
		printStep(w, ev.VimString(), mode, s.handleKey(ev))
	}
	if flush && s.waiting() {
		mode := s.mode
		printStep(w, "<flush>", mode, s.flush())
	}
	if pending := s.driver.Pending(s.mode); len(pending) > 0 {
		fmt.Fprintf(w, "pending: %s\n", pending.VimString())
	}
	if n, ok := s.driver.PendingCount(); ok {
		fmt.Fprintf(w, "pending count: %d\n", n)
	}
	fmt.Fprintf(w, "mode: %s\n", s.mode)
	return nil
}

func printStep(w io.Writer, label string, mode remap.Mode, outs []pipeline.Output) {
	for _, line := range stepLines(label, mode, outs) {
		fmt.Fprintln(w, line)
	}
}

// stepLines formats the outputs of one key, each tagged with the mode it
// was handled in. mode tags a step with no outputs.
func stepLines(label string, mode remap.Mode, outs []pipeline.Output) []string {
	if len(outs) == 0 {
		return []string{fmt.Sprintf("%-8s %-2s -", label, mode.Letter())}
	}
	lines := make([]string, len(outs))
	for i, o := range outs {
		if i > 0 {
			label = ""
		}
		lines[i] = fmt.Sprintf("%-8s %-2s %s", label, o.Mode.Letter(), describe(o))
	}
	return lines
}

func describe(o pipeline.Output) string {
	if o.Kind == pipeline.Pending && o.Count > 0 {
		return fmt.Sprintf("%s (count %d)", o, o.Count)
	}
	return o.String()
}
