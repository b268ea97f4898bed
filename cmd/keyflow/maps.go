package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dshills/keyflow/internal/input/command"
	"github.com/dshills/keyflow/internal/input/remap"
)

func newMapsCmd(opts *rootOptions) *cobra.Command {
	var modeName string

	cmd := &cobra.Command{
		Use:   "maps",
		Short: "List configured mappings and commands",
		Long: `List key mappings per mode in :map style, followed by the command
signatures of each matcher.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var only []remap.Mode
			if modeName != "" {
				mode, err := remap.ParseMode(modeName)
				if err != nil {
					return err
				}
				only = []remap.Mode{mode}
			}

			s, closer, err := opts.open(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()
			defer s.close()

			printMaps(cmd.OutOrStdout(), s, only)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modeName, "mode", "m", "", "only list this mode")
	return cmd
}

func printMaps(w io.Writer, s *session, only []remap.Mode) {
	modes := only
	if modes == nil {
		modes = remap.Modes()
	}

	n := 0
	for _, mode := range modes {
		n += s.target.Table.Len(mode)
	}
	fmt.Fprintf(w, "Mappings (%d):\n", n)
	for _, mode := range modes {
		for _, e := range s.target.Table.Entries(mode) {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	var matcherModes []remap.Mode
	for mode := range s.target.ModeMatchers {
		if only == nil || mode == only[0] {
			matcherModes = append(matcherModes, mode)
		}
	}
	sort.Slice(matcherModes, func(i, j int) bool { return matcherModes[i] < matcherModes[j] })

	type group struct {
		label   string
		matcher *command.Matcher
	}
	var groups []group
	if only == nil || len(matcherModes) == 0 {
		groups = append(groups, group{"all", s.target.Matcher})
	}
	for _, mode := range matcherModes {
		groups = append(groups, group{mode.String(), s.target.ModeMatchers[mode]})
	}

	n = 0
	for _, g := range groups {
		n += g.matcher.Len()
	}
	fmt.Fprintf(w, "Commands (%d):\n", n)
	for _, g := range groups {
		printSignatures(w, g.label, g.matcher)
	}
}

func printSignatures(w io.Writer, label string, m *command.Matcher) {
	for _, sig := range m.Signatures() {
		fmt.Fprintf(w, "  %-6s %s\n", label, sig)
	}
}
