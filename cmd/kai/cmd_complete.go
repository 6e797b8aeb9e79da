package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/dhamidi/kai/python/complete"
	"github.com/dhamidi/kai/python/engine"
	"github.com/dhamidi/kai/python/parser"
)

func newCompleteCmd() *cobra.Command {
	var fuzzy bool
	var caseSensitive bool
	var keepDuplicates bool
	var searchPath []string

	cmd := &cobra.Command{
		Use:   "complete <file>:<line>:<column>",
		Short: "Print completion candidates at a position",
		Long: `Complete prints the ranked completion candidates at the given
position. Line is 1-based, column is a 0-based byte offset.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, line, col, err := parseLocation(args[0])
			if err != nil {
				return err
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}

			lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
			eng := engine.New(lines, engine.Options{
				Path:       path,
				SearchPath: searchPath,
			})
			completer := eng.Completer(complete.Settings{
				CaseInsensitive: !caseSensitive,
				NoDuplicates:    !keepDuplicates,
			})

			pos := parser.Position{Line: line, Column: col}
			for _, cand := range completer.Complete(lines, pos, fuzzy) {
				if cand.Detail != "" {
					fmt.Printf("%s\t%s\t%s\n", cand.Name, cand.Kind, cand.Detail)
				} else {
					fmt.Printf("%s\t%s\n", cand.Name, cand.Kind)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "use subsequence matching instead of prefix matching")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "match candidate case exactly")
	cmd.Flags().BoolVar(&keepDuplicates, "dups", false, "keep identically-named candidates from different origins")
	cmd.Flags().StringSliceVar(&searchPath, "search-path", nil, "additional import roots")

	return cmd
}

// parseLocation splits file:line:column, leaving colons in the file part
// intact by splitting from the right.
func parseLocation(arg string) (string, int, int, error) {
	lastColon := strings.LastIndexByte(arg, ':')
	if lastColon < 0 {
		return "", 0, 0, errors.Newf("expected <file>:<line>:<column>, got %q", arg)
	}
	col, err := strconv.Atoi(arg[lastColon+1:])
	if err != nil {
		return "", 0, 0, errors.Wrapf(err, "column in %q", arg)
	}
	rest := arg[:lastColon]
	prevColon := strings.LastIndexByte(rest, ':')
	if prevColon < 0 {
		return "", 0, 0, errors.Newf("expected <file>:<line>:<column>, got %q", arg)
	}
	line, err := strconv.Atoi(rest[prevColon+1:])
	if err != nil {
		return "", 0, 0, errors.Wrapf(err, "line in %q", arg)
	}
	return rest[:prevColon], line, col, nil
}
