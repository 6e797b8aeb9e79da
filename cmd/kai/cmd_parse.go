package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/dhamidi/kai/python/parser"
)

func newParseCmd() *cobra.Command {
	var showSpans bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a python file and dump the statement tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "read %s", args[0])
			}
			lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
			mod := parser.Parse(lines)
			dumpNode(mod.Root, 0, showSpans)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSpans, "spans", false, "include source spans in the output")

	return cmd
}

func dumpNode(node *parser.Node, depth int, showSpans bool) {
	indent := strings.Repeat("  ", depth)
	if node.IsLeaf() {
		if node.Token.Kind == parser.TokenEOF {
			return
		}
		if showSpans {
			fmt.Printf("%s%q %d:%d-%d:%d\n", indent, node.Literal(),
				node.Span.Start.Line, node.Span.Start.Column,
				node.Span.End.Line, node.Span.End.Column)
			return
		}
		fmt.Printf("%s%q\n", indent, node.Literal())
		return
	}
	fmt.Printf("%s%s\n", indent, node.Kind)
	for _, child := range node.Children {
		dumpNode(child, depth+1, showSpans)
	}
}
