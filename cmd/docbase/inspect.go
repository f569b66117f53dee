// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docbase/internal/document"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <document>",
	Short: "Show a document's header, section tree, and tables",
	Long: `Inspect prints the parsed structure of one document: its header
fields in declaration order, the heading tree with byte ranges, and the
tables found in each section. The document may be named by path or id.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	path, err := ws.resolveDocPath(args[0])
	if err != nil {
		return err
	}
	doc, _ := ws.set.ByPath(path)

	fmt.Fprintf(os.Stdout, "%s\n", doc.Path)
	if pe, degraded := ws.set.ParseError(doc.Path); degraded {
		fmt.Fprintf(os.Stdout, "header: undecodable (%s)\n", pe.Reason)
	} else if doc.Header == nil {
		fmt.Fprintln(os.Stdout, "header: none")
	} else {
		fmt.Fprintln(os.Stdout, "header:")
		for _, key := range doc.Header.Keys() {
			v, _ := doc.Header.Get(key)
			fmt.Fprintf(os.Stdout, "  %s: %s\n", key, v.Display())
		}
	}

	fmt.Fprintln(os.Stdout, "sections:")
	printSections(doc.Sections, 1)
	return nil
}

func printSections(sections []*document.Section, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, sec := range sections {
		fmt.Fprintf(os.Stdout, "%s%s %s [%d:%d)\n",
			indent, strings.Repeat("#", sec.Level), sec.Heading, sec.Range.Start, sec.Range.End)
		for i, tbl := range sec.Tables {
			fmt.Fprintf(os.Stdout, "%s  table %d: columns %s, %d row(s)\n",
				indent, i+1, strings.Join(tbl.Columns, ", "), len(tbl.Rows))
		}
		printSections(sec.Children, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
