// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <document> [field]",
	Short: "Print a header field or section of a document",
	Long: `Get prints one header field (dotted paths descend into nested
mappings) or, with --section, the exact text of a section. Section
paths separate nesting levels with '/': --section "Consequences/Positive".
The section text is a byte-exact slice of the source file.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	path, err := ws.resolveDocPath(args[0])
	if err != nil {
		return err
	}
	doc, _ := ws.set.ByPath(path)

	sectionPath, _ := cmd.Flags().GetString("section")
	if sectionPath != "" {
		sec, ok := doc.Section(strings.Split(sectionPath, "/")...)
		if !ok {
			return fmt.Errorf("section %q not found in %s", sectionPath, doc.Path)
		}
		_, err := os.Stdout.Write(doc.Slice(sec.Range))
		return err
	}

	if len(args) < 2 {
		return fmt.Errorf("field name or --section required")
	}
	value, ok := doc.Display(args[1])
	if !ok {
		return fmt.Errorf("field %q not set in %s", args[1], doc.Path)
	}
	fmt.Println(value)
	return nil
}

func init() {
	getCmd.Flags().String("section", "", "print a section instead of a field (levels separated by /)")

	rootCmd.AddCommand(getCmd)
}
