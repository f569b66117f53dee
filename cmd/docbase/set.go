// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docbase/internal/document"
)

var setCmd = &cobra.Command{
	Use:   "set <document> <field> <value>",
	Short: "Set a header field and rewrite the document",
	Long: `Set updates one header field and writes the document back. Only the
header block is rewritten; the body is preserved byte for byte. Values
are interpreted like YAML scalars: true/false become booleans, numbers
become numbers, [a, b] becomes a list. Use --delete to remove a field.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	path, err := ws.resolveDocPath(args[0])
	if err != nil {
		return err
	}
	doc, _ := ws.set.ByPath(path)
	if _, degraded := ws.set.ParseError(doc.Path); degraded {
		return fmt.Errorf("%s: header cannot be decoded; fix it by hand first", doc.Path)
	}

	remove, _ := cmd.Flags().GetBool("delete")
	var updated *document.Document
	if remove {
		if len(args) != 2 {
			return fmt.Errorf("--delete takes a document and a field, no value")
		}
		updated, err = doc.Unset(args[1])
	} else {
		if len(args) != 3 {
			return fmt.Errorf("set takes a document, a field, and a value")
		}
		updated, err = doc.Set(args[1], document.ParseScalar(args[2]))
	}
	if err != nil {
		return err
	}

	if err := updated.Save(doc.Path); err != nil {
		return err
	}
	fmt.Printf("updated %s\n", doc.Path)
	return nil
}

func init() {
	setCmd.Flags().Bool("delete", false, "remove the field instead of setting it")

	rootCmd.AddCommand(setCmd)
}
