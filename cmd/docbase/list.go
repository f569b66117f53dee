// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docbase/internal/corpus"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the documents in the set",
	Long: `List prints every managed document with its id, type, title, and
status. Documents without a type header are marked unmanaged.`,
	RunE: runList,
}

type listEntry struct {
	Path   string `json:"path"`
	ID     string `json:"id"`
	Type   string `json:"type"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	typeFilter, _ := cmd.Flags().GetString("type")

	var entries []listEntry
	for _, doc := range ws.set.Documents() {
		docType := doc.Type()
		if typeFilter != "" && docType != typeFilter {
			continue
		}
		rel, err := filepath.Rel(ws.cfg.RootDir, doc.Path)
		if err != nil {
			rel = doc.Path
		}
		title, _ := doc.Display("title")
		status, _ := doc.Display("status")
		entries = append(entries, listEntry{
			Path:   rel,
			ID:     corpus.Stem(doc.Path),
			Type:   docType,
			Title:  title,
			Status: status,
		})
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No documents found.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-12s  %-12s  %-40s  %-10s  %s\n", "ID", "Type", "Title", "Status", "Path")
	for _, e := range entries {
		docType := e.Type
		if docType == "" {
			docType = "(unmanaged)"
		}
		title := e.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-12s  %-40s  %-10s  %s\n", e.ID, docType, title, e.Status, e.Path)
	}
	fmt.Fprintf(os.Stdout, "\n%d document(s)\n", len(entries))
	return nil
}

func init() {
	listCmd.Flags().String("type", "", "filter by document type")
	listCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(listCmd)
}
