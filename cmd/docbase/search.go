// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docbase/internal/index"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the document index",
	Long: `Search queries the SQLite index with FTS5 full-text search over
section content, optionally filtered by document type or section
heading. Run index first to build or refresh the index.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	store, err := index.Open(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	docType, _ := cmd.Flags().GetString("type")
	section, _ := cmd.Flags().GetString("section")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := index.SearchOptions{
		Query:      queryText,
		Type:       docType,
		Section:    section,
		MaxResults: limit,
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --type, or --section")
	}

	hits, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-4s  %-10s  %-24s  %-20s  %s\n", "Rank", "Type", "Document", "Section", "Content")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for i, h := range hits {
		content := strings.Join(strings.Fields(h.Content), " ")
		if len(content) > 40 {
			content = content[:37] + "..."
		}
		doc := h.Path
		if len(doc) > 24 {
			doc = "..." + doc[len(doc)-21:]
		}
		heading := h.Heading
		if len(heading) > 20 {
			heading = heading[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-10s  %-24s  %-20s  %s\n", i+1, h.DocType, doc, heading, content)
	}
	fmt.Fprintf(os.Stdout, "\n%d result(s)\n", len(hits))
	return nil
}

func init() {
	addIndexFlags(searchCmd)
	searchCmd.Flags().String("query", "", "full-text search query")
	searchCmd.Flags().String("type", "", "filter by document type")
	searchCmd.Flags().String("section", "", "filter by exact section heading")
	searchCmd.Flags().Int("limit", 0, "maximum number of results")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
