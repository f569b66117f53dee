// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docbase/internal/index"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the document index as YAML or JSON",
	Long: `Export writes the full index to stdout, ordered by document path:
every document's header fields plus its sections with their content.
Run index first to build or refresh the index.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	store, err := index.Open(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "":
		return store.ExportYAML(context.Background(), os.Stdout)
	case "json":
		return store.ExportJSON(context.Background(), os.Stdout)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

func init() {
	addIndexFlags(exportCmd)
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(exportCmd)
}
