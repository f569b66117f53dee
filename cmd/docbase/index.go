// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docbase/internal/index"
	"github.com/pdiddy/docbase/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Sync the SQLite document index",
	Long: `Index brings the SQLite index up to date with the document set.
Documents are re-indexed only when their file modification time has
changed; rows for deleted files are removed. The index powers the
search and export commands.`,
	RunE: runIndex,
}

// addIndexFlags registers the flags shared by index, search, and
// export.
func addIndexFlags(cmd *cobra.Command) {
	cmd.Flags().String("index-dir", "", "directory for the index database (default: <dir>/.docbase)")
	cmd.Flags().Int("max-results", 20, "default maximum number of search results")
}

// indexConfig resolves index settings from flags and the config file.
func indexConfig(cmd *cobra.Command) types.IndexConfig {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	if indexDir == "" {
		indexDir = viper.GetString("index.index_dir")
	}
	if indexDir == "" {
		dir, _ := cmd.Flags().GetString("dir")
		indexDir = filepath.Join(dir, ".docbase")
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults <= 0 {
		maxResults = viper.GetInt("index.max_results")
	}
	return types.IndexConfig{IndexDir: indexDir, MaxResults: maxResults}
}

func runIndex(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	store, err := index.Open(indexConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Sync(context.Background(), ws.set, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

func init() {
	addIndexFlags(indexCmd)

	rootCmd.AddCommand(indexCmd)
}
