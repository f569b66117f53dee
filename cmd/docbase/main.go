// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docbase CLI. docbase turns a
// directory of structured markdown documents into a schema-validated,
// queryable, cross-referenced document store.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docbase CLI.
var rootCmd = &cobra.Command{
	Use:   "docbase",
	Short: "Schema-validated markdown document store",
	Long: `docbase manages a directory of strictly-structured markdown documents:
YAML headers validated against an HCL schema, required sections and tables,
typed cross-references between documents, and user/team mentions.

Use validate to check the set against the schema, refs to inspect the
relation graph, and index/search/export for the SQLite-backed query surface.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docbase.yaml or ~/.config/docbase/config.yaml)")
	rootCmd.PersistentFlags().String("dir", ".", "root directory of the document set")
	rootCmd.PersistentFlags().String("schema", "", "HCL schema file (default: <dir>/docbase.hcl)")
	rootCmd.PersistentFlags().String("users", "", "YAML user directory (default: <dir>/users.yaml if present)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docbase")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docbase"))
		}
	}

	viper.SetEnvPrefix("DOCBASE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
