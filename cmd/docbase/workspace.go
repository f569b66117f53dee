// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docbase/internal/corpus"
	"github.com/pdiddy/docbase/internal/schema"
	"github.com/pdiddy/docbase/internal/users"
	"github.com/pdiddy/docbase/pkg/types"
)

// workspace bundles everything a command needs: the compiled schema,
// the loaded document set, and the optional user directory.
type workspace struct {
	cfg    types.CorpusConfig
	schema *schema.Schema
	set    *corpus.Set
	users  *users.Directory
}

// corpusConfig resolves the corpus settings from flags, falling back
// to the viper config file.
func corpusConfig(cmd *cobra.Command) types.CorpusConfig {
	dir, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && viper.GetString("corpus.root_dir") != "" {
		dir = viper.GetString("corpus.root_dir")
	}
	schemaPath, _ := cmd.Flags().GetString("schema")
	if schemaPath == "" {
		schemaPath = viper.GetString("corpus.schema_path")
	}
	if schemaPath == "" {
		schemaPath = filepath.Join(dir, "docbase.hcl")
	}
	usersPath, _ := cmd.Flags().GetString("users")
	if usersPath == "" {
		usersPath = viper.GetString("corpus.users_path")
	}
	if usersPath == "" {
		candidate := filepath.Join(dir, "users.yaml")
		if _, err := os.Stat(candidate); err == nil {
			usersPath = candidate
		}
	}
	return types.CorpusConfig{RootDir: dir, SchemaPath: schemaPath, UsersPath: usersPath}
}

// loadWorkspace compiles the schema, loads the document set, and
// compiles the user directory when configured.
func loadWorkspace(cmd *cobra.Command) (*workspace, error) {
	cfg := corpusConfig(cmd)

	sch, err := schema.LoadFile(cfg.SchemaPath)
	if err != nil {
		return nil, err
	}

	paths, err := corpus.Discover(cfg.RootDir)
	if err != nil {
		return nil, err
	}
	set, err := corpus.Load(paths)
	if err != nil {
		return nil, err
	}

	ws := &workspace{cfg: cfg, schema: sch, set: set}

	if cfg.UsersPath != "" {
		data, err := os.ReadFile(cfg.UsersPath)
		if err != nil {
			return nil, fmt.Errorf("reading user directory: %w", err)
		}
		dir, err := users.Compile(data)
		if err != nil {
			return nil, err
		}
		ws.users = dir
	}

	return ws, nil
}

// resolveDocPath maps a command-line document argument to a set
// member: first as a path, then as an id stem.
func (ws *workspace) resolveDocPath(arg string) (string, error) {
	if doc, ok := ws.set.ByPath(arg); ok {
		return doc.Path, nil
	}
	if doc, ok := ws.set.ByPath(filepath.Join(ws.cfg.RootDir, arg)); ok {
		return doc.Path, nil
	}
	if doc, ok := ws.set.ByStem(arg); ok {
		return doc.Path, nil
	}
	return "", fmt.Errorf("document %q not found in %s", arg, ws.cfg.RootDir)
}
