// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docbase/internal/graph"
	"github.com/pdiddy/docbase/internal/schema"
)

var newCmd = &cobra.Command{
	Use:   "new <type>",
	Short: "Create a skeleton document of a schema type",
	Long: `New allocates the next free id for the type and generates a skeleton
document: the type's required header fields with placeholder values and
its required section tree. The skeleton prints to stdout unless --output
names a file or --auto derives the path from the id and the type's
folder. Use --field key=value to pre-fill header fields.`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func runNew(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	typeName := args[0]
	td, ok := ws.schema.Type(typeName)
	if !ok {
		return fmt.Errorf("unknown document type %q", typeName)
	}

	prefix, _ := cmd.Flags().GetString("prefix")
	if prefix == "" {
		prefix = strings.ToUpper(typeName)
	}
	id := graph.NextID(ws.set, prefix)
	fmt.Fprintf(os.Stderr, "next-id: %s\n", id)

	fieldArgs, _ := cmd.Flags().GetStringArray("field")
	overrides := make(map[string]string, len(fieldArgs))
	for _, fa := range fieldArgs {
		key, value, found := strings.Cut(fa, "=")
		if !found || key == "" {
			return fmt.Errorf("--field wants key=value, got %q", fa)
		}
		overrides[key] = value
	}
	for key := range overrides {
		if _, ok := td.Field(key); !ok {
			return fmt.Errorf("type %q has no field %q", typeName, key)
		}
	}

	content := renderSkeleton(td, typeName, overrides)

	output, _ := cmd.Flags().GetString("output")
	auto, _ := cmd.Flags().GetBool("auto")
	if auto {
		if output != "" {
			return fmt.Errorf("--auto and --output are mutually exclusive")
		}
		folder := td.Folder
		if folder == "" {
			folder = "."
		}
		output = filepath.Join(ws.cfg.RootDir, folder, strings.ToLower(id)+".md")
	}

	if output == "" {
		_, err := os.Stdout.Write(content)
		return err
	}
	if _, err := os.Stat(output); err == nil {
		return fmt.Errorf("%s already exists", output)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}
	if err := os.WriteFile(output, content, 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	fmt.Printf("created %s\n", output)
	return nil
}

// renderSkeleton builds the document text: a header with the type and
// its required fields, then the required section tree with table
// header rows.
func renderSkeleton(td *schema.TypeDef, typeName string, overrides map[string]string) []byte {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "type: %s\n", typeName)
	for _, f := range td.Fields {
		if f.Name == "type" {
			continue
		}
		value, overridden := overrides[f.Name]
		if !f.Required && !overridden {
			continue
		}
		if !overridden {
			value = placeholder(f)
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Name, value)
	}
	b.WriteString("---\n")
	renderSections(&b, td.Sections, 1)
	return []byte(b.String())
}

func placeholder(f schema.FieldDef) string {
	switch f.Kind {
	case schema.KindEnum:
		if len(f.Values) > 0 {
			return f.Values[0]
		}
		return `""`
	case schema.KindNumber:
		return "0"
	case schema.KindBool:
		return "false"
	case schema.KindRefList, schema.KindStringList, schema.KindUserList:
		return "[]"
	default:
		return `""`
	}
}

func renderSections(b *strings.Builder, sections []schema.SectionDef, level int) {
	for _, sd := range sections {
		if !sd.Required {
			continue
		}
		fmt.Fprintf(b, "\n%s %s\n", strings.Repeat("#", level), sd.Name)
		for _, tbl := range sd.Tables {
			if !tbl.Required || len(tbl.Columns) == 0 {
				continue
			}
			b.WriteString("\n|")
			for _, col := range tbl.Columns {
				fmt.Fprintf(b, " %s |", col.Name)
			}
			b.WriteString("\n|")
			for range tbl.Columns {
				b.WriteString("---|")
			}
			b.WriteString("\n")
		}
		renderSections(b, sd.Children, level+1)
	}
}

func init() {
	newCmd.Flags().String("prefix", "", "id prefix (defaults to the uppercased type name)")
	newCmd.Flags().StringArray("field", nil, "pre-fill a header field as key=value (repeatable)")
	newCmd.Flags().String("output", "", "write the skeleton to this path instead of stdout")
	newCmd.Flags().Bool("auto", false, "derive the output path from the allocated id and the type's folder")

	rootCmd.AddCommand(newCmd)
}
