// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docbase/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the document set against the schema",
	Long: `Validate checks every managed document against the HCL schema: header
fields, required sections and tables, reference formats and resolution,
and user mentions. Findings are errors (F, S, T codes) or warnings
(R, U codes); the command fails only on errors.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}

	report := validate.Run(ws.set, ws.schema, validate.Options{Users: ws.users})

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = viper.GetString("validate.format")
	}
	switch format {
	case "", "text":
		err = validate.RenderText(os.Stdout, report)
	case "compact":
		err = validate.RenderCompact(os.Stdout, report)
	case "json":
		err = validate.RenderJSON(os.Stdout, report)
	default:
		return fmt.Errorf("unsupported format %q: use text, compact, or json", format)
	}
	if err != nil {
		return err
	}

	if !report.OK {
		return fmt.Errorf("validation failed: %d error(s)", report.Errors)
	}
	return nil
}

func init() {
	validateCmd.Flags().String("format", "", "report format: text, compact, or json")

	rootCmd.AddCommand(validateCmd)
}
