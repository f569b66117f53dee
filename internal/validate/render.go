// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"encoding/json"
	"fmt"
	"io"
)

// RenderText writes the human-readable report.
func RenderText(w io.Writer, r Report) error {
	for _, f := range r.Files {
		if _, err := fmt.Fprintf(w, "%s\n", f.Path); err != nil {
			return err
		}
		for _, is := range f.Errors {
			if err := renderIssue(w, "error", is); err != nil {
				return err
			}
		}
		for _, is := range f.Warnings {
			if err := renderIssue(w, "warning", is); err != nil {
				return err
			}
		}
	}
	status := "ok"
	if !r.OK {
		status = "failed"
	}
	_, err := fmt.Fprintf(w, "%s: %d error(s), %d warning(s) in %d file(s)\n",
		status, r.Errors, r.Warnings, len(r.Files))
	return err
}

func renderIssue(w io.Writer, severity string, is Issue) error {
	if is.Hint != "" {
		_, err := fmt.Fprintf(w, "  %s %s %s: %s (%s)\n", severity, is.Code, is.Location, is.Message, is.Hint)
		return err
	}
	_, err := fmt.Fprintf(w, "  %s %s %s: %s\n", severity, is.Code, is.Location, is.Message)
	return err
}

// RenderCompact writes one line per finding, grep-friendly.
func RenderCompact(w io.Writer, r Report) error {
	for _, f := range r.Files {
		for _, is := range f.Errors {
			if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", f.Path, is.Code, is.Location, is.Message); err != nil {
				return err
			}
		}
		for _, is := range f.Warnings {
			if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", f.Path, is.Code, is.Location, is.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
