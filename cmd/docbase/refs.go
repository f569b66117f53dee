// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docbase/internal/graph"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Inspect the relation graph between documents",
	Long: `Refs builds the typed relation graph from resolved header references
and answers queries over it: outgoing and incoming edges of one
document, transitive closure to a depth, and inverse declarations that
are missing. The whole graph can be rendered with --mermaid or --dot.`,
	RunE: runRefsGraph,
}

var refsOutCmd = &cobra.Command{
	Use:   "out <document>",
	Short: "List outgoing relation edges of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefsOut,
}

var refsInCmd = &cobra.Command{
	Use:   "in <document>",
	Short: "List incoming relation edges of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefsIn,
}

var refsTransitiveCmd = &cobra.Command{
	Use:   "transitive <document>",
	Short: "List documents reachable over outgoing edges",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefsTransitive,
}

var refsMissingCmd = &cobra.Command{
	Use:   "missing-inverses",
	Short: "List inverse declarations that are missing",
	RunE:  runRefsMissing,
}

func buildGraph(cmd *cobra.Command) (*workspace, *graph.Graph, error) {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return nil, nil, err
	}
	return ws, graph.Build(ws.set, ws.schema), nil
}

func runRefsGraph(cmd *cobra.Command, args []string) error {
	_, g, err := buildGraph(cmd)
	if err != nil {
		return err
	}
	mermaid, _ := cmd.Flags().GetBool("mermaid")
	dot, _ := cmd.Flags().GetBool("dot")
	switch {
	case mermaid:
		return g.Mermaid(os.Stdout)
	case dot:
		return g.Dot(os.Stdout)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(os.Stdout, "%s --%s--> %s\n", e.From, e.Relation, e.To)
	}
	fmt.Fprintf(os.Stdout, "\n%d edge(s)\n", len(g.Edges()))
	return nil
}

func runRefsOut(cmd *cobra.Command, args []string) error {
	ws, g, err := buildGraph(cmd)
	if err != nil {
		return err
	}
	path, err := ws.resolveDocPath(args[0])
	if err != nil {
		return err
	}
	for _, e := range g.Outgoing(path) {
		fmt.Fprintf(os.Stdout, "%s %s\n", e.Relation, e.To)
	}
	return nil
}

func runRefsIn(cmd *cobra.Command, args []string) error {
	ws, g, err := buildGraph(cmd)
	if err != nil {
		return err
	}
	path, err := ws.resolveDocPath(args[0])
	if err != nil {
		return err
	}
	for _, e := range g.Incoming(path) {
		fmt.Fprintf(os.Stdout, "%s %s\n", e.Relation, e.From)
	}
	return nil
}

func runRefsTransitive(cmd *cobra.Command, args []string) error {
	ws, g, err := buildGraph(cmd)
	if err != nil {
		return err
	}
	path, err := ws.resolveDocPath(args[0])
	if err != nil {
		return err
	}
	depth, _ := cmd.Flags().GetInt("depth")
	for _, target := range g.Transitive(path, depth) {
		fmt.Fprintln(os.Stdout, target)
	}
	return nil
}

func runRefsMissing(cmd *cobra.Command, args []string) error {
	_, g, err := buildGraph(cmd)
	if err != nil {
		return err
	}
	candidates := g.MissingInverses()
	for _, c := range candidates {
		fmt.Fprintf(os.Stdout, "%s should declare %s: %s\n", c.Doc, c.Relation, c.Target)
	}
	if len(candidates) == 0 {
		fmt.Fprintln(os.Stdout, "No missing inverses.")
	}
	return nil
}

func init() {
	refsCmd.Flags().Bool("mermaid", false, "render the graph as a mermaid flowchart")
	refsCmd.Flags().Bool("dot", false, "render the graph in graphviz dot format")
	refsTransitiveCmd.Flags().Int("depth", 0, "maximum traversal depth in hops (0 = unlimited)")

	refsCmd.AddCommand(refsOutCmd)
	refsCmd.AddCommand(refsInCmd)
	refsCmd.AddCommand(refsTransitiveCmd)
	refsCmd.AddCommand(refsMissingCmd)

	rootCmd.AddCommand(refsCmd)
}
