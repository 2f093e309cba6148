package main

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/discover/internal/domain/hierarchy"
	"github.com/kailas-cloud/discover/internal/schema"
)

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy",
	Short: "Print the type hierarchy discovered from schema definitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return printHierarchy(cmd.Context(), cmd.OutOrStdout(), cfg.Catalog.SchemasDir, zap.NewNop())
	},
}

func init() {
	rootCmd.AddCommand(hierarchyCmd)
}

// printHierarchy writes one "child -> parent" line per subtype edge, then
// each type with its descendants.
func printHierarchy(ctx context.Context, out io.Writer, dir string, logger *zap.Logger) error {
	loader, err := schema.NewLoader(nil, logger)
	if err != nil {
		return err
	}
	edges, err := loader.Edges(ctx, dir)
	if err != nil {
		return err
	}
	table, err := hierarchy.New(edges)
	if err != nil {
		return err
	}

	for _, e := range edges {
		if e.IsRoot() {
			continue
		}
		fmt.Fprintf(out, "%s -> %s\n", e.Child, e.Parent)
	}
	fmt.Fprintln(out)
	for _, t := range table.Types() {
		desc := table.Descendants(t).Sorted()
		desc = slices.DeleteFunc(desc, func(d string) bool { return d == t })
		if len(desc) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s: %v\n", t, desc)
	}
	return nil
}
