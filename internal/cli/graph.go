package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/voidlight/mnemo/internal/engine"
)

var (
	linkStrength float64

	unlinkType string

	relatedDepth int
	relatedType  string

	graphKey   string
	graphDepth int
)

func init() {
	linkCmd.Flags().Float64Var(&linkStrength, "strength", 1.0, "Advisory edge strength")

	unlinkCmd.Flags().StringVarP(&unlinkType, "type", "t", "", "Only remove this relation type")

	relatedCmd.Flags().IntVarP(&relatedDepth, "depth", "d", 1, "Traversal depth in hops")
	relatedCmd.Flags().StringVarP(&relatedType, "type", "t", "", "Only follow this relation type")

	graphCmd.Flags().StringVarP(&graphKey, "key", "k", "", "Start key (empty for the whole store)")
	graphCmd.Flags().IntVarP(&graphDepth, "depth", "d", 2, "Traversal depth for a keyed view")
}

var linkCmd = &cobra.Command{
	Use:   "link <source> <target> <type>",
	Short: "Create or update a directed relation",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Link(args[0], args[1], args[2], linkStrength, nil); err != nil {
			return err
		}
		fmt.Printf("%s -[%s]-> %s\n", args[0], args[2], args[1])
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <source> <target>",
	Short: "Remove relations for an ordered pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		removed, err := db.Unlink(args[0], args[1], unlinkType)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Println("no matching relation")
			return nil
		}
		fmt.Printf("unlinked %s -> %s\n", args[0], args[1])
		return nil
	},
}

var relatedCmd = &cobra.Command{
	Use:   "related <key>",
	Short: "Show items reachable within N hops",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		items, err := engine.RelatedMemories(db, args[0], relatedDepth, relatedType)
		if err != nil {
			return err
		}
		for _, it := range items {
			printItem(it)
		}
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show a graph view: nodes, edges and clusters",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		g, err := engine.MemoryGraph(db, graphKey, graphDepth)
		if err != nil {
			return err
		}
		fmt.Printf("nodes: %d, edges: %d\n", len(g.Nodes), len(g.Edges))
		for _, e := range g.Edges {
			fmt.Printf("  %s -[%s]-> %s\n", e.SourceKey, e.RelationType, e.TargetKey)
		}
		for i, c := range g.Clusters {
			fmt.Printf("cluster %d: %s\n", i+1, strings.Join(c, ", "))
		}
		return nil
	},
}

var pathCmd = &cobra.Command{
	Use:   "path <source> <target>",
	Short: "Find the shortest relation path between two items",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		path, err := engine.FindPath(db, args[0], args[1])
		if err != nil {
			return err
		}
		if path == nil {
			fmt.Println("no path")
			return nil
		}
		fmt.Println(strings.Join(path, " -> "))
		return nil
	},
}
