package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/voidlight/mnemo/internal/engine"
	"github.com/voidlight/mnemo/internal/store"
)

var (
	saveCategory string
	savePriority int

	listCategory string
	listPriority int

	searchStrategy string
	searchLimit    int
	searchCategory string
	searchStartKey string
	searchDepth    int
	searchRelType  string

	timelineStart string
	timelineEnd   string
	timelineLimit int
)

func init() {
	saveCmd.Flags().StringVarP(&saveCategory, "category", "c", "general", "Item category")
	saveCmd.Flags().IntVar(&savePriority, "priority", 0, "Item priority")

	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Filter by category")
	listCmd.Flags().IntVar(&listPriority, "priority", 0, "Show only items with this exact priority")

	searchCmd.Flags().StringVarP(&searchStrategy, "strategy", "s", "keyword", "Strategy: keyword, graph_traversal, temporal, priority, context_aware")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Maximum number of results")
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "Filter by category")
	searchCmd.Flags().StringVar(&searchStartKey, "start-key", "", "Start key for graph_traversal")
	searchCmd.Flags().IntVar(&searchDepth, "depth", 2, "Traversal depth for graph_traversal")
	searchCmd.Flags().StringVar(&searchRelType, "relation-type", "", "Follow only this relation type for graph_traversal")

	timelineCmd.Flags().StringVar(&timelineStart, "start", "", "Inclusive start timestamp")
	timelineCmd.Flags().StringVar(&timelineEnd, "end", "", "Inclusive end timestamp")
	timelineCmd.Flags().IntVarP(&timelineLimit, "limit", "n", 50, "Maximum number of results")
}

var saveCmd = &cobra.Command{
	Use:   "save <key> <value>",
	Short: "Save or replace a memory item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Save(args[0], args[1], saveCategory, savePriority); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", args[0])
		return nil
	},
}

var recallCmd = &cobra.Command{
	Use:   "recall <key>",
	Short: "Recall a memory item (bumps last-accessed)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		item, err := db.Recall(args[0])
		if err != nil {
			return err
		}
		if item == nil {
			fmt.Fprintf(os.Stderr, "not found: %s\n", args[0])
			return nil
		}
		printItem(*item)
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget <key>",
	Short: "Delete a memory item and its relations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		deleted, err := db.Delete(args[0])
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Fprintf(os.Stderr, "not found: %s\n", args[0])
			return nil
		}
		fmt.Printf("forgot %s\n", args[0])
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List memory items by priority",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		// Zero is a valid priority, so branch on whether the flag was set.
		var items []store.Item
		if cmd.Flags().Changed("priority") {
			items, err = db.ByPriority(listPriority)
		} else {
			items, err = db.List(listCategory)
		}
		if err != nil {
			return err
		}
		for _, it := range items {
			printItem(it)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search memory with a named strategy",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		results, err := engine.Search(db, searchStrategy, query, engine.SearchOpts{
			Limit:        searchLimit,
			Category:     searchCategory,
			StartKey:     searchStartKey,
			Depth:        searchDepth,
			RelationType: searchRelType,
		})
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Score != 0 {
				fmt.Printf("[%.1f] ", r.Score)
			}
			printItem(r.Item)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show item counts per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return err
		}
		fmt.Printf("total: %d\n", stats.Total)
		for category, count := range stats.ByCategory {
			fmt.Printf("  %-16s %d\n", category, count)
		}
		return nil
	},
}

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "List items by creation time, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		items, err := db.Timeline(timelineStart, timelineEnd, timelineLimit)
		if err != nil {
			return err
		}
		for _, it := range items {
			fmt.Printf("%s  %s\n", it.Timestamp, it.Key)
		}
		return nil
	},
}

func printItem(it store.Item) {
	fmt.Printf("%s [%s, p%d] %s\n", it.Key, it.Category, it.Priority, it.Value)
}
