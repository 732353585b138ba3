package cli

import (
	"github.com/spf13/cobra"
	"github.com/voidlight/mnemo/internal/store"
)

var projectFlag string

var rootCmd = &cobra.Command{
	Use:   "mnemo",
	Short: "Per-project memory for AI coding agents",
	Long:  "Mnemo keeps a durable key-value memory plus a typed relation graph per project, in a single SQLite file.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "Project directory (default: current directory)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(recallCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(relatedCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(timelineCmd)
}

// openDB opens the store for the --project directory.
func openDB() (*store.DB, error) {
	reg := store.NewRegistry()
	return reg.Resolve(projectFlag)
}
