package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"warehouse-sync/internal/schema"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the replicated tables and their load strategy",
	Run: func(cmd *cobra.Command, args []string) {
		reg := schema.Default()
		for _, t := range reg.Tables() {
			fmt.Printf("%-24s %-12s %d columns\n", t.Name, t.Classification, len(t.Fields))
		}
		fmt.Printf("\n%d tables\n", reg.Len())
	},
}

func init() {
	RootCmd.AddCommand(tablesCmd)
}
