package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"warehouse-sync/internal/schema"
	"warehouse-sync/internal/seed"
)

var seedCount int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the operational store with generated rows",
	Long: `seed creates any missing source tables and appends generated rows
with fresh ids, giving the next sync pass something to pick up. Meant for
local development and demos.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := seed.New(SourceDB, SourceD, schema.Default(), logger)
		return s.Seed(context.Background(), seedCount)
	},
}

func init() {
	RootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVar(&seedCount, "count", 25, "Number of rows to generate per table")
}
