package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"warehouse-sync/internal/engine"
)

var syncTables []string

// tableProgress is the label shared between the orchestrator's workers and
// the progress bar's render goroutine, so access is locked.
type tableProgress struct {
	mu      sync.Mutex
	current string
}

func (p *tableProgress) done(res engine.Result) {
	p.mu.Lock()
	p.current = res.Table
	p.mu.Unlock()
}

func (p *tableProgress) label() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("%-20s", p.current)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single sync pass and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch := newOrchestrator(nil)

		total := len(orch.TableNames())
		if len(syncTables) > 0 {
			total = len(syncTables)
		}

		uiprogress.Start()
		bar := uiprogress.AddBar(total).AppendCompleted().PrependElapsed()
		prog := &tableProgress{}
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return prog.label()
		})
		orch.OnTableDone = func(res engine.Result) {
			prog.done(res)
			bar.Incr()
		}

		start := time.Now()
		var summary engine.Summary
		var err error
		if len(syncTables) > 0 {
			summary, err = orch.RunTables(context.Background(), syncTables)
		} else {
			summary, err = orch.RunAll(context.Background())
		}
		uiprogress.Stop()
		if err != nil {
			return err
		}

		fmt.Printf("\nSynced %d rows across %d tables in %s\n", summary.Rows, len(summary.Succeeded), time.Since(start).Round(time.Millisecond))
		if len(summary.Failed) > 0 {
			return fmt.Errorf("%d tables failed: %v", len(summary.Failed), summary.Failed)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringSliceVarP(&syncTables, "tables", "t", []string{}, "Specific tables to sync (comma-separated)")
}
