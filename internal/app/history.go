package app

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
	"github.com/specialistvlad/sweepgrid/internal/ledger"
)

// History prints the ledger, most recent submission first.
func (a *App) History(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	led, err := ledger.Open(ctx, a.config.LedgerPath)
	if err != nil {
		return err
	}
	defer led.Close()

	entries, err := led.List(ctx, a.config.HistoryLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.outW, "No submissions recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(a.outW, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSWEEP\tSWEEP ID\tRUN\tSTATUS\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Time.Local().Format(time.DateTime), e.Sweep, e.SweepID, e.RunName, e.Status, e.Error)
	}
	return tw.Flush()
}
