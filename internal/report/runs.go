package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"git.home.luguber.info/inful/linkcheck/internal/history"
)

// FormatRuns renders recent run summaries as an aligned table.
func FormatRuns(w io.Writer, runs []history.RunSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "RUN ID\tSTARTED\tDURATION\tLINKS\tBROKEN\tCHECKED\tSKIPPED"); err != nil {
		return err
	}
	for _, r := range runs {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Duration,
			r.TotalLinks,
			r.BrokenLinks,
			r.CheckedFiles,
			r.SkippedFiles,
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}
