// Package report formats the results of evaluation sweeps for people
package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/layouteval/agent/policy"
	"github.com/samuelfneumann/layouteval/experiment"
)

// WriteTable writes a table of sweep results to w, one row per layout
// in sweep order. Greedy evaluations report the reward of each layout
// while other modes report the mean and standard deviation. Failed
// layouts report their error. If color is true, rows are coloured with
// ANSI escape codes.
func WriteTable(w io.Writer, mode policy.Mode,
	results []experiment.LayoutResult, color bool) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	failed := make([]bool, len(results))
	columns := 4
	if mode == policy.Greedy {
		columns = 3
		fmt.Fprintln(tw, "Layout\tReward\tSteps\t")
	} else {
		fmt.Fprintln(tw, "Layout\tMean\tStd\tSteps\t")
	}
	for i, r := range results {
		switch {
		case r.Err != nil:
			// The error trails the last column so it never widens the
			// columns of other rows
			failed[i] = true
			fmt.Fprintf(tw, "%s\t%serror: %v\n", r.Layout,
				strings.Repeat("-\t", columns-1), r.Err)
		case mode == policy.Greedy:
			fmt.Fprintf(tw, "%s\t%.3f\t%.1f\t\n", r.Layout, r.Result.Mean,
				r.Result.MeanLength)
		default:
			fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.1f\t\n", r.Layout,
				r.Result.Mean, r.Result.StdDev, r.Result.MeanLength)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writeTable: %v", err)
	}

	// Colour whole lines after alignment so escape codes do not skew
	// column widths
	au := aurora.NewAurora(color)
	scanner := bufio.NewScanner(&buf)
	for line := -1; scanner.Scan(); line++ {
		var row interface{}
		switch {
		case line < 0:
			row = au.Bold(scanner.Text())
		case failed[line]:
			row = au.Red(scanner.Text())
		default:
			row = au.Green(scanner.Text())
		}
		if _, err := fmt.Fprintln(w, row); err != nil {
			return fmt.Errorf("writeTable: %v", err)
		}
	}
	return scanner.Err()
}
