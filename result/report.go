package result

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// ReportOptions controls the human readable report.
type ReportOptions struct {
	Name    string
	Mode    string
	Colored bool

	// Verbose lists passing results too.
	Verbose bool
}

// Report writes the results of a finalized set: one row per failure, or per
// result in verbose mode, followed by a PASS or FAIL line.
func Report(w io.Writer, s *Set, opts ReportOptions) {
	noColor := color.New()
	noColor.DisableColor()

	good, bad, header := noColor, noColor, noColor

	if opts.Colored {
		good = color.New(color.FgGreen, color.Bold)
		bad = color.New(color.FgRed, color.Bold)
		header = color.New(color.FgHiBlack)
	}

	if opts.Name != "" {
		header.Fprintf(w, "%s (%s)\n", opts.Name, opts.Mode)
	}

	var rows [][]string

	for _, r := range s.Results() {
		if r.Pass && !opts.Verbose {
			continue
		}

		status := bad.Sprint("FAIL")
		if r.Pass {
			status = good.Sprint("ok")
		}

		rows = append(rows, []string{
			status, r.Kind.String(), r.Description, r.Expected, r.Actual,
		})
	}

	if len(rows) > 0 {
		table := tablewriter.NewWriter(w)
		table.SetAutoWrapText(false)
		table.SetBorder(false)
		table.SetHeaderLine(false)
		table.SetCenterSeparator("")
		table.SetColumnSeparator("")
		table.SetRowSeparator("")
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetHeader([]string{"", "KIND", "CHECK", "EXPECTED", "ACTUAL"})
		table.AppendBulk(rows)
		table.Render()
	}

	sum := s.Summary()
	if sum.OK() {
		good.Fprint(w, "PASS")
	} else {
		bad.Fprint(w, "FAIL")
	}

	fmt.Fprintf(w, ": %d checks, %d passed, %d failed\n",
		sum.Total, sum.Passed, sum.Failed)
}
