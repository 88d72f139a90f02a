package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// PrintTable writes the end-of-run overview, one row per project.
func PrintTable(w io.Writer, outcomes []Outcome) {
	if len(outcomes) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Dependency-Check Run Overview")
	fmt.Fprintln(w, "=============================")

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Project", "Kind", "Exit", "Total", "Critical", "High", "Medium", "Low", "Status"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, o := range outcomes {
		exit := "-"
		if o.Result != nil {
			exit = strconv.Itoa(o.Result.ExitCode)
		}

		counts := []string{"-", "-", "-", "-", "-"}
		if o.Summary != nil {
			c := o.Summary.Counts
			counts = []string{
				strconv.Itoa(c.Total),
				strconv.Itoa(c.Critical),
				strconv.Itoa(c.High),
				strconv.Itoa(c.Medium),
				strconv.Itoa(c.Low),
			}
		}

		row := append([]string{o.Project.Name, string(o.Project.Kind), exit}, counts...)
		table.Append(append(row, string(o.Status)))
	}

	table.Render()
	fmt.Fprintln(w)
}
