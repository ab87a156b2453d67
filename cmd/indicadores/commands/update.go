package commands

import (
	"fmt"
	"indicadores-backend/internal/service"
	"io"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func writeSummary(w io.Writer, summary service.Summary) {
	sources := newTable(w)
	sources.AppendHeader(table.Row{"Source", "Candidates", "Error"})
	for _, s := range summary.Sources {
		errText := ""
		if s.Err != nil {
			errText = s.Err.Error()
		}
		sources.AppendRow(table.Row{s.Name, s.Candidates, errText})
	}
	sources.Render()

	codes := make([]string, 0, len(summary.Codes))
	for code := range summary.Codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	details := newTable(w)
	details.AppendHeader(table.Row{"Code", "Records"})
	for _, code := range codes {
		details.AppendRow(table.Row{code, summary.Codes[code]})
	}
	details.AppendFooter(table.Row{"Total", summary.Total})
	details.Render()

	fmt.Fprintf(w, "%d new of %d attempted\n", summary.Inserted, summary.Total)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Runs a single update over every source and prints what was stored.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.service.UpdateAll(cmd.Context())
		writeSummary(os.Stdout, summary)
		return err
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
