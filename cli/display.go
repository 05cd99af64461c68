package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// display renders command output with pterm onto the command's writer
type display struct {
	out io.Writer
}

func newDisplay(cmd *cobra.Command) *display {
	return &display{out: cmd.OutOrStdout()}
}

func (d *display) Success(format string, args ...interface{}) {
	fmt.Fprintln(d.out, pterm.Success.Sprintf(format, args...))
}

func (d *display) Info(format string, args ...interface{}) {
	fmt.Fprintln(d.out, pterm.Info.Sprintf(format, args...))
}

func (d *display) Warning(format string, args ...interface{}) {
	fmt.Fprintln(d.out, pterm.Warning.Sprintf(format, args...))
}

func (d *display) Error(format string, args ...interface{}) {
	fmt.Fprintln(d.out, pterm.Error.Sprintf(format, args...))
}

func (d *display) Header(title string) {
	fmt.Fprintln(d.out, pterm.DefaultSection.Sprint(title))
}

// Table renders rows under headers. An empty row set prints a note instead.
func (d *display) Table(headers []string, rows [][]string) error {
	if len(rows) == 0 {
		d.Info("No results")
		return nil
	}
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, headers)
	data = append(data, rows...)
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(d.out, out)
	return nil
}

// Properties renders a property map as a sorted key/value table
func (d *display) Properties(props map[string]string) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = []string{k, props[k]}
	}
	return d.Table([]string{"Property", "Value"}, rows)
}

// nameRows turns a name list into single-column rows
func nameRows(names []string) [][]string {
	rows := make([][]string, len(names))
	for i, n := range names {
		rows[i] = []string{n}
	}
	return rows
}
