// Package table renders pterm tables for command output.
package table

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// Fprint renders rows to w. When hasHeader is set the first row is styled as
// a header.
func Fprint(w io.Writer, rows pterm.TableData, hasHeader bool) error {
	out, err := render(rows, hasHeader)
	if err != nil || out == "" {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func render(rows pterm.TableData, hasHeader bool) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	return pterm.DefaultTable.
		WithHasHeader(hasHeader).
		WithBoxed(false).
		WithData(rows).
		Srender()
}

// PrintTableNoPad renders rows through pterm's default output.
func PrintTableNoPad(rows pterm.TableData, hasHeader bool) {
	out, err := render(rows, hasHeader)
	if err != nil {
		pterm.Error.Printf("failed to render table: %v\n", err)
		return
	}
	if out != "" {
		pterm.Println(out)
	}
}
