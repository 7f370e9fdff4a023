// Package report renders lockcheck.Diagnostic values for a terminal or
// as JSON, adapted from Heman10x-NGU-threadgraph/internal/reporter/terminal.go's
// fatih/color styling (SPEC_FULL.md §6.4).
package report

import (
	"encoding/json"
	"fmt"
	"go/token"
	"io"

	"github.com/fatih/color"

	"lockcheck/pkg/lockcheck"
)

var (
	headerColor = color.New(color.FgRed, color.Bold)
	classColor  = color.New(color.FgYellow, color.Bold)
	posColor    = color.New(color.FgCyan)
	labelColor  = color.New(color.Faint)
)

// Terminal renders diags to w as human-readable, colored text: one block
// per diagnostic giving the two-span explanation spec.md requires — the
// class first locked ("parent"), and the call that can reach it again
// out of order ("child").
func Terminal(w io.Writer, fset *token.FileSet, diags []lockcheck.Diagnostic) {
	if len(diags) == 0 {
		fmt.Fprintln(w, color.GreenString("lockcheck: no lock-order inversions found"))
		return
	}

	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(w)
		}
		headerColor.Fprintf(w, "lock-order inversion")
		fmt.Fprintf(w, " (target %s)\n", d.Target)

		labelColor.Fprint(w, "  first locked: ")
		classColor.Fprint(w, d.ParentClass)
		fmt.Fprint(w, " at ")
		posColor.Fprintln(w, fset.Position(d.ParentPos).String())

		labelColor.Fprint(w, "  deadlock may occur locking: ")
		classColor.Fprint(w, d.ChildClass)
		fmt.Fprint(w, " at ")
		posColor.Fprintln(w, fset.Position(d.ChildPos).String())
	}
}

// jsonDiagnostic is the stable wire shape for --format json, resolving
// token.Pos to file:line:col strings since raw offsets aren't portable
// across runs.
type jsonDiagnostic struct {
	Target      string `json:"target"`
	ParentClass string `json:"parent_class"`
	ChildClass  string `json:"child_class"`
	ParentPos   string `json:"parent_pos"`
	ChildPos    string `json:"child_pos"`
}

// JSON renders diags to w as a JSON array, one object per diagnostic.
func JSON(w io.Writer, fset *token.FileSet, diags []lockcheck.Diagnostic) error {
	out := make([]jsonDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, jsonDiagnostic{
			Target:      d.Target,
			ParentClass: d.ParentClass,
			ChildClass:  d.ChildClass,
			ParentPos:   fset.Position(d.ParentPos).String(),
			ChildPos:    fset.Position(d.ChildPos).String(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
