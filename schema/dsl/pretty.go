package dsl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// PrettyPrint writes err with the offending source line and a caret under the
// reported column. Errors without a position are printed as-is.
func PrettyPrint(w io.Writer, err error, src string) {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	red := color.New(color.FgRed, color.Bold)
	blue := color.New(color.FgBlue, color.Bold)

	var perr *Error
	if !errors.As(err, &perr) || perr.Pos.Line == 0 {
		fmt.Fprintf(w, "%s: %v\n", red.Sprint("error"), err)
		return
	}

	fmt.Fprintf(w, "%s: %s\n", red.Sprint("error"), perr.Msg)
	fmt.Fprintf(w, "  %s %s\n", blue.Sprint("-->"), perr.Pos)

	lines := strings.Split(src, "\n")
	if perr.Pos.Line > len(lines) {
		return
	}
	lineNo := fmt.Sprintf("%d", perr.Pos.Line)
	gutter := strings.Repeat(" ", len(lineNo))
	col := perr.Pos.Column
	if col < 1 {
		col = 1
	}

	fmt.Fprintf(w, "%s %s\n", gutter, blue.Sprint("|"))
	fmt.Fprintf(w, "%s %s %s\n", blue.Sprint(lineNo), blue.Sprint("|"), lines[perr.Pos.Line-1])
	fmt.Fprintf(w, "%s %s %s%s\n", gutter, blue.Sprint("|"), strings.Repeat(" ", col-1), red.Sprint("^"))
}
