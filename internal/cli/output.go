package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	bold       = color.New(color.Bold)
	successFmt = color.New(color.FgGreen)
	errorFmt   = color.New(color.FgRed)
	mutedFmt   = color.New(color.FgHiBlack)
)

// printer renders command results as colored text or as JSON.
type printer struct {
	out    io.Writer
	errOut io.Writer
	format string
}

func newPrinter(out, errOut io.Writer, format string) *printer {
	return &printer{out: out, errOut: errOut, format: format}
}

func (p *printer) JSON() bool { return p.format == "json" }

func (p *printer) Success(format string, args ...interface{}) {
	if p.JSON() {
		return
	}
	successFmt.Fprintf(p.out, "✓ "+format+"\n", args...)
}

func (p *printer) Error(format string, args ...interface{}) {
	errorFmt.Fprintf(p.errOut, "✗ "+format+"\n", args...)
}

// Object prints v as indented JSON in json mode, otherwise calls text.
func (p *printer) Object(v interface{}, text func(w io.Writer)) error {
	if p.JSON() {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.out, string(b))
		return err
	}
	text(p.out)
	return nil
}

// Table prints rows aligned in columns.
func (p *printer) Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
