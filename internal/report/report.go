// Package report renders benchmark results as a terminal table, YAML or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/pavanmanishd/stackvec/internal/benchsuite"
	"github.com/pavanmanishd/stackvec/internal/config"
)

// Write renders results to w in the given format. Colour applies to the
// table format only.
func Write(w io.Writer, format string, results []benchsuite.Result, colorize bool) error {
	switch format {
	case config.OutputTable, "":
		return writeTable(w, results, colorize)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(document{Results: results}); err != nil {
			return errors.Wrap(err, "encode yaml report")
		}
		return errors.Wrap(enc.Close(), "flush yaml report")
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(document{Results: results}), "encode json report")
	default:
		return errors.Errorf("unsupported report format %q", format)
	}
}

type document struct {
	Results []benchsuite.Result `json:"results" yaml:"results"`
}

// ColorEnabled resolves a colour mode of auto, always or never for w.
func ColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTerminalWriter(w)
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type align int

const (
	alignLeft align = iota
	alignRight
)

var columns = []struct {
	title string
	align align
}{
	{"SCENARIO", alignLeft},
	{"SIZE", alignRight},
	{"N", alignRight},
	{"NS/OP", alignRight},
	{"B/OP", alignRight},
	{"ALLOCS/OP", alignRight},
	{"VS SLICE", alignRight},
}

func writeTable(w io.Writer, results []benchsuite.Result, colorize bool) error {
	header := color.New(color.Bold, color.Underline)
	faster := color.New(color.FgGreen)
	slower := color.New(color.FgRed)
	for _, c := range []*color.Color{header, faster, slower} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Scenario,
			sizeCell(r.Size),
			strconv.Itoa(r.N),
			strconv.FormatFloat(r.NsPerOp, 'f', 2, 64),
			strconv.FormatInt(r.BytesPerOp, 10),
			strconv.FormatInt(r.AllocsPerOp, 10),
			relativeCell(r.Relative),
		})
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	titles := make([]string, len(columns))
	for i, c := range columns {
		titles[i] = header.Sprint(pad(c.title, widths[i], c.align))
	}
	if _, err := fmt.Fprintln(w, strings.Join(titles, "  ")); err != nil {
		return errors.Wrap(err, "write table header")
	}

	for ri, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = pad(cell, widths[i], columns[i].align)
		}
		last := len(cells) - 1
		switch rel := results[ri].Relative; {
		case rel > 0 && rel < 1:
			cells[last] = faster.Sprint(cells[last])
		case rel > 1:
			cells[last] = slower.Sprint(cells[last])
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
			return errors.Wrap(err, "write table row")
		}
	}
	return nil
}

func sizeCell(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func relativeCell(rel float64) string {
	if rel == 0 {
		return "-"
	}
	return strconv.FormatFloat(rel, 'f', 2, 64) + "x"
}

func pad(text string, width int, a align) string {
	gap := width - runewidth.StringWidth(text)
	if gap <= 0 {
		return text
	}
	if a == alignRight {
		return strings.Repeat(" ", gap) + text
	}
	return text + strings.Repeat(" ", gap)
}
