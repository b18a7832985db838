package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gofmask/internal/dispatch"
	"gofmask/internal/services"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

var titleCaser = cases.Title(language.English)

// renderSummary prints one row per product followed by a totals line.
func renderSummary(summary dispatch.Summary, colorize bool) string {
	rows := make([][]string, 0, len(summary.Results))
	for i, r := range summary.Results {
		exit := ""
		if r.ToolExit >= 0 && r.Status != dispatch.StatusSkipped {
			exit = strconv.Itoa(r.ToolExit)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			filepath.Base(r.Job.Source),
			statusLabel(string(r.Status), colorize),
			exit,
			resultDetail(r),
			formatDuration(r.Duration),
		})
	}

	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"#", "Product", "Status", "Exit", "Cloud mask / error", "Duration"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
	))
	fmt.Fprintf(&b, "\nRun %s: %d succeeded, %d failed, %d skipped with %d %s in %s",
		summary.RunID,
		summary.Count(dispatch.StatusSucceeded),
		summary.Count(dispatch.StatusFailed),
		summary.Count(dispatch.StatusSkipped),
		summary.Workers,
		plural(summary.Workers, "worker", "workers"),
		formatDuration(summary.Duration),
	)
	return b.String()
}

func resultDetail(r dispatch.Result) string {
	switch {
	case r.Err != nil:
		if kind := services.Kind(r.Err); kind != "" && r.Status == dispatch.StatusFailed {
			return kind + ": " + r.Err.Error()
		}
		return r.Err.Error()
	case r.Artifact != "":
		return r.Artifact
	default:
		return "left in " + r.WorkDir
	}
}

func statusLabel(status string, colorize bool) string {
	label := titleCaser.String(status)
	if !colorize {
		return label
	}
	switch dispatch.Status(status) {
	case dispatch.StatusSucceeded:
		return ansiGreen + label + ansiReset
	case dispatch.StatusFailed:
		return ansiRed + label + ansiReset
	case dispatch.StatusSkipped:
		return ansiYellow + label + ansiReset
	default:
		return label
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
