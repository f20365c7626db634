package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"autobot/internal/reconcile"
	"autobot/internal/syllabus"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func outcomeStatus(kind reconcile.OutcomeKind) statusKind {
	switch kind {
	case reconcile.OutcomeCreated, reconcile.OutcomeUpdated:
		return statusOK
	case reconcile.OutcomeBlocked:
		return statusWarn
	case reconcile.OutcomeFailed:
		return statusError
	default:
		return statusInfo
	}
}

// progressPrinter is the console reconcile.Observer: one header per meeting
// and one status line per step.
type progressPrinter struct {
	out      io.Writer
	colorize bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out, colorize: shouldColorize(out)}
}

func (p *progressPrinter) OnMeetingStart(_ context.Context, m syllabus.Meeting, index, total int) {
	fmt.Fprintf(p.out, "[%d/%d] %s\n", index+1, total, m)
}

func (p *progressPrinter) OnStepOutcome(_ context.Context, _ syllabus.Meeting, o reconcile.Outcome) {
	message := string(o.Kind)
	if o.Err != nil {
		message += ": " + o.Err.Error()
	} else if o.Detail != "" {
		message += " (" + o.Detail + ")"
	}
	fmt.Fprintln(p.out, renderStatusLine(string(o.Step), outcomeStatus(o.Kind), message, p.colorize))
}

func (p *progressPrinter) OnMeetingDone(context.Context, reconcile.MeetingResult) {}

// reportLines renders the final per-meeting table, totals, and failures.
func reportLines(report reconcile.Report, colorize bool) []string {
	headers := []string{"Meeting"}
	for _, kind := range reconcile.Order {
		headers = append(headers, string(kind))
	}
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		row := []string{res.Meeting.String()}
		for _, kind := range reconcile.Order {
			cell := "-"
			if o, ok := res.Outcome(kind); ok {
				cell = string(o.Kind)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	lines := renderSectionHeader("Summary", colorize)
	if len(rows) > 0 {
		lines = append(lines, renderTable(headers, rows, nil))
	}
	summary := report.Summary()
	kind := statusOK
	if summary[reconcile.OutcomeFailed] > 0 {
		kind = statusError
	}
	lines = append(lines, renderStatusLine("Outcomes", kind, summary.String(), colorize))
	lines = append(lines, renderStatusLine("Duration", statusInfo, report.Duration().Round(time.Millisecond).String(), colorize))
	for _, f := range report.Failed() {
		lines = append(lines, renderStatusLine(string(f.Step), statusError, fmt.Sprintf("%s: %v", f.Meeting, f.Err), colorize))
	}
	return lines
}
