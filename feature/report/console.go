package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"inventory-reconciler/core/reconcile"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	colorGreen   = "#50FA7B"
	colorRed     = "#FF5555"
	colorYellow  = "#F1FA8C"
	colorPurple  = "#BD93F9"
	colorComment = "#6272A4"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorPurple))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorComment))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorComment))
)

// ConsoleSink renders a result for a terminal.
type ConsoleSink struct {
	Out io.Writer
}

// NewConsoleSink creates a sink writing to out.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{Out: out}
}

// Write implements Sink.
func (s *ConsoleSink) Write(_ context.Context, result *reconcile.Result) error {
	_, err := io.WriteString(s.Out, Render(result))
	return err
}

// Render returns the terminal rendering of result.
func Render(result *reconcile.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Inventory reconciliation: " + result.Organization))
	b.WriteString("\n")
	if result.RunID != "" {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("run %s at %s", result.RunID, result.GeneratedAt.Format("2006-01-02 15:04:05 MST"))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(sourcesTable(result).String())
	b.WriteString("\n\n")
	b.WriteString(comparisonsTable(result).String())
	b.WriteString("\n")

	rows := result.Rows()
	if len(rows) > 0 {
		b.WriteString("\n")
		b.WriteString(rowsTable(rows).String())
		b.WriteString("\n")
	}

	for _, c := range result.Comparisons {
		if c.Status == reconcile.StatusIndeterminate {
			b.WriteString(warnStyle.Render(fmt.Sprintf("! %s is indeterminate: %s", c.Name, c.Reason)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func sourcesTable(result *reconcile.Result) *table.Table {
	t := newTable("Source", "Status", "Devices", "Error")
	for _, s := range result.Sources {
		status := okStyle.Render("ok")
		devices := strconv.Itoa(s.Devices)
		if !s.OK {
			status = failStyle.Render(s.Kind)
			devices = "-"
		}
		t.Row(s.Source.DisplayName(), status, devices, s.Error)
	}
	return t
}

func comparisonsTable(result *reconcile.Result) *table.Table {
	t := newTable("Comparison", "Source", "Against", "Status", "Missing")
	for _, c := range result.Comparisons {
		status := okStyle.Render(string(c.Status))
		missing := strconv.Itoa(len(c.Missing))
		if c.Status == reconcile.StatusIndeterminate {
			status = warnStyle.Render(string(c.Status))
			missing = "?"
		}
		t.Row(c.Name, c.Source.DisplayName(), c.Against.DisplayName(), status, missing)
	}
	return t
}

func rowsTable(rows []reconcile.Row) *table.Table {
	t := newTable(CSVHeader...)
	for _, r := range rows {
		t.Row(r.ComputerName, r.MissingFrom)
	}
	return t
}
