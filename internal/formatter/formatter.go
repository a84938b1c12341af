// package formatter renders run summaries and failure lists for operator review (styled text, plain text, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dashed/tbsync/internal/tasks"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// SummaryText renders a RunSummary as plain text.
//
// The layout is identical for simulate and live runs; only the mode label
// and outcome values differ, so a dry run previews exactly what a live run
// would print.
func SummaryText(s *tasks.RunSummary) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Run %s (%s)\n", s.RunID, s.Mode)
	fmt.Fprintf(&buf, "Started:  %s\n", s.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Duration: %s\n\n", s.Duration.Round(time.Millisecond))

	fmt.Fprintf(&buf, "Backup records: %d\n", s.Total)
	fmt.Fprintf(&buf, "  Added:              %d\n", s.Added)
	fmt.Fprintf(&buf, "    Succeeded:        %d\n", s.Succeeded)
	fmt.Fprintf(&buf, "    Failed:           %d\n", s.Failed)
	fmt.Fprintf(&buf, "  Skipped duplicates: %d\n", s.SkippedDuplicate)
	fmt.Fprintf(&buf, "  Skipped invalid:    %d\n", s.SkippedInvalid)

	if len(s.Failures) > 0 {
		buf.WriteString("\nFailures:\n")
		for _, f := range s.Failures {
			fmt.Fprintf(&buf, "  %d. %s%s: %s%s\n", f.Index+1, f.Hash, nameSuffix(f.Name), f.Reason, retrySuffix(f.Retries))
		}
	}

	if len(s.Invalid) > 0 {
		buf.WriteString("\nInvalid records:\n")
		for _, f := range s.Invalid {
			fmt.Fprintf(&buf, "  %d.%s %s\n", f.Index+1, nameSuffix(f.Name), f.Reason)
		}
	}

	return buf.Bytes()
}

// SummaryStyled renders a RunSummary with terminal styling.
func SummaryStyled(s *tasks.RunSummary) []byte {
	var buf bytes.Buffer

	buf.WriteString(titleStyle.Render(fmt.Sprintf("Run %s (%s)", s.RunID, s.Mode)))
	buf.WriteString("\n")
	buf.WriteString(dimStyle.Render(fmt.Sprintf("Started %s, took %s", s.StartedAt.UTC().Format(time.RFC3339), s.Duration.Round(time.Millisecond))))
	buf.WriteString("\n\n")

	fmt.Fprintf(&buf, "Backup records: %d\n", s.Total)
	fmt.Fprintf(&buf, "  Added:              %s\n", okStyle.Render(strconv.Itoa(s.Added)))
	fmt.Fprintf(&buf, "    Succeeded:        %s\n", okStyle.Render(strconv.Itoa(s.Succeeded)))
	fmt.Fprintf(&buf, "    Failed:           %s\n", errStyle.Render(strconv.Itoa(s.Failed)))
	fmt.Fprintf(&buf, "  Skipped duplicates: %s\n", warnStyle.Render(strconv.Itoa(s.SkippedDuplicate)))
	fmt.Fprintf(&buf, "  Skipped invalid:    %s\n", warnStyle.Render(strconv.Itoa(s.SkippedInvalid)))

	if len(s.Failures) > 0 {
		buf.WriteString("\n")
		buf.WriteString(errStyle.Render("Failures:"))
		buf.WriteString("\n")
		for _, f := range s.Failures {
			fmt.Fprintf(&buf, "  %d. %s%s: %s%s\n", f.Index+1, f.Hash, nameSuffix(f.Name), f.Reason, retrySuffix(f.Retries))
		}
	}

	if len(s.Invalid) > 0 {
		buf.WriteString("\n")
		buf.WriteString(warnStyle.Render("Invalid records:"))
		buf.WriteString("\n")
		for _, f := range s.Invalid {
			fmt.Fprintf(&buf, "  %d.%s %s\n", f.Index+1, nameSuffix(f.Name), f.Reason)
		}
	}

	return buf.Bytes()
}

func nameSuffix(name string) string {
	if name == "" {
		return ""
	}
	return " (" + name + ")"
}

func retrySuffix(retries int) string {
	if retries == 0 {
		return ""
	}
	return fmt.Sprintf(" [after %d retries]", retries)
}

// FailuresToCSV converts a summary's failed and invalid records to CSV with
// columns: Index, Kind, Hash, Name, Reason, Retries. Rows keep backup order
// within each kind.
func FailuresToCSV(s *tasks.RunSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "Kind", "Hash", "Name", "Reason", "Retries"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	write := func(kind string, f tasks.Failure) error {
		record := []string{
			strconv.Itoa(f.Index),
			kind,
			f.Hash,
			f.Name,
			f.Reason,
			strconv.Itoa(f.Retries),
		}
		return writer.Write(record)
	}

	for _, f := range s.Failures {
		if err := write("failed", f); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	for _, f := range s.Invalid {
		if err := write("invalid", f); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteFailuresCSV exports a summary's failure list to a CSV file.
func WriteFailuresCSV(s *tasks.RunSummary, path string) error {
	data, err := FailuresToCSV(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}
