package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// outputJSON switches every command from styled text to machine-readable
// JSON, set from the root --json flag.
var outputJSON bool

func SetJSONOutput(enabled bool) {
	outputJSON = enabled
}

// PrintJSON writes data as indented JSON when JSON mode is on. Commands call
// it first and return early when it reports true.
func PrintJSON(data interface{}) bool {
	if !outputJSON {
		return false
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(data)
	return true
}

func PrintSuccess(msg string) {
	fmt.Printf("  %s %s\n", SuccessStyle.Render(SymbolSuccess), msg)
}

func PrintError(err error) {
	fmt.Printf("  %s %s\n", ErrorStyle.Render(SymbolError), ErrorStyle.Render(err.Error()))
}

func PrintWarning(msg string) {
	fmt.Printf("  %s %s\n", WarningStyle.Render(SymbolWarning), WarningStyle.Render(msg))
}

func PrintInfo(msg string) {
	fmt.Printf("  %s %s\n", InfoStyle.Render(SymbolInfo), msg)
}

// PrintHint prints a follow-up suggestion, like the login hint after an
// unauthenticated session show.
func PrintHint(msg string) {
	fmt.Printf("\n  %s\n", HintStyle.Render(msg))
}

func PrintHeader(title string) {
	fmt.Printf("\n  %s\n\n", BoldStyle.Render(title))
}

// PrintKeyValue aligns label columns across the status and session views.
func PrintKeyValue(key, value string) {
	fmt.Printf("  %s %s\n", KeyStyle.Render(key), value)
}

func PrintKeyValueStyled(key, value string, valueStyle lipgloss.Style) {
	fmt.Printf("  %s %s\n", KeyStyle.Render(key), valueStyle.Render(value))
}

func PrintNewline() {
	fmt.Println()
}

// Table renders column-aligned rows, used by the analyses listing. Widths
// grow to the longest cell seen per column.
type Table struct {
	Headers []string
	Rows    [][]string
	Widths  []int
}

func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{
		Headers: headers,
		Widths:  widths,
	}
}

// AddRow appends a row, padding short rows to the header count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
			if len(cells[i]) > t.Widths[i] {
				t.Widths[i] = len(cells[i])
			}
		}
	}
	t.Rows = append(t.Rows, row)
}

// Print renders the table to stdout. An empty table prints nothing.
func (t *Table) Print() {
	if len(t.Rows) == 0 {
		return
	}

	fmt.Print("  ")
	for i, h := range t.Headers {
		style := TableHeaderStyle.Width(t.Widths[i] + 2)
		fmt.Print(style.Render(h))
	}
	fmt.Println()

	fmt.Print("  ")
	for i := range t.Headers {
		separator := strings.Repeat("─", t.Widths[i])
		fmt.Print(DimStyle.Render(separator), "  ")
	}
	fmt.Println()

	for _, row := range t.Rows {
		fmt.Print("  ")
		for i, cell := range row {
			style := TableCellStyle.Width(t.Widths[i] + 2)
			fmt.Print(style.Render(cell))
		}
		fmt.Println()
	}
}

// FormatRelativeTime renders analysis and session timestamps as "2h ago"
// style strings; the zero time shows as a dash.
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// Truncate caps a string for table cells, keeping an ellipsis when there is
// room for one.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
