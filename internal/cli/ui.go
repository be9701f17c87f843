package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/netsmith/pkg/geometry"
	"github.com/matzehuels/netsmith/pkg/topology"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, connections
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - routers
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleRouter = lipgloss.NewStyle().Foreground(colorBlue)
	stylePort   = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printRect prints a labeled rectangle, or "none" when ok is false.
func printRect(key string, r geometry.Rect, ok bool) {
	if !ok {
		printKeyValue(key, StyleDim.Render("none"))
		return
	}
	printKeyValue(key, StyleNumber.Render(r.String()))
}

// =============================================================================
// Record Tables
// =============================================================================

// recordRow is one line of a record table.
type recordRow struct {
	kind string // "router" or "port"
	rec  topology.Record
}

func snapshotRows(snap topology.Snapshot, routers, ports bool) []recordRow {
	var rows []recordRow
	if routers {
		for _, r := range snap.Routers {
			rows = append(rows, recordRow{kind: topology.KindRouters, rec: r.Record})
		}
	}
	if ports {
		for _, p := range snap.Ports {
			rows = append(rows, recordRow{kind: topology.KindPorts, rec: p.Record})
		}
	}
	return rows
}

// recordTable renders rows with one column per coordinate. highlight marks
// the row index drawn bold, or -1 for none.
func recordTable(rows []recordRow, highlight int) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{
			r.rec.ID.String(),
			strconv.Itoa(r.rec.X),
			strconv.Itoa(r.rec.Y),
			strconv.Itoa(r.rec.Width),
			strconv.Itoa(r.rec.Height),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "X", "Y", "W", "H").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row < 0 || row >= len(rows) {
				return lipgloss.NewStyle()
			}
			base := stylePort
			if rows[row].kind == topology.KindRouters {
				base = styleRouter
			}
			if col > 0 {
				base = base.Align(lipgloss.Right)
			}
			if row == highlight {
				base = base.Bold(true)
			}
			return base
		}).
		Render()
}
