package inspect

import (
	"fmt"
	"io"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/VolaTeQ/litchitool/internal/mission"
)

const (
	colorReset = "\x1b[0m"
	colorCyan  = "\x1b[36m"
	colorGray  = "\x1b[90m"
)

// Run shows m in a full-screen TUI until the user quits.
func Run(m *mission.Mission, name string, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(newModel(m, name), opts...).Run()
	return err
}

// Render writes a plain tabular summary of m, for pipes and dumb
// terminals. color enables ANSI highlighting.
func Render(w io.Writer, m *mission.Mission, name string, color bool) error {
	hi, dim, reset := "", "", ""
	if color {
		hi, dim, reset = colorCyan, colorGray, colorReset
	}
	cfg := m.Config()

	fmt.Fprintf(w, "%sMission %s%s\n", hi, name, reset)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Heading mode:\t%s\n", cfg.HeadingMode)
	fmt.Fprintf(tw, "Finish action:\t%s\n", cfg.FinishAction)
	fmt.Fprintf(tw, "Path mode:\t%s\n", cfg.PathMode)
	fmt.Fprintf(tw, "Cruising speed:\t%.1f\n", cfg.CruisingSpeed)
	fmt.Fprintf(tw, "RC speed:\t%.1f\n", cfg.RCSpeed)
	fmt.Fprintf(tw, "Repeat:\t%d\n", cfg.Repeat)
	fmt.Fprintf(tw, "Photo interval:\t%s\n", cfg.PhotoInterval)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%sWaypoints%s\n", hi, reset)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	cols := waypointColumns()
	for i, c := range cols {
		sep := "\t"
		if i == len(cols)-1 {
			sep = "\n"
		}
		fmt.Fprintf(tw, "%s%s%s%s", dim, c.Title, reset, sep)
	}
	for _, row := range waypointRows(m.Waypoints()) {
		for i, cell := range row {
			sep := "\t"
			if i == len(row)-1 {
				sep = "\n"
			}
			fmt.Fprintf(tw, "%s%s", cell, sep)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	pois := m.POIs()
	if len(pois) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\n%sPOIs%s\n", hi, reset)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s#\tLat\tLon\tAlt\tMode%s\n", dim, reset)
	for i, p := range pois {
		fmt.Fprintf(tw, "%d\t%.6f\t%.6f\t%.1f\t%s\n", i+1, p.Coordinate.Lat, p.Coordinate.Lon, p.Altitude, p.AltitudeMode)
	}
	return tw.Flush()
}
