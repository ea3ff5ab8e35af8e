package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/VolaTeQ/litchitool/internal/history"
	"github.com/VolaTeQ/litchitool/internal/kmlexport"
	"github.com/VolaTeQ/litchitool/internal/logging"
)

var kmlName string

var kmlCmd = &cobra.Command{
	Use:   "kml <input.csv> <output.kml>",
	Short: "Export a CSV mission as KML",
	Long:  "kml renders the waypoints and POIs of a CSV mission as KML for preview in Google Earth. Use - as output to write to STDOUT.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, out := args[0], args[1]
		m, err := current.readMission(in)
		if err != nil {
			return err
		}
		name := kmlName
		if name == "" {
			name = missionName(in)
		}

		var w io.Writer = os.Stdout
		if out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		cw := &countingWriter{w: w}
		if err := kmlexport.Write(cw, m, name); err != nil {
			return err
		}
		logging.FromContext(cmd.Context()).Info("exported KML", "input", in, "output", out, "waypoints", m.NumWaypoints())
		current.record(cmd.Context(), history.NewEntry("kml", in, name, m, cw.n))
		return nil
	},
}

func init() {
	kmlCmd.Flags().StringVar(&kmlName, "name", "", "Document name (default: input file name)")
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
