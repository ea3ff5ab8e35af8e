package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/VolaTeQ/litchitool/internal/binfmt"
	"github.com/VolaTeQ/litchitool/internal/history"
	"github.com/VolaTeQ/litchitool/internal/logging"
)

var (
	convertOutDir string
	convertJobs   int
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.csv> <output.bin> | convert --out-dir DIR <input.csv>...",
	Short: "Convert a CSV file to a Litchi mission file",
	Long:  "convert reads Litchi waypoint CSV exports and writes binary mission files. Use - as output to write to STDOUT.",
	Args: func(cmd *cobra.Command, args []string) error {
		if convertOutDir != "" {
			return cobra.MinimumNArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if convertOutDir == "" {
			return convertFile(cmd.Context(), args[0], args[1])
		}
		return convertAll(cmd.Context(), args, convertOutDir, convertJobs)
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertOutDir, "out-dir", "", "Convert every input into DIR/<name>.bin")
	convertCmd.Flags().IntVarP(&convertJobs, "jobs", "j", runtime.NumCPU(), "Parallel conversions with --out-dir")
}

func convertFile(ctx context.Context, in, out string) error {
	log := logging.FromContext(ctx)
	m, err := current.readMission(in)
	if err != nil {
		return err
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
	n, err := binfmt.WriteTo(w, m)
	if err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	log.Info("converted mission", "input", in, "output", out, "waypoints", m.NumWaypoints(), "pois", m.NumPOIs(), "bytes", n)
	current.record(ctx, history.NewEntry("convert", in, missionName(in), m, int(n)))
	return nil
}

func convertAll(ctx context.Context, inputs []string, dir string, jobs int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for _, in := range inputs {
		out := filepath.Join(dir, missionName(in)+".bin")
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return convertFile(ctx, in, out)
		})
	}
	return g.Wait()
}

// missionName derives a mission name from a file path.
func missionName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
