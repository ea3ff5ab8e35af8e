package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/VolaTeQ/litchitool/internal/inspect"
)

var inspectPlain bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.csv>",
	Short: "Browse a CSV mission in the terminal",
	Long:  "inspect shows the mission settings, waypoints and POIs of a CSV mission. Falls back to a plain table when STDOUT is not a terminal.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := current.readMission(args[0])
		if err != nil {
			return err
		}
		name := missionName(args[0])
		tty := term.IsTerminal(int(os.Stdout.Fd()))
		if inspectPlain || !tty {
			return inspect.Render(os.Stdout, m, name, tty)
		}
		return inspect.Run(m, name)
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectPlain, "plain", false, "Print a plain table instead of the interactive view")
}
