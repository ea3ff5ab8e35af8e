package main

import (
	"github.com/spf13/cobra"

	"github.com/VolaTeQ/litchitool/internal/history"
	"github.com/VolaTeQ/litchitool/internal/logging"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Work with conversion history logs",
}

var historyReplayCmd = &cobra.Command{
	Use:   "replay <history.jsonl>",
	Short: "Replay a history log into the configured writers",
	Long:  "replay feeds entries from a JSONL history file back into GreptimeDB (GREPTIMEDB_ENDPOINT) or STDERR with --print-history.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := history.ReplayFile(cmd.Context(), args[0], current.history)
		logging.FromContext(cmd.Context()).Info("replayed history", "input", args[0], "entries", n)
		return err
	},
}

func init() {
	historyCmd.AddCommand(historyReplayCmd)
}
