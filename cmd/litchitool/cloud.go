package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/VolaTeQ/litchitool/internal/binfmt"
	"github.com/VolaTeQ/litchitool/internal/history"
	"github.com/VolaTeQ/litchitool/internal/litchiapi"
	"github.com/VolaTeQ/litchitool/internal/logging"
)

var (
	uploadName   string
	uploadNoSync bool
	listJSON     bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <input.csv>",
	Short: "Upload a CSV file to the Litchi cloud",
	Long:  "upload converts a CSV mission, stores it in the Litchi mission hub and syncs the account's devices.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, err := current.readMission(args[0])
		if err != nil {
			return err
		}
		name := uploadName
		if name == "" {
			name = "mission-" + uuid.NewString()[:8]
		}

		api, err := login(ctx)
		if err != nil {
			return err
		}
		id, err := api.Upload(ctx, m, name)
		if err != nil {
			return fmt.Errorf("upload mission: %w", err)
		}
		logging.FromContext(ctx).Info("uploaded mission", "name", name, "object_id", id, "waypoints", m.NumWaypoints())

		e := history.NewEntry("upload", args[0], name, m, binfmt.Size(m))
		e.ObjectID = string(id)
		current.record(ctx, e)

		if !uploadNoSync {
			if err := api.SyncDevices(ctx); err != nil {
				return fmt.Errorf("sync devices: %w", err)
			}
		}
		fmt.Println(id)
		return nil
	},
}

var missionsCmd = &cobra.Command{
	Use:   "missions",
	Short: "Manage missions stored in the Litchi cloud",
}

var missionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded missions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api, err := login(ctx)
		if err != nil {
			return err
		}
		missions, err := api.Missions(ctx)
		if err != nil {
			return err
		}
		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(missions)
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tLAT\tLON")
		for _, m := range missions {
			fmt.Fprintf(tw, "%s\t%s\t%.6f\t%.6f\n", m.ObjectID, m.Name, m.Location.Lat, m.Location.Lon)
		}
		return tw.Flush()
	},
}

var missionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete uploaded missions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api, err := login(ctx)
		if err != nil {
			return err
		}
		var errs []error
		for _, id := range args {
			if err := api.DeleteMission(ctx, litchiapi.ObjectID(id)); err != nil {
				errs = append(errs, fmt.Errorf("delete %s: %w", id, err))
				continue
			}
			logging.FromContext(ctx).Info("deleted mission", "object_id", id)
		}
		return errors.Join(errs...)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push cloud missions to the account's devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api, err := login(ctx)
		if err != nil {
			return err
		}
		return api.SyncDevices(ctx)
	},
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadName, "name", "n", "", "Mission name (default: mission-<random>)")
	uploadCmd.Flags().BoolVar(&uploadNoSync, "no-sync", false, "Do not sync devices after uploading")
	missionsListCmd.Flags().BoolVar(&listJSON, "json", false, "Print missions as JSON")
	missionsCmd.AddCommand(missionsListCmd, missionsDeleteCmd)
}

func login(ctx context.Context) (*litchiapi.Client, error) {
	cfg := current.cfg
	if !cfg.HasCredentials() {
		return nil, errors.New("missing credentials: set account.username and account.password in the config or LITCHI_USERNAME and LITCHI_PASSWORD")
	}
	api, err := litchiapi.Login(ctx, cfg.Account.Username, cfg.Account.Password,
		litchiapi.WithBaseURL(cfg.API.BaseURL),
		litchiapi.WithAppID(cfg.API.AppID),
	)
	if err != nil {
		return nil, fmt.Errorf("authentication with litchi api failed: %w", err)
	}
	return api, nil
}
