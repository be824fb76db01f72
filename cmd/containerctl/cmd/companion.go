package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forensiccase/containerctl/internal/companionlog"
)

func init() {
	companionCmd := &cobra.Command{
		Use:   "companion <path>",
		Short: "Discover and parse a container's sidecar companion log",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompanion,
	}
	rootCmd.AddCommand(companionCmd)
}

func runCompanion(cmd *cobra.Command, args []string) error {
	found, err := companionlog.Discover(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(found); err != nil {
		return fmt.Errorf("containerctl: encode companion log: %w", err)
	}
	return nil
}
