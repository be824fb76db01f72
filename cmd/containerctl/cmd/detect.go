package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forensiccase/containerctl/internal/container"
)

func init() {
	detectCmd := &cobra.Command{
		Use:   "detect <path>",
		Short: "Identify which container format a file belongs to",
		Args:  cobra.ExactArgs(1),
		RunE:  runDetect,
	}
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	kind, err := container.Detect(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), kind)
	return nil
}
