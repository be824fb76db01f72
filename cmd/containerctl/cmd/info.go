package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forensiccase/containerctl/internal/container"
)

var (
	infoIncludeTree bool
	infoFast        bool
)

func init() {
	infoCmd := &cobra.Command{
		Use:   "info <path>",
		Short: "Print a container's full descriptor as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
	infoCmd.Flags().BoolVar(&infoIncludeTree, "tree", false, "include the AD1 item tree (ignored for other formats)")
	infoCmd.Flags().BoolVar(&infoFast, "fast", false, "header-only open tolerating missing non-first segments")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]

	var (
		info *container.Info
		err  error
	)
	if infoFast {
		info, err = container.InfoFast(path)
	} else {
		info, err = container.Info(path, infoIncludeTree, cfg)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(info); err != nil {
		return fmt.Errorf("containerctl: encode info: %w", err)
	}
	return nil
}
