package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forensiccase/containerctl/internal/container"
)

func init() {
	extractCmd := &cobra.Command{
		Use:   "extract <path> <output-dir>",
		Short: "Extract a container's payload to output-dir",
		Long: `extract writes AD1 logical items to disk preserving their subtree
and recovered access/modified times, or writes RAW/EWF as a
reconstructed raw image. output-dir is validated against a
path-traversal guard before anything is written.`,
		Args: cobra.ExactArgs(2),
		RunE: runExtract,
	}
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	path, outputDir := args[0], args[1]
	if err := container.Extract(path, outputDir, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "extracted %s to %s\n", path, outputDir)
	return nil
}
