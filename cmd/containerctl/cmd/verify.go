package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forensiccase/containerctl/internal/container"
)

var verifyPerChunk bool

func init() {
	verifyCmd := &cobra.Command{
		Use:   "verify <path> <algorithm>",
		Short: "Verify a container's integrity against its embedded hash",
		Long: `verify streams the container's virtual image (or per-item payloads
for AD1) under the requested hash algorithm and reports a status of
ok, nok, computed, or no_hash per entry.`,
		Args: cobra.ExactArgs(2),
		RunE: runVerify,
	}
	verifyCmd.Flags().BoolVar(&verifyPerChunk, "per-chunk", false, "report one entry per EWF chunk instead of a whole-image digest")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	path, algo := args[0], args[1]

	var (
		entries []container.VerifyEntry
		err     error
	)
	if verifyPerChunk {
		entries, err = container.VerifyChunks(path, algo)
	} else {
		entries, err = container.Verify(path, algo, cfg)
	}
	if err != nil {
		return err
	}

	mismatches := 0
	for _, e := range entries {
		label := e.Path
		if label == "" {
			label = path
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", label, e.Algorithm, e.Status, e.Computed)
		if e.Status == "nok" {
			mismatches++
		}
	}
	if mismatches > 0 {
		return fmt.Errorf("containerctl: %d of %d entries failed verification", mismatches, len(entries))
	}
	return nil
}
