// Command containerctl inspects, verifies, and extracts forensic
// evidence containers (AD1, EWF/E01/L01, raw dd images, UFED
// extractions) from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/forensiccase/containerctl/cmd/containerctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
