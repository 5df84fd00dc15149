// Command ligpatch adds a ligand to a CHARMM-GUI Gromacs membrane system.
//
//	ligpatch patch <system_dir> <ligand_dir> [--output DIR] [--dry-run]
package main

import (
	"os"

	"github.com/rmera/ligpatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
