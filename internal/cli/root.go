// Package cli holds the ligpatch command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rmera/ligpatch/internal/config"
	"github.com/rmera/ligpatch/internal/logging"
	"github.com/rmera/ligpatch/patcher"
)

// Version is set at build time with -ldflags "-X".
var Version = "dev"

// PatchOptions holds the flags of the patch command.
type PatchOptions struct {
	ConfigPath   string
	OutputDir    string
	DryRun       bool
	Verbose      bool
	BackupSuffix string
	UpdateIndex  bool
}

// NewRootCommand returns the ligpatch command with its subcommands.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ligpatch",
		Short: "Add a ligand to a CHARMM-GUI Gromacs membrane system",
		Long: `ligpatch adds a ligand prepared by the CHARMM-GUI ligand reader to a
Gromacs system built by the CHARMM-GUI membrane builder. It appends the ligand
coordinates, includes the ligand parameters in the topology, and turns on
ligand position restraints in the equilibration stages.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewPatchCommand())
	return cmd
}

// NewPatchCommand returns the patch subcommand.
func NewPatchCommand() *cobra.Command {
	opts := &PatchOptions{}
	cmd := &cobra.Command{
		Use:   "patch <system_dir> <ligand_dir>",
		Short: "Patch a system directory with a ligand",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(cmd, opts, args[0], args[1])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.OutputDir, "output", "o", "", "write the patched system to this directory instead of in place")
	f.BoolVar(&opts.DryRun, "dry-run", false, "show what would change without writing anything")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	f.StringVar(&opts.BackupSuffix, "backup-suffix", config.DefaultBackupSuffix, "suffix of backup files")
	f.BoolVar(&opts.UpdateIndex, "update-index", false, "add the ligand atoms to the solute group of index.ndx")
	f.StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")
	return cmd
}

// loadConfig reads the configuration and applies the flags that were
// given explicitly on top of it.
func loadConfig(cmd *cobra.Command, opts *PatchOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("backup-suffix") {
		cfg.BackupSuffix = opts.BackupSuffix
	}
	if f.Changed("update-index") {
		cfg.Index.Update = opts.UpdateIndex
	}
	if opts.Verbose {
		cfg.Log.Level = logging.LevelDebug
	}
	return cfg, cfg.Validate()
}

func runPatch(cmd *cobra.Command, opts *PatchOptions, sysDir, ligDir string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := patcher.New(patcher.Options{
		SystemDir: sysDir,
		LigandDir: ligDir,
		OutputDir: opts.OutputDir,
		DryRun:    opts.DryRun,
	}, cfg, log)
	rep, err := p.Run(ctx)
	if err != nil {
		return err
	}
	PrintReport(cmd.OutOrStdout(), rep)
	return nil
}

// PrintReport writes a summary of rep for the user.
func PrintReport(w io.Writer, rep *patcher.Report) {
	if rep.DryRun {
		fmt.Fprintln(w, "Dry run: no files were changed.")
	}
	fmt.Fprintf(w, "Ligand:       %s (%d atoms, centroid %.3f %.3f %.3f nm)\n",
		rep.Ligand, rep.AtomsAdded, rep.Centroid.X, rep.Centroid.Y, rep.Centroid.Z)
	fmt.Fprintf(w, "Atoms:        %d -> %d (ligand atoms %d-%d)\n", rep.OldAtoms, rep.NewAtoms, rep.FirstAtom, rep.LastAtom)
	fmt.Fprintf(w, "Parameters:   %s -> %s\n", rep.ParameterFile, rep.TopologyParameters)
	fmt.Fprintf(w, "Restraints:   %d equilibration files\n", len(rep.RestraintFiles))
	fmt.Fprintf(w, "System:       %s\n", rep.WorkDir)
	for _, f := range rep.Written {
		fmt.Fprintf(w, "  wrote  %s\n", f)
	}
	for _, b := range rep.Backups {
		fmt.Fprintf(w, "  backup %s\n", b)
	}
	if !rep.IndexUpdated {
		fmt.Fprintf(w, "Index:        add atoms %d-%d to the solute group by hand, or rerun with --update-index\n",
			rep.FirstAtom, rep.LastAtom)
	}
	if !rep.DryRun {
		fmt.Fprintln(w, "Ligand added.")
	}
}

// Execute runs the root command on the process arguments. Errors are
// printed to stderr.
func Execute() error {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
