/*
 * patcher.go, part of ligpatch
 *
 * Copyright 2025 Raul Mera A. (rmeraaatacademicosdotutadotcl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

/*
Package patcher adds a ligand to a Gromacs membrane system built by CHARMM-GUI.

A run goes through three stages, in order:

	AddCoordinates    appends the ligand atoms to the coordinate file
	UpdateTopology    copies the ligand parameters and lists the ligand in topol.top
	UpdateRestraints  turns on ligand position restraints for the equilibration
	                  stages, and deals with the index file (UpdateIndex)

Every file is backed up before it is first changed. In dry-run mode nothing
is written; the stages only report what they would do.
*/
package patcher

import (
	"context"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/ligpatch/fileio"
	"github.com/rmera/ligpatch/internal/config"
	"github.com/rmera/ligpatch/internal/errors"
	"github.com/rmera/ligpatch/internal/logging"
	"github.com/rmera/ligpatch/ligand"
)

// Options are the per-run inputs.
type Options struct {
	SystemDir string
	LigandDir string
	// OutputDir, if set and not the system directory, receives a copy of
	// the system, which is then patched instead of the original.
	OutputDir string
	DryRun    bool
}

// Report sums up a run. In dry-run mode it holds the projected values.
type Report struct {
	Ligand        string
	AtomsAdded    int
	OldAtoms      int
	NewAtoms      int
	FirstAtom     int
	LastAtom      int
	Centroid      r3.Vec //nm
	ParameterFile string
	// TopologyParameters is where the parameter file is copied to.
	TopologyParameters string
	RestraintFiles     []string
	IndexUpdated       bool
	Written            []string
	Backups            []string
	WorkDir            string
	DryRun             bool
}

// Patcher runs the stages on one system.
type Patcher struct {
	opts    Options
	cfg     *config.Config
	log     logging.Logger
	workDir string
	lig     *ligand.Ligand
	report  *Report
}

// New returns a Patcher. A nil cfg means the defaults; a nil log, the
// process-wide logger.
func New(opts Options, cfg *config.Config, log logging.Logger) *Patcher {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if log == nil {
		log = logging.Default()
	}
	return &Patcher{
		opts:    opts,
		cfg:     cfg,
		log:     log.Named("patcher"),
		workDir: opts.SystemDir,
		report:  &Report{DryRun: opts.DryRun, WorkDir: opts.SystemDir},
	}
}

func (p *Patcher) sys(rel string) string {
	return filepath.Join(p.workDir, filepath.FromSlash(rel))
}

// Validate checks that every input exists. All the missing ones are
// reported in a single error.
func (p *Patcher) Validate() error {
	var missing []string
	sysOK := fileio.IsDir(p.opts.SystemDir)
	if !sysOK {
		missing = append(missing, "system directory "+p.opts.SystemDir)
	}
	ligOK := fileio.IsDir(p.opts.LigandDir)
	if !ligOK {
		missing = append(missing, "ligand directory "+p.opts.LigandDir)
	}
	if sysOK {
		s := p.cfg.System
		for _, rel := range []string{s.Coordinates, s.Topology, s.Index} {
			name := filepath.Join(p.opts.SystemDir, filepath.FromSlash(rel))
			if !fileio.IsFile(name) {
				missing = append(missing, name)
			}
		}
	}
	if ligOK {
		l := p.cfg.Ligand
		for _, rel := range []string{l.Structure, l.Metadata} {
			name := filepath.Join(p.opts.LigandDir, filepath.FromSlash(rel))
			if _, ok := fileio.Locate(name); !ok {
				missing = append(missing, name)
			}
		}
		dir := filepath.Join(p.opts.LigandDir, filepath.FromSlash(l.ParameterDir))
		if _, err := ligand.FindParameterFile(dir, l.ParameterExt, l.GenericParameterFiles); err != nil {
			missing = append(missing, filepath.Join(dir, "*"+l.ParameterExt))
		}
	}
	if len(missing) > 0 {
		return errors.MissingInput("missing input").WithDetail(strings.Join(missing, ", "))
	}
	return p.checkOutputDir()
}

// checkOutputDir rejects output directories nested in the system directory,
// or holding it: the copy would recurse into itself, or the removal of the
// old output would delete the system.
func (p *Patcher) checkOutputDir() error {
	out, sys := p.opts.OutputDir, p.opts.SystemDir
	if out == "" || samePath(out, sys) {
		return nil
	}
	if within(out, sys) || within(sys, out) {
		return errors.New(errors.CodeInvalidConfig, "output directory overlaps the system directory").
			WithDetail(out + " and " + sys)
	}
	return nil
}

// within reports whether path is below dir.
func within(path, dir string) bool {
	ap, err1 := filepath.Abs(path)
	ad, err2 := filepath.Abs(dir)
	if err1 != nil || err2 != nil {
		return false
	}
	rel, err := filepath.Rel(ad, ap)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// prepare sets the directory the stages work on, copying the system
// there if needed.
func (p *Patcher) prepare() error {
	out := p.opts.OutputDir
	if out == "" || samePath(out, p.opts.SystemDir) {
		return nil
	}
	if p.opts.DryRun {
		p.log.Info("would copy system", logging.String("from", p.opts.SystemDir), logging.String("to", out))
		return nil
	}
	p.log.Info("copying system", logging.String("from", p.opts.SystemDir), logging.String("to", out))
	if err := fileio.CopyTree(p.opts.SystemDir, out); err != nil {
		return err
	}
	p.workDir = out
	p.report.WorkDir = out
	return nil
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}

// Load reads the ligand. Run calls it before any stage, so that a bad
// ligand stops the run before anything is changed.
func (p *Patcher) Load() error {
	lig, err := ligand.Load(p.opts.LigandDir, p.cfg.Ligand)
	if err != nil {
		return err
	}
	p.lig = lig
	p.report.Ligand = lig.Name
	p.report.ParameterFile = lig.ParameterFile
	p.report.Centroid = lig.Centroid()
	p.log.Info("ligand loaded", logging.String("resname", lig.Name), logging.Int("atoms", len(lig.Atoms)),
		logging.String("parameters", filepath.Base(lig.ParameterFile)))
	p.log.Debug("ligand centroid", logging.Float64("x", p.report.Centroid.X),
		logging.Float64("y", p.report.Centroid.Y), logging.Float64("z", p.report.Centroid.Z))
	return nil
}

// Preflight runs every check of the coordinate and topology stages on the
// system files, without writing. Run calls it before the first change, so
// a system that can't take the ligand, or already has it, is left alone.
func (p *Patcher) Preflight() error {
	if err := p.loaded(); err != nil {
		return err
	}
	if _, err := p.readCoordinates(p.sys(p.cfg.System.Coordinates)); err != nil {
		return err
	}
	if _, _, _, err := p.editTopology(p.sys(p.cfg.System.Topology)); err != nil {
		return err
	}
	return nil
}

// Run validates the inputs and runs the stages. ctx is checked between
// stages. Stages already done are not undone when a later one fails.
func (p *Patcher) Run(ctx context.Context) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.log.Info("patching", logging.String("system", p.opts.SystemDir), logging.String("ligand", p.opts.LigandDir),
		logging.Bool("dry_run", p.opts.DryRun))
	steps := []struct {
		name string
		f    func() error
	}{
		{"load ligand", p.Load},
		{"check system", p.Preflight},
		{"prepare output", p.prepare},
		{"add coordinates", p.AddCoordinates},
		{"update topology", p.UpdateTopology},
		{"update restraints", p.UpdateRestraints},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return p.report, errors.Wrapf(err, errors.CodeUnknown, "interrupted before %s", s.name)
		}
		p.log.Debug("stage", logging.String("name", s.name))
		if err := s.f(); err != nil {
			p.log.Debug("stage failed", logging.String("name", s.name), logging.Err(err))
			return p.report, errors.Wrap(err, errors.CodeUnknown, s.name)
		}
	}
	return p.report, nil
}

// Report returns what has been done, or would be done, so far.
func (p *Patcher) Report() *Report {
	return p.report
}

// rewrite backs up name and replaces its content with lines.
func (p *Patcher) rewrite(name string, lines []string) error {
	b, made, err := fileio.Backup(name, p.cfg.BackupSuffix)
	if err != nil {
		return err
	}
	if made {
		p.report.Backups = append(p.report.Backups, b)
		p.log.Debug("backup", logging.String("file", b))
	}
	if err := fileio.WriteLines(name, lines); err != nil {
		return err
	}
	p.report.Written = append(p.report.Written, name)
	return nil
}
