package patcher

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/rmera/ligpatch/fileio"
	"github.com/rmera/ligpatch/gro"
	"github.com/rmera/ligpatch/internal/errors"
	"github.com/rmera/ligpatch/internal/logging"
	"github.com/rmera/ligpatch/mdp"
	"github.com/rmera/ligpatch/ndx"
	"github.com/rmera/ligpatch/top"
)

func (p *Patcher) loaded() error {
	if p.lig == nil {
		return p.Load()
	}
	return nil
}

// readCoordinates reads the coordinate file name and checks its numbering.
func (p *Patcher) readCoordinates(name string) (*gro.File, error) {
	f, err := gro.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if err := f.Check(); err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedContent, name)
	}
	return f, nil
}

// editTopology reads the topology file name and adds the ligand include
// and molecule entry, in memory. It returns the include path and whether
// the include was new.
func (p *Patcher) editTopology(name string) (t *top.Topology, inc string, added bool, err error) {
	t, err = top.ReadFile(name)
	if err != nil {
		return nil, "", false, err
	}
	inc = path.Join(filepath.ToSlash(p.cfg.System.ParameterDir), p.lig.Name+p.cfg.Ligand.ParameterExt)
	added, err = t.AddInclude(inc, p.cfg.Topology.WaterInclude)
	if err != nil {
		return nil, "", false, errors.Wrap(err, errors.CodeUnknown, name)
	}
	if err = t.AddMolecule(p.lig.Name, 1); err != nil {
		return nil, "", false, errors.Wrap(err, errors.CodeUnknown, name)
	}
	return t, inc, added, nil
}

// AddCoordinates appends the ligand, as a new residue, to the coordinate
// file.
func (p *Patcher) AddCoordinates() error {
	if err := p.loaded(); err != nil {
		return err
	}
	name := p.sys(p.cfg.System.Coordinates)
	f, err := p.readCoordinates(name)
	if err != nil {
		return err
	}
	old := f.Len()
	first, last, err := f.AppendResidue(p.lig.Records())
	if err != nil {
		return errors.Wrap(err, errors.CodeUnknown, name)
	}
	r := p.report
	r.OldAtoms, r.NewAtoms = old, f.Len()
	r.AtomsAdded = r.NewAtoms - r.OldAtoms
	r.FirstAtom, r.LastAtom = first, last
	fields := []logging.Field{
		logging.String("file", name), logging.Int("old", old), logging.Int("new", f.Len()),
		logging.String("range", fmt.Sprintf("%d-%d", first, last)),
	}
	if p.opts.DryRun {
		p.log.Info("would add ligand coordinates", fields...)
		return nil
	}
	if err := p.rewrite(name, f.Lines()); err != nil {
		return err
	}
	p.log.Info("added ligand coordinates", fields...)
	return nil
}

// UpdateTopology copies the ligand parameters next to the other system
// parameters, includes them right after the water model, and lists one
// ligand molecule at the end of [ molecules ].
func (p *Patcher) UpdateTopology() error {
	if err := p.loaded(); err != nil {
		return err
	}
	name := p.sys(p.cfg.System.Topology)
	dir := filepath.Dir(name)
	t, inc, added, err := p.editTopology(name)
	if err != nil {
		return err
	}
	dest := filepath.Join(dir, filepath.FromSlash(inc))
	p.report.TopologyParameters = dest
	if !added {
		p.log.Info("ligand already included", logging.String("include", inc))
	}
	if p.opts.DryRun {
		p.log.Info("would update topology", logging.String("file", name),
			logging.String("parameters", dest), logging.String("molecule", p.lig.Name))
		return p.checkIncludes(t, dir, inc)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.IO(err, "can't create parameter directory").WithDetail(filepath.Dir(dest))
	}
	if err := fileio.CopyFile(p.lig.ParameterFile, dest); err != nil {
		return errors.IO(err, "can't copy ligand parameters").WithDetail(dest)
	}
	p.report.Written = append(p.report.Written, dest)
	if err := p.rewrite(name, t.Lines()); err != nil {
		return err
	}
	p.log.Info("updated topology", logging.String("file", name), logging.String("molecule", p.lig.Name))
	return p.checkIncludes(t, dir, inc)
}

// checkIncludes warns about included files that don't exist. The ligand
// include is an error, unless in dry-run mode, where it was not copied.
func (p *Patcher) checkIncludes(t *top.Topology, dir, ligInc string) error {
	for _, m := range t.MissingIncludes(dir) {
		if m == ligInc {
			if p.opts.DryRun {
				continue
			}
			return errors.MissingInput("ligand parameters not found after copy").WithDetail(filepath.Join(dir, m))
		}
		p.log.Warn("included file not found", logging.String("include", m))
	}
	return nil
}

// UpdateRestraints adds the ligand restraint defines to every equilibration
// stage file found, then handles the index file.
func (p *Patcher) UpdateRestraints() error {
	s := p.cfg.System
	files := mdp.StageFiles(p.workDir, filepath.FromSlash(s.RestraintPattern), s.FirstStage, s.LastStage)
	if len(files) == 0 {
		p.log.Warn("no equilibration files found", logging.String("pattern", s.RestraintPattern))
	}
	flags := p.cfg.Restraints.Defines()
	for _, name := range files {
		f, err := mdp.ReadFile(name)
		if err != nil {
			return err
		}
		added := f.AddDefines(flags)
		p.report.RestraintFiles = append(p.report.RestraintFiles, name)
		if f.DefineLine() < 0 {
			p.log.Debug("no define line", logging.String("file", name))
		}
		for _, fl := range flags {
			if f.HasMacro(fl) && !contains(f.Defines(), fl) {
				p.log.Warn("restraint define already set to another value, kept", logging.String("file", name),
					logging.String("define", mdp.Macro(fl)))
			}
		}
		if p.opts.DryRun {
			p.log.Info("would add restraint defines", logging.String("file", name), logging.Strings("defines", added))
			continue
		}
		if err := p.rewrite(name, f.Lines()); err != nil {
			return err
		}
		p.log.Debug("restraint defines", logging.String("file", name), logging.Strings("added", added))
	}
	if len(files) > 0 {
		p.log.Info("updated restraints", logging.Int("files", len(files)))
	}
	return p.UpdateIndex()
}

// UpdateIndex adds the ligand atoms to the solute group of the index file
// when the index update is enabled. Otherwise it only tells the user what
// to add by hand.
func (p *Patcher) UpdateIndex() error {
	name := p.sys(p.cfg.System.Index)
	group := p.cfg.Index.SoluteGroup
	if !fileio.IsFile(name) {
		p.log.Warn("index file not found, skipping index update", logging.String("file", name))
		return nil
	}
	rng := fmt.Sprintf("%d-%d", p.report.FirstAtom, p.report.LastAtom)
	if !p.cfg.Index.Update {
		p.log.Info("index file not updated: add the ligand atoms to the solute group by hand",
			logging.String("file", name), logging.String("group", group), logging.String("atoms", rng))
		return nil
	}
	if p.report.FirstAtom == 0 {
		return errors.New(errors.CodeMalformedContent, "ligand atom numbers unknown, add coordinates first")
	}
	f, err := ndx.ReadFile(name)
	if err != nil {
		return err
	}
	n, err := f.AddToGroup(group, ndx.Range(p.report.FirstAtom, p.report.LastAtom))
	if err != nil {
		return errors.Wrap(err, errors.CodeUnknown, name)
	}
	if p.opts.DryRun {
		p.log.Info("would update index", logging.String("file", name), logging.String("group", group), logging.String("atoms", rng))
		return nil
	}
	if n == 0 {
		p.log.Info("ligand already in index group", logging.String("group", group))
		return nil
	}
	if err := p.rewrite(name, f.Lines()); err != nil {
		return err
	}
	p.report.IndexUpdated = true
	p.log.Info("updated index", logging.String("file", name), logging.String("group", group), logging.String("atoms", rng))
	return nil
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
