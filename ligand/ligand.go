// Package ligand loads a ligand as written by a ligand modeler: a PDB
// structure, a YAML metadata file naming the residue, and a directory of
// Gromacs parameter files.
package ligand

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/ligpatch/fileio"
	"github.com/rmera/ligpatch/gro"
	"github.com/rmera/ligpatch/internal/config"
	"github.com/rmera/ligpatch/internal/errors"
	"github.com/rmera/ligpatch/pdb"
)

// ErrNoParameterFile is returned when the parameter directory has no
// file with the right extension.
var ErrNoParameterFile = fmt.Errorf("no ligand parameter file")

// Ligand is everything needed to add a ligand to a system.
type Ligand struct {
	Name          string
	Atoms         []*pdb.Atom
	ParameterFile string
}

// FindParameterFile returns the parameter file for the ligand in dir:
// the first file, in lexical order, ending in ext and not listed in
// generic. If only generic files are present, the first of those is used.
func FindParameterFile(dir, ext string, generic []string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.New(errors.CodeMissingInput, "can't list ligand parameters").WithDetail(dir).WithCause(err)
	}
	isGeneric := make(map[string]bool, len(generic))
	for _, g := range generic {
		isGeneric[g] = true
	}
	var specific, gen []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasSuffix(n, ext) {
			continue
		}
		if isGeneric[n] {
			gen = append(gen, n)
		} else {
			specific = append(specific, n)
		}
	}
	sort.Strings(specific)
	sort.Strings(gen)
	switch {
	case len(specific) > 0:
		return filepath.Join(dir, specific[0]), nil
	case len(gen) > 0:
		return filepath.Join(dir, gen[0]), nil
	}
	return "", errors.New(errors.CodeMissingInput, "can't find ligand parameters").
		WithDetail(fmt.Sprintf("no *%s file in %s", ext, dir)).WithCause(ErrNoParameterFile)
}

// Load reads the ligand in dir, laid out as lay says. The structure and
// metadata files may also be found gzip or zstd compressed.
func Load(dir string, lay config.LigandLayout) (*Ligand, error) {
	meta, ok := fileio.Locate(filepath.Join(dir, lay.Metadata))
	if !ok {
		return nil, errors.MissingInput("ligand metadata not found").WithDetail(filepath.Join(dir, lay.Metadata))
	}
	md, err := ReadMetadataFile(meta)
	if err != nil {
		return nil, err
	}
	name, err := md.ResidueName(lay.ResidueKeys)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, meta)
	}
	structure, ok := fileio.Locate(filepath.Join(dir, lay.Structure))
	if !ok {
		return nil, errors.MissingInput("ligand structure not found").WithDetail(filepath.Join(dir, lay.Structure))
	}
	atoms, err := pdb.ReadFile(structure)
	if err != nil {
		return nil, err
	}
	par, err := FindParameterFile(filepath.Join(dir, lay.ParameterDir), lay.ParameterExt, lay.GenericParameterFiles)
	if err != nil {
		return nil, err
	}
	return &Ligand{Name: name, Atoms: atoms, ParameterFile: par}, nil
}

// Records returns the ligand atoms as coordinate records, in nm. Each
// record keeps the residue name of its structure line; l.Name is used
// only where that column is blank.
func (l *Ligand) Records() []gro.Record {
	recs := make([]gro.Record, len(l.Atoms))
	for i, a := range l.Atoms {
		resn := a.ResName
		if resn == "" {
			resn = l.Name
		}
		recs[i] = gro.Record{ResName: resn, Name: a.Name, Pos: gro.AngstromToNM(a.Pos)}
	}
	return recs
}

// Centroid returns the geometric center of the ligand, in nm.
func (l *Ligand) Centroid() r3.Vec {
	return gro.AngstromToNM(pdb.Centroid(l.Atoms))
}
