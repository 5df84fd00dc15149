/*
 * pdb.go, part of ligpatch
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
Package pdb reads the atom records of a PDB file. Only what is needed to place
a small molecule in a simulation box is kept: names, residue data and
coordinates. Coordinates are in Angstrom, as in the file.
*/
package pdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/ligpatch/fileio"
	"github.com/rmera/ligpatch/internal/errors"
)

// ErrNoAtoms is returned when a file has no usable atom records.
var ErrNoAtoms = fmt.Errorf("no ATOM records found")

// the shortest line that still holds the z coordinate
const minAtomLine = 54

// Atom is one ATOM or HETATM record.
type Atom struct {
	Serial  int
	Name    string
	ResName string
	Chain   byte
	ResID   int
	Pos     r3.Vec //Angstrom
	Het     bool
}

// IsAtomRecord reports whether line is an ATOM or HETATM record.
func IsAtomRecord(line string) bool {
	return strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM")
}

// ParseAtom parses an ATOM or HETATM line. Only the name, residue and
// coordinate fields are required; a serial or residue number that can't be
// read is left at 0, since ligand writers often fill them loosely.
func ParseAtom(line string) (*Atom, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < minAtomLine {
		return nil, fmt.Errorf("atom record too short (%d columns, need %d)", len(line), minAtomLine)
	}
	a := new(Atom)
	a.Het = strings.HasPrefix(line, "HETATM")
	a.Serial, _ = strconv.Atoi(strings.TrimSpace(line[6:11]))
	a.Name = strings.TrimSpace(line[12:16])
	//column 21 is blank in the standard, but CHARMM writes 4-letter
	//residue names and uses it.
	a.ResName = strings.TrimSpace(line[17:21])
	a.Chain = line[21]
	a.ResID, _ = strconv.Atoi(strings.TrimSpace(line[22:26]))
	if a.Name == "" {
		return nil, fmt.Errorf("atom record without atom name")
	}
	var c [3]float64
	var err error
	for i, col := range [3]int{30, 38, 46} {
		c[i], err = strconv.ParseFloat(strings.TrimSpace(line[col:col+8]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate in columns %d-%d: %w", col+1, col+8, err)
		}
	}
	a.Pos = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	return a, nil
}

// Read returns the atom records of the first model in r. A file with no
// atom records is an error wrapping ErrNoAtoms.
func Read(r io.Reader) ([]*Atom, error) {
	atoms := make([]*Atom, 0, 64)
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if strings.HasPrefix(line, "ENDMDL") {
			break
		}
		if !IsAtomRecord(line) {
			continue
		}
		a, err := ParseAtom(line)
		if err != nil {
			return nil, errors.Malformed(err, "line %d", lineno)
		}
		atoms = append(atoms, a)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.IO(err, "reading PDB")
	}
	if len(atoms) == 0 {
		return nil, errors.Malformed(ErrNoAtoms, "empty structure")
	}
	return atoms, nil
}

// ReadFile reads the atom records of the PDB file name, which may be gzip
// or zstd compressed.
func ReadFile(name string) ([]*Atom, error) {
	f, err := fileio.Open(name)
	if err != nil {
		return nil, errors.IO(err, "can't open structure").WithDetail(name)
	}
	defer f.Close()
	atoms, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeUnknown, "%s", name)
	}
	return atoms, nil
}

// Centroid returns the geometric center of atoms.
func Centroid(atoms []*Atom) r3.Vec {
	var c r3.Vec
	if len(atoms) == 0 {
		return c
	}
	for _, a := range atoms {
		c = r3.Add(c, a.Pos)
	}
	return r3.Scale(1/float64(len(atoms)), c)
}
