/*
 * gro.go, part of ligpatch
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
Package gro reads, extends and writes Gromacs .gro coordinate files.

Records read from a file keep their original text, so writing a file back
only changes the lines that were actually added, plus the atom count.
Coordinates are in nm.
*/
package gro

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/ligpatch/fileio"
	"github.com/rmera/ligpatch/internal/errors"
)

// AngstromPerNM converts PDB lengths to gro lengths.
const AngstromPerNM = 10.0

// Residue and atom numbers wrap around at this value, as Gromacs does
// when writing .gro files.
const numberWrap = 100000

// Field widths of an atom record.
const (
	numWidth   = 5
	nameWidth  = 5
	coordWidth = 8
	// widest coordinate field, 10 decimals
	maxWidth = 15
	// the shortest record that holds the three coordinates
	minRecord = 4*numWidth + 3*coordWidth
)

var ErrNoAtoms = fmt.Errorf("no atoms to add")

// Atom is one atom record.
type Atom struct {
	ResID   int
	ResName string
	Name    string
	ID      int
	Pos     r3.Vec
	raw     string // original line, "" for added atoms
}

// File is a whole .gro file.
type File struct {
	Title string // first line, terminator included
	Atoms []*Atom
	Box   string // last line, terminator included
	width int    // coordinate field width, 0 for the default
}

// AngstromToNM converts a position read from a PDB file to gro units.
func AngstromToNM(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X / AngstromPerNM, Y: v.Y / AngstromPerNM, Z: v.Z / AngstromPerNM}
}

// coordinate width from the distance between decimal points, the way
// Gromacs itself reads gro files with extra precision.
func precisionWidth(line string) int {
	if len(line) < minRecord {
		return coordWidth
	}
	s := line[2*numWidth+2*numWidth:]
	p1 := strings.IndexByte(s, '.')
	if p1 < 0 {
		return coordWidth
	}
	p2 := strings.IndexByte(s[p1+1:], '.')
	if p2 < 0 {
		return coordWidth
	}
	return p2 + 1
}

// ParseAtom reads an atom record. Velocities, if present, are ignored.
func ParseAtom(line string, width int) (*Atom, error) {
	l := strings.TrimRight(line, "\r\n")
	if len(l) < 4*numWidth+3*width {
		return nil, fmt.Errorf("atom record too short: %q", l)
	}
	var err error
	a := &Atom{raw: line}
	a.ResID, err = strconv.Atoi(strings.TrimSpace(l[0:5]))
	if err != nil {
		return nil, fmt.Errorf("bad residue number: %w", err)
	}
	a.ResName = strings.TrimSpace(l[5:10])
	a.Name = strings.TrimSpace(l[10:15])
	a.ID, err = strconv.Atoi(strings.TrimSpace(l[15:20]))
	if err != nil {
		return nil, fmt.Errorf("bad atom number: %w", err)
	}
	var c [3]float64
	for i := range c {
		start := 4*numWidth + i*width
		c[i], err = strconv.ParseFloat(strings.TrimSpace(l[start:start+width]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate: %w", err)
		}
	}
	a.Pos = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	return a, nil
}

// Read parses a .gro file from r. The number of atom records must match
// the count in the header.
func Read(r io.Reader) (*File, error) {
	lines, err := fileio.SplitLines(r)
	if err != nil {
		return nil, errors.IO(err, "reading gro")
	}
	//blank lines after the box are tolerated
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) < 3 {
		return nil, errors.Malformed(nil, "gro file needs a title, an atom count and a box line, got %d lines", len(lines))
	}
	declared, err := strconv.Atoi(strings.TrimSpace(lines[1]))
	if err != nil {
		return nil, errors.Malformed(err, "bad atom count in line 2")
	}
	records := lines[2 : len(lines)-1]
	if len(records) != declared {
		return nil, errors.Malformed(nil, "header declares %d atoms but the file has %d records", declared, len(records))
	}
	width := coordWidth
	if declared > 0 {
		width = precisionWidth(records[0])
	}
	if width <= numWidth || width > maxWidth {
		return nil, errors.Malformed(nil, "unsupported coordinate width %d in line 3", width)
	}
	f := &File{Title: lines[0], Box: lines[len(lines)-1], Atoms: make([]*Atom, 0, declared), width: width}
	for i, l := range records {
		a, err := ParseAtom(l, width)
		if err != nil {
			return nil, errors.Malformed(err, "line %d", i+3)
		}
		f.Atoms = append(f.Atoms, a)
	}
	return f, nil
}

// ReadFile reads the .gro file name.
func ReadFile(name string) (*File, error) {
	fh, err := fileio.Open(name)
	if err != nil {
		return nil, errors.IO(err, "can't open coordinates").WithDetail(name)
	}
	defer fh.Close()
	f, err := Read(fh)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeUnknown, "%s", name)
	}
	return f, nil
}

// Width returns the width of the coordinate fields. Files written with
// extra precision have one more character per extra decimal.
func (f *File) Width() int {
	if f.width == 0 {
		return coordWidth
	}
	return f.width
}

// Len returns the number of atoms.
func (f *File) Len() int {
	return len(f.Atoms)
}

// MaxResID returns the largest residue number in the file, 0 if there are
// no atoms.
func (f *File) MaxResID() int {
	m := 0
	for _, a := range f.Atoms {
		if a.ResID > m {
			m = a.ResID
		}
	}
	return m
}

// Check verifies that atom numbers are consecutive and residue numbers
// never decrease, allowing for the wrap-around at 100000.
func (f *File) Check() error {
	for i, a := range f.Atoms {
		if want := (i + 1) % numberWrap; a.ID != want {
			return errors.Malformed(nil, "atom %d is numbered %d", i+1, a.ID)
		}
		if i == 0 {
			continue
		}
		prev := f.Atoms[i-1].ResID
		if a.ResID < prev && !(prev > numberWrap-numberWrap/10 && a.ResID < numberWrap/10) {
			return errors.Malformed(nil, "residue number decreases from %d to %d at atom %d", prev, a.ResID, i+1)
		}
	}
	return nil
}

// Lines returns the file as text lines, each with its terminator. The
// count line always reflects the current number of atoms.
func (f *File) Lines() []string {
	lines := make([]string, 0, len(f.Atoms)+3)
	lines = append(lines, terminated(f.Title))
	lines = append(lines, fmt.Sprintf("%5d\n", len(f.Atoms)))
	for _, a := range f.Atoms {
		if a.raw != "" {
			lines = append(lines, terminated(a.raw))
			continue
		}
		lines = append(lines, a.format(f.Width()))
	}
	lines = append(lines, terminated(f.Box))
	return lines
}

func terminated(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
