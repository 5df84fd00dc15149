/*
 * mdp.go, part of ligpatch
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

// Package mdp handles the preprocessor defines of Gromacs run-parameter
// (.mdp) files. Only the define line is ever touched.
package mdp

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rmera/ligpatch/fileio"
	"github.com/rmera/ligpatch/internal/errors"
)

// DefineKey is the parameter that lists the preprocessor flags.
const DefineKey = "define"

// File is an .mdp file in memory, one element per line.
type File struct {
	lines []string
}

// New builds a File from lines, each with its terminator.
func New(lines []string) *File {
	return &File{lines: lines}
}

// Read reads an mdp file from r.
func Read(r io.Reader) (*File, error) {
	lines, err := fileio.SplitLines(r)
	if err != nil {
		return nil, errors.IO(err, "reading mdp file")
	}
	return New(lines), nil
}

// ReadFile reads the mdp file name.
func ReadFile(name string) (*File, error) {
	lines, err := fileio.ReadLines(name)
	if err != nil {
		return nil, errors.IO(err, "can't read mdp file").WithDetail(name)
	}
	return New(lines), nil
}

// Lines returns the file content, one line per element.
func (f *File) Lines() []string {
	return f.lines
}

// splitLine breaks an mdp line into its key, its value, and whatever
// follows the value (comment and terminator). ok is false for lines
// that are not "key = value" pairs.
func splitLine(line string) (key, value, rest string, ok bool) {
	body := line
	if i := strings.IndexAny(body, ";\r\n"); i >= 0 {
		body, rest = body[:i], body[i:]
	}
	eq := strings.Index(body, "=")
	if eq < 0 {
		return "", "", "", false
	}
	key = strings.TrimSpace(body[:eq])
	value = body[eq+1:]
	return key, value, rest, true
}

// DefineLine returns the index of the define line, or -1.
// If there are several, the last one wins, as in grompp.
func (f *File) DefineLine() int {
	at := -1
	for i, l := range f.lines {
		if key, _, _, ok := splitLine(l); ok && strings.EqualFold(key, DefineKey) {
			at = i
		}
	}
	return at
}

// Defines returns the flags on the define line.
func (f *File) Defines() []string {
	i := f.DefineLine()
	if i < 0 {
		return nil
	}
	_, v, _, _ := splitLine(f.lines[i])
	return strings.Fields(v)
}

// Macro returns the name a define flag sets: -DPOSRES_FC=1000.0 and
// -DPOSRES_FC both set -DPOSRES_FC.
func Macro(flag string) string {
	if i := strings.IndexByte(flag, '='); i >= 0 {
		return flag[:i]
	}
	return flag
}

// HasMacro reports whether a flag setting the same macro as flag is on the
// define line. -DPOSRES does not match -DPOSRES_LIGAND.
func (f *File) HasMacro(flag string) bool {
	m := Macro(flag)
	for _, d := range f.Defines() {
		if Macro(d) == m {
			return true
		}
	}
	return false
}

// AddDefines appends to the define line each of flags whose macro is not
// set there yet, so a value already on the line is never overridden. It
// returns the flags actually added. Without a define line, or when nothing
// is missing, the file is left untouched.
func (f *File) AddDefines(flags []string) []string {
	i := f.DefineLine()
	if i < 0 {
		return nil
	}
	_, v, rest, _ := splitLine(f.lines[i])
	present := make(map[string]bool)
	for _, d := range strings.Fields(v) {
		present[Macro(d)] = true
	}
	var added []string
	for _, fl := range flags {
		if fl == "" || present[Macro(fl)] {
			continue
		}
		present[Macro(fl)] = true
		added = append(added, fl)
	}
	if len(added) == 0 {
		return nil
	}
	eq := strings.Index(f.lines[i], "=")
	val := strings.TrimRight(v, " \t")
	if strings.TrimSpace(val) == "" {
		val = " " + strings.Join(added, " ")
	} else {
		val += " " + strings.Join(added, " ")
	}
	if strings.HasPrefix(rest, ";") {
		val += " "
	}
	f.lines[i] = f.lines[i][:eq+1] + val + rest
	return added
}

// StageFiles returns the files, among dir/pattern for stage numbers first
// to last, that exist. pattern takes one %d.
func StageFiles(dir, pattern string, first, last int) []string {
	var ret []string
	for i := first; i <= last; i++ {
		name := filepath.Join(dir, fmt.Sprintf(pattern, i))
		if fileio.IsFile(name) {
			ret = append(ret, name)
		}
	}
	return ret
}
