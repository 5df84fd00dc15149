/*
 * top.go, part of ligpatch
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
Package top reads and edits Gromacs system topologies (.top files). The file is
kept as a list of lines, so edits touch only the lines they add. Bracketed
sections ([ name ]) are tracked explicitly: each one runs from its header to
the next header or the end of the file.
*/
package top

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rmera/ligpatch/fileio"
	"github.com/rmera/ligpatch/internal/errors"
)

var (
	ErrNoWaterInclude    = fmt.Errorf("no water model #include found")
	ErrNoMolecules       = fmt.Errorf("no [ molecules ] section found")
	ErrDuplicateMolecule = fmt.Errorf("molecule already listed in [ molecules ]")
)

// MoleculesSection is the name of the section listing molecule counts.
const MoleculesSection = "molecules"

var headerRe = regexp.MustCompile(`^\[\p{Zs}*([A-Za-z0-9_]+)\p{Zs}*\]$`)

// Returns a string without gromacs comments (sequences starting with ';'),
// trailing and leading spaces, tabs and newlines
func cleanString(s string) string {
	f := strings.Split(s, ";")[0]
	return strings.Trim(f, "\r\n\t ")
}

// HeaderName returns the name of the section opened by line, or "" if
// line is not a section header. Comments are discarded.
func HeaderName(line string) string {
	m := headerRe.FindStringSubmatch(cleanString(line))
	if m == nil {
		return ""
	}
	return m[1]
}

// Section locates a bracketed section. Lines Header+1 to End-1 are its body.
type Section struct {
	Name   string
	Header int
	End    int
}

// Include is an #include directive.
type Include struct {
	Line int
	Path string
}

// Molecule is an entry of the [ molecules ] section.
type Molecule struct {
	Name  string
	Count int
	Line  int
}

// Topology is a .top file in memory.
type Topology struct {
	lines    []string
	sections []Section
}

// New builds a Topology from lines, each with its terminator.
func New(lines []string) *Topology {
	t := &Topology{lines: lines}
	t.index()
	return t
}

// Read reads a topology from r.
func Read(r io.Reader) (*Topology, error) {
	lines, err := fileio.SplitLines(r)
	if err != nil {
		return nil, errors.IO(err, "reading topology")
	}
	return New(lines), nil
}

// ReadFile reads the topology file name.
func ReadFile(name string) (*Topology, error) {
	lines, err := fileio.ReadLines(name)
	if err != nil {
		return nil, errors.IO(err, "can't read topology").WithDetail(name)
	}
	return New(lines), nil
}

func (t *Topology) index() {
	t.sections = t.sections[:0]
	for i, l := range t.lines {
		name := HeaderName(l)
		if name == "" {
			continue
		}
		if n := len(t.sections); n > 0 {
			t.sections[n-1].End = i
		}
		t.sections = append(t.sections, Section{Name: name, Header: i, End: len(t.lines)})
	}
}

// Lines returns the topology text, one line per element.
func (t *Topology) Lines() []string {
	return t.lines
}

// Sections returns the bracketed sections in file order.
func (t *Topology) Sections() []Section {
	return append([]Section(nil), t.sections...)
}

// LastSection returns the last section called name.
func (t *Topology) LastSection(name string) (Section, bool) {
	for i := len(t.sections) - 1; i >= 0; i-- {
		if t.sections[i].Name == name {
			return t.sections[i], true
		}
	}
	return Section{}, false
}

// insert puts line at position i and re-indexes sections.
func (t *Topology) insert(i int, line string) {
	if i > 0 && !strings.HasSuffix(t.lines[i-1], "\n") {
		t.lines[i-1] += "\n"
	}
	t.lines = append(t.lines, "")
	copy(t.lines[i+1:], t.lines[i:])
	t.lines[i] = line
	t.index()
}

// Includes returns the #include directives in file order.
func (t *Topology) Includes() []Include {
	var ret []Include
	for i, l := range t.lines {
		s := cleanString(l)
		if !strings.HasPrefix(s, "#include") {
			continue
		}
		p := strings.TrimSpace(strings.TrimPrefix(s, "#include"))
		p = strings.Trim(p, "\"'")
		ret = append(ret, Include{Line: i, Path: p})
	}
	return ret
}

// HasInclude reports whether path is already included.
func (t *Topology) HasInclude(path string) bool {
	for _, inc := range t.Includes() {
		if filepath.Clean(inc.Path) == filepath.Clean(path) {
			return true
		}
	}
	return false
}

// IncludeLine returns the directive that includes path.
func IncludeLine(path string) string {
	return fmt.Sprintf("#include \"%s\"\n", filepath.ToSlash(path))
}

// AddInclude inserts an #include of path right after the last #include
// whose path contains anchor. It returns false, and changes nothing, if
// path is already included.
func (t *Topology) AddInclude(path, anchor string) (bool, error) {
	if t.HasInclude(path) {
		return false, nil
	}
	at := -1
	for _, inc := range t.Includes() {
		if strings.Contains(inc.Path, anchor) {
			at = inc.Line
		}
	}
	if at < 0 {
		return false, errors.Malformed(ErrNoWaterInclude, "can't place include").WithDetail("no include matches " + anchor)
	}
	t.insert(at+1, IncludeLine(path))
	return true, nil
}

// Molecules returns the entries of the last [ molecules ] section.
func (t *Topology) Molecules() ([]Molecule, error) {
	sec, ok := t.LastSection(MoleculesSection)
	if !ok {
		return nil, errors.Malformed(ErrNoMolecules, "topology")
	}
	var ret []Molecule
	for i := sec.Header + 1; i < sec.End; i++ {
		f := strings.Fields(cleanString(t.lines[i]))
		if len(f) == 0 || strings.HasPrefix(f[0], "#") {
			continue
		}
		if len(f) < 2 {
			return nil, errors.Malformed(nil, "line %d: molecule entry without count", i+1)
		}
		c, err := strconv.Atoi(f[1])
		if err != nil {
			return nil, errors.Malformed(err, "line %d: bad molecule count", i+1)
		}
		ret = append(ret, Molecule{Name: f[0], Count: c, Line: i})
	}
	return ret, nil
}

// MoleculeLine formats a [ molecules ] entry.
func MoleculeLine(name string, count int) string {
	return fmt.Sprintf("%-8s\t%12d\n", name, count)
}

// AddMolecule appends an entry for count copies of name at the end of the
// last [ molecules ] section: after its last entry, or after the header
// and its comment lines if the section is empty. Trailing blank lines stay
// after the new entry.
func (t *Topology) AddMolecule(name string, count int) error {
	sec, ok := t.LastSection(MoleculesSection)
	if !ok {
		return errors.Malformed(ErrNoMolecules, "can't add molecule").WithDetail(name)
	}
	mols, err := t.Molecules()
	if err != nil {
		return err
	}
	at := sec.Header + 1
	//keep the column comment, if any, on top
	for at < sec.End && strings.HasPrefix(strings.TrimSpace(t.lines[at]), ";") {
		at++
	}
	for _, m := range mols {
		if m.Name == name {
			return errors.Malformed(ErrDuplicateMolecule, "can't add molecule").WithDetail(name)
		}
		at = m.Line + 1
	}
	t.insert(at, MoleculeLine(name, count))
	return nil
}

// MissingIncludes returns the included paths that don't exist. Relative
// paths are resolved against dir, the directory of the topology file.
func (t *Topology) MissingIncludes(dir string) []string {
	var missing []string
	for _, inc := range t.Includes() {
		p := inc.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, inc.Path)
		}
	}
	return missing
}
