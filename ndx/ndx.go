// Package ndx reads and edits Gromacs index files (.ndx): named groups of
// 1-based atom numbers.
package ndx

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rmera/ligpatch/fileio"
	"github.com/rmera/ligpatch/internal/errors"
)

// ErrNoGroup is returned when a named group is not in the file.
var ErrNoGroup = fmt.Errorf("index group not found")

// Gromacs puts 15 numbers on each line.
const perLine = 15

var headerRe = regexp.MustCompile(`^\s*\[\s*(\S+)\s*\]\s*$`)

// Group is one index group. Groups that were not edited are written back
// from their original lines.
type Group struct {
	Name  string
	Atoms []int
	raw   []string
	dirty bool
}

// File is an index file. Lines before the first group header, if any,
// are kept as they are.
type File struct {
	preamble []string
	Groups   []*Group
}

// Read parses an index file from r.
func Read(r io.Reader) (*File, error) {
	lines, err := fileio.SplitLines(r)
	if err != nil {
		return nil, errors.IO(err, "reading index file")
	}
	f := new(File)
	var cur *Group
	for i, l := range lines {
		if m := headerRe.FindStringSubmatch(l); m != nil {
			cur = &Group{Name: m[1], raw: []string{l}}
			f.Groups = append(f.Groups, cur)
			continue
		}
		if cur == nil {
			f.preamble = append(f.preamble, l)
			continue
		}
		cur.raw = append(cur.raw, l)
		for _, field := range strings.Fields(l) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, errors.Malformed(err, "line %d: bad atom number in group %s", i+1, cur.Name)
			}
			cur.Atoms = append(cur.Atoms, n)
		}
	}
	return f, nil
}

// ReadFile reads the index file name.
func ReadFile(name string) (*File, error) {
	r, err := fileio.Open(name)
	if err != nil {
		return nil, errors.IO(err, "can't open index file").WithDetail(name)
	}
	defer r.Close()
	f, err := Read(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, name)
	}
	return f, nil
}

// Group returns the first group called name, or nil.
func (f *File) Group(name string) *Group {
	for _, g := range f.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// AddToGroup appends the atom numbers ids to the group name, skipping those
// already in it. It returns how many were added.
func (f *File) AddToGroup(name string, ids []int) (int, error) {
	g := f.Group(name)
	if g == nil {
		return 0, errors.Malformed(ErrNoGroup, "can't update index").WithDetail(name)
	}
	have := make(map[int]bool, len(g.Atoms))
	for _, a := range g.Atoms {
		have[a] = true
	}
	n := 0
	for _, id := range ids {
		if have[id] {
			continue
		}
		have[id] = true
		g.Atoms = append(g.Atoms, id)
		n++
	}
	if n > 0 {
		g.dirty = true
	}
	return n, nil
}

// Range returns the atom numbers first to last, inclusive.
func Range(first, last int) []int {
	if last < first {
		return nil
	}
	r := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		r = append(r, i)
	}
	return r
}

// Lines returns the file content, one line per element.
func (f *File) Lines() []string {
	ret := append([]string(nil), f.preamble...)
	for _, g := range f.Groups {
		if !g.dirty {
			ret = append(ret, g.raw...)
			continue
		}
		ret = append(ret, fmt.Sprintf("[ %s ]\n", g.Name))
		ret = append(ret, formatAtoms(g.Atoms)...)
	}
	return ret
}

func formatAtoms(atoms []int) []string {
	var ret []string
	var sb strings.Builder
	for i, a := range atoms {
		if i%perLine != 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%4d", a)
		if i%perLine == perLine-1 || i == len(atoms)-1 {
			sb.WriteByte('\n')
			ret = append(ret, sb.String())
			sb.Reset()
		}
	}
	return ret
}
