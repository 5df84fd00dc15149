package gro

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/ligpatch/internal/errors"
)

// ErrFieldOverflow is returned when a value doesn't fit its column.
var ErrFieldOverflow = fmt.Errorf("value does not fit fixed-width field")

// coordLimits returns the open interval of values that fit a coordinate
// field width characters wide, with width-5 decimals. Anything that rounds
// outside of it needs one more character.
func coordLimits(width int) (lo, hi float64) {
	dec := width - numWidth
	half := 0.5 * math.Pow(10, -float64(dec))
	return -math.Pow(10, float64(numWidth-2)) + half, math.Pow(10, float64(numWidth-1)) - half
}

// Record is an atom to be added. Pos is in nm.
type Record struct {
	ResName string
	Name    string
	Pos     r3.Vec
}

// String formats the atom as a fixed-width .gro record, newline included.
// Numbers are wrapped at 100000.
func (a *Atom) String() string {
	return a.format(coordWidth)
}

// format is String with coordinate fields width characters wide.
func (a *Atom) format(width int) string {
	dec := width - numWidth
	return fmt.Sprintf("%5d%-5s%5s%5d%*.*f%*.*f%*.*f\n",
		a.ResID%numberWrap, a.ResName, a.Name, a.ID%numberWrap,
		width, dec, a.Pos.X, width, dec, a.Pos.Y, width, dec, a.Pos.Z)
}

// CheckFields returns an error wrapping ErrFieldOverflow if any of recs
// has a name longer than 5 characters or a coordinate that doesn't fit a
// field width characters wide.
func CheckFields(recs []Record, width int) error {
	coords := make([]float64, 0, 3*len(recs))
	for i, r := range recs {
		if len(r.ResName) > nameWidth {
			return errors.New(errors.CodeFieldOverflow, "residue name too long").
				WithDetail(fmt.Sprintf("atom %d: %q has more than %d characters", i+1, r.ResName, nameWidth)).
				WithCause(ErrFieldOverflow)
		}
		if len(r.Name) > nameWidth {
			return errors.New(errors.CodeFieldOverflow, "atom name too long").
				WithDetail(fmt.Sprintf("atom %d: %q has more than %d characters", i+1, r.Name, nameWidth)).
				WithCause(ErrFieldOverflow)
		}
		coords = append(coords, r.Pos.X, r.Pos.Y, r.Pos.Z)
	}
	if len(coords) == 0 {
		return nil
	}
	minc, maxc := coordLimits(width)
	if hi, lo := floats.Max(coords), floats.Min(coords); hi >= maxc || lo <= minc {
		return errors.New(errors.CodeFieldOverflow, "coordinate out of range").
			WithDetail(fmt.Sprintf("range [%g, %g] nm does not fit %%%d.%df", lo, hi, width, width-numWidth)).
			WithCause(ErrFieldOverflow)
	}
	return nil
}

// AppendResidue adds recs as one new residue at the end of the file, just
// before the box line. The residue number is one more than the largest in
// the file; atom numbers continue from the current count. Coordinates are
// written with the precision of the rest of the file. It returns the
// 1-based numbers of the first and last added atom, not wrapped. Nothing is
// changed if an error is returned.
func (f *File) AppendResidue(recs []Record) (first, last int, err error) {
	if len(recs) == 0 {
		return 0, 0, errors.Malformed(ErrNoAtoms, "empty residue")
	}
	if err = CheckFields(recs, f.Width()); err != nil {
		return 0, 0, err
	}
	resid := f.MaxResID() + 1
	first = len(f.Atoms) + 1
	for i, r := range recs {
		f.Atoms = append(f.Atoms, &Atom{
			ResID:   resid,
			ResName: r.ResName,
			Name:    r.Name,
			ID:      first + i,
			Pos:     r.Pos,
		})
	}
	return first, len(f.Atoms), nil
}
