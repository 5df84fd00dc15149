package pdb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/ligpatch/internal/errors"
)

const ligandPDB = `REMARK   generated by the ligand reader
ATOM      1  C1  LIG     1      12.345 -23.456  34.567  1.00  0.00      LIG  C
ATOM      2  O1  LIG     1      10.000  20.000  30.000  1.00  0.00      LIG  O
HETATM    3 H11  LIG     1       0.500  -0.500   1.250  1.00  0.00      LIG  H
TER
END
`

func TestRead(t *testing.T) {
	atoms, err := Read(strings.NewReader(ligandPDB))
	require.NoError(t, err)
	require.Len(t, atoms, 3)

	a := atoms[0]
	assert.Equal(t, 1, a.Serial)
	assert.Equal(t, "C1", a.Name)
	assert.Equal(t, "LIG", a.ResName)
	assert.Equal(t, 1, a.ResID)
	assert.Equal(t, r3.Vec{X: 12.345, Y: -23.456, Z: 34.567}, a.Pos)
	assert.False(t, a.Het)

	assert.Equal(t, "H11", atoms[2].Name)
	assert.True(t, atoms[2].Het)
}

func TestReadFirstModelOnly(t *testing.T) {
	in := `MODEL        1
ATOM      1  C1  LIG     1       1.000   1.000   1.000  1.00  0.00
ENDMDL
MODEL        2
ATOM      1  C1  LIG     1       2.000   2.000   2.000  1.00  0.00
ENDMDL
`
	atoms, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, atoms, 1)
}

func TestReadNoAtoms(t *testing.T) {
	_, err := Read(strings.NewReader("REMARK nothing here\nEND\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoAtoms))
	assert.True(t, errors.IsCode(err, errors.CodeMalformedContent))
}

func TestReadBadRecord(t *testing.T) {
	in := "ATOM      1  C1  LIG     1      12.345 -23.456\n"
	_, err := Read(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	in = "ATOM      1  C1  LIG     1      12.345 -2x.456  34.567\n"
	_, err = Read(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns 39-46")
}

func TestCentroid(t *testing.T) {
	atoms := []*Atom{
		{Pos: r3.Vec{X: 0, Y: 0, Z: 0}},
		{Pos: r3.Vec{X: 2, Y: 4, Z: -6}},
	}
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: -3}, Centroid(atoms))
	assert.Equal(t, r3.Vec{}, Centroid(nil))
}
