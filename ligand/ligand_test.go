package ligand

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/ligpatch/internal/config"
	"github.com/rmera/ligpatch/internal/errors"
	"github.com/rmera/ligpatch/pdb"
)

func pdbLine(serial int, name string, x, y, z float64) string {
	return fmt.Sprintf("HETATM%5d %-4s LIG A   1    %8.3f%8.3f%8.3f  1.00  0.00           C\n", serial, name, x, y, z)
}

func writeLigand(t *testing.T, dir, yml string, itps ...string) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("REMARK ligand\n")
	for i := 0; i < 4; i++ {
		sb.WriteString(pdbLine(i+1, fmt.Sprintf("C%d", i+1), float64(i)*1.5, 2, -3))
	}
	sb.WriteString("END\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ligandrm.pdb"), []byte(sb.String()), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ligandrm.yml"), []byte(yml), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "gromacs"), 0o755))
	for _, n := range itps {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "gromacs", n), []byte("; "+n+"\n"), 0o644))
	}
}

func TestResidueName(t *testing.T) {
	keys := []string{"newresn", "orgresn"}
	cases := []struct {
		yml  string
		want string
	}{
		{"orgresn: ABC\nnewresn: XYZ\n", "XYZ"},
		{"orgresn: ABC\n", "ABC"},
		{"orgresn: ABC\nnewresn: \"\"\n", "ABC"},
		{"orgresn: ABC\nnewresn:\n", "ABC"},
		{"newresn: 123\n", "123"},
	}
	for _, c := range cases {
		m, err := ReadMetadata(strings.NewReader(c.yml))
		require.NoError(t, err)
		got, err := m.ResidueName(keys)
		require.NoError(t, err, c.yml)
		assert.Equal(t, c.want, got, c.yml)
	}

	m, err := ReadMetadata(strings.NewReader("charge: 0\n"))
	require.NoError(t, err)
	_, err = m.ResidueName(keys)
	assert.True(t, errors.Is(err, ErrNoResidueName))
	assert.True(t, errors.IsCode(err, errors.CodeMalformedContent))
}

func TestEmptyMetadata(t *testing.T) {
	m, err := ReadMetadata(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestBadMetadata(t *testing.T) {
	_, err := ReadMetadata(strings.NewReader("- a\n- b\n"))
	assert.True(t, errors.IsCode(err, errors.CodeMalformedContent))
}

func TestFindParameterFile(t *testing.T) {
	generic := []string{"charmm36.itp", "forcefield.itp", "atomtypes.itp"}

	dir := t.TempDir()
	writeLigand(t, dir, "", "forcefield.itp", "lig.itp", "charmm36.itp", "abc.itp")
	got, err := FindParameterFile(filepath.Join(dir, "gromacs"), ".itp", generic)
	require.NoError(t, err)
	assert.Equal(t, "abc.itp", filepath.Base(got))

	dir = t.TempDir()
	writeLigand(t, dir, "", "forcefield.itp", "charmm36.itp")
	got, err = FindParameterFile(filepath.Join(dir, "gromacs"), ".itp", generic)
	require.NoError(t, err)
	assert.Equal(t, "charmm36.itp", filepath.Base(got))

	dir = t.TempDir()
	writeLigand(t, dir, "", "lig.top")
	_, err = FindParameterFile(filepath.Join(dir, "gromacs"), ".itp", generic)
	assert.True(t, errors.Is(err, ErrNoParameterFile))
	assert.True(t, errors.IsCode(err, errors.CodeMissingInput))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeLigand(t, dir, "orgresn: LIG\nnewresn: TMP\n", "forcefield.itp", "tmp.itp")
	l, err := Load(dir, config.NewDefaultConfig().Ligand)
	require.NoError(t, err)
	assert.Equal(t, "TMP", l.Name)
	assert.Len(t, l.Atoms, 4)
	assert.Equal(t, "tmp.itp", filepath.Base(l.ParameterFile))

	recs := l.Records()
	require.Len(t, recs, 4)
	assert.Equal(t, "LIG", recs[3].ResName)
	assert.Equal(t, "C4", recs[3].Name)
	assert.InDelta(t, 0.45, recs[3].Pos.X, 1e-12)
	assert.InDelta(t, -0.3, recs[3].Pos.Z, 1e-12)
	assert.InDelta(t, 0.225, l.Centroid().X, 1e-12)
}

func TestRecordsBlankResidueName(t *testing.T) {
	l := &Ligand{Name: "TMP", Atoms: []*pdb.Atom{{Name: "C1", ResName: "UNL"}, {Name: "C2"}}}
	recs := l.Records()
	assert.Equal(t, "UNL", recs[0].ResName)
	assert.Equal(t, "TMP", recs[1].ResName)
}

func TestLoadCompressed(t *testing.T) {
	dir := t.TempDir()
	writeLigand(t, dir, "orgresn: LIG\n", "lig.itp")
	src := filepath.Join(dir, "ligandrm.pdb")
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	out, err := os.Create(src + ".gz")
	require.NoError(t, err)
	gz := gzip.NewWriter(out)
	_, err = gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, out.Close())
	require.NoError(t, os.Remove(src))

	l, err := Load(dir, config.NewDefaultConfig().Ligand)
	require.NoError(t, err)
	assert.Equal(t, "LIG", l.Name)
	assert.Len(t, l.Atoms, 4)
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir, config.NewDefaultConfig().Ligand)
	assert.True(t, errors.IsCode(err, errors.CodeMissingInput))
}
