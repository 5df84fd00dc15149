package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "line one\nline two\nno newline"

func TestReadLinesPlainAndCompressed(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "a.pdb")
	require.NoError(t, os.WriteFile(plain, []byte(sample), 0o644))

	gzname := filepath.Join(dir, "b.pdb.gz")
	f, err := os.Create(gzname)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	zsname := filepath.Join(dir, "c.pdb.zst")
	f, err = os.Create(zsname)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = zw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	want := []string{"line one\n", "line two\n", "no newline"}
	for _, name := range []string{plain, gzname, zsname} {
		lines, err := ReadLines(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, lines, name)
	}
}

func TestOpenBadGzip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bad.gz")
	require.NoError(t, os.WriteFile(name, []byte("not gzip"), 0o644))
	_, err := Open(name)
	assert.Error(t, err)
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "ligandrm.yml")
	_, ok := Locate(base)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(base+".gz", []byte{}, 0o644))
	got, ok := Locate(base)
	assert.True(t, ok)
	assert.Equal(t, base+".gz", got)

	require.NoError(t, os.WriteFile(base, []byte{}, 0o644))
	got, _ = Locate(base)
	assert.Equal(t, base, got)
}

func TestBackupKeepsFirstCopy(t *testing.T) {
	name := filepath.Join(t.TempDir(), "topol.top")
	require.NoError(t, os.WriteFile(name, []byte("original"), 0o640))

	bname, made, err := Backup(name, ".backup")
	require.NoError(t, err)
	assert.True(t, made)
	assert.Equal(t, name+".backup", bname)

	require.NoError(t, WriteLines(name, []string{"changed"}))
	_, made, err = Backup(name, ".backup")
	require.NoError(t, err)
	assert.False(t, made)

	b, err := os.ReadFile(bname)
	require.NoError(t, err)
	assert.Equal(t, "original", string(b))
	fi, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm())
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "gromacs", "toppar"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "gromacs", "topol.top"), []byte("top"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "gromacs", "toppar", "a.itp"), []byte("itp"), 0o644))
	require.NoError(t, os.Symlink("a.itp", filepath.Join(src, "gromacs", "toppar", "b.itp")))

	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(dst, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "stale"), []byte("x"), 0o644))

	require.NoError(t, CopyTree(src, dst))
	assert.NoFileExists(t, filepath.Join(dst, "stale"))
	b, err := os.ReadFile(filepath.Join(dst, "gromacs", "toppar", "a.itp"))
	require.NoError(t, err)
	assert.Equal(t, "itp", string(b))
	link, err := os.Readlink(filepath.Join(dst, "gromacs", "toppar", "b.itp"))
	require.NoError(t, err)
	assert.Equal(t, "a.itp", link)
}

func TestWriteLinesNewFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "index.ndx")
	require.NoError(t, WriteLines(name, []string{"[ SOLU ]\n", "   1\n"}))
	b, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "[ SOLU ]\n   1\n", string(b))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file left behind")
}
