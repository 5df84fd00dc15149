package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func fixture(t *testing.T) (sys, lig string) {
	t.Helper()
	sys, lig = t.TempDir(), t.TempDir()
	gro := "t\n    3\n" +
		"    1SOL     OW    1   0.100   0.200   0.300\n" +
		"    1SOL    HW1    2   0.100   0.200   0.300\n" +
		"    1SOL    HW2    3   0.100   0.200   0.300\n" +
		"   3.00000   3.00000   3.00000\n"
	write(t, filepath.Join(sys, "gromacs", "step5_input.gro"), gro)
	write(t, filepath.Join(sys, "gromacs", "topol.top"), "#include \"toppar/TIP3.itp\"\n\n[ molecules ]\nSOL 1\n")
	write(t, filepath.Join(sys, "gromacs", "toppar", "TIP3.itp"), "\n")
	write(t, filepath.Join(sys, "gromacs", "index.ndx"), "[ SOLU ]\n   1\n")
	write(t, filepath.Join(sys, "gromacs", "step6.1_equilibration.mdp"), "define = -DPOSRES\n")
	write(t, filepath.Join(lig, "ligandrm.pdb"),
		"HETATM    1 C1   LIG A   1      12.340  -5.670  10.020  1.00  0.00           C\nEND\n")
	write(t, filepath.Join(lig, "ligandrm.yml"), "orgresn: LIG\n")
	write(t, filepath.Join(lig, "gromacs", "lig.itp"), "; lig\n")
	return sys, lig
}

func run(args ...string) (string, error) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "ligpatch", cmd.Use)
	patch, _, err := cmd.Find([]string{"patch"})
	require.NoError(t, err)
	for _, f := range []string{"output", "dry-run", "verbose", "backup-suffix", "update-index", "config"} {
		assert.NotNil(t, patch.Flags().Lookup(f), f)
	}
	assert.Equal(t, "o", patch.Flags().Lookup("output").Shorthand)
	assert.Equal(t, "v", patch.Flags().Lookup("verbose").Shorthand)
}

func TestVersion(t *testing.T) {
	out, err := run("--version")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("ligpatch version %s\n", Version), out)
}

func TestPatchArgs(t *testing.T) {
	_, err := run("patch", "onlyone")
	assert.Error(t, err)
}

func TestPatchDryRun(t *testing.T) {
	sys, lig := fixture(t)
	gro := filepath.Join(sys, "gromacs", "step5_input.gro")
	before, err := os.ReadFile(gro)
	require.NoError(t, err)

	out, err := run("patch", sys, lig, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run")
	assert.Contains(t, out, "3 -> 4")
	after, err := os.ReadFile(gro)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPatch(t *testing.T) {
	sys, lig := fixture(t)
	out, err := run("patch", sys, lig, "--backup-suffix", ".orig", "--update-index")
	require.NoError(t, err)
	assert.Contains(t, out, "Ligand added.")
	assert.NotContains(t, out, "by hand")

	assert.FileExists(t, filepath.Join(sys, "gromacs", "step5_input.gro.orig"))
	b, err := os.ReadFile(filepath.Join(sys, "gromacs", "index.ndx"))
	require.NoError(t, err)
	assert.Equal(t, "[ SOLU ]\n   1    4\n", string(b))
	b, err = os.ReadFile(filepath.Join(sys, "gromacs", "step5_input.gro"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "    2LIG     C1    4   1.234  -0.567   1.002\n"))
}

func TestPatchMissingInput(t *testing.T) {
	sys, lig := fixture(t)
	require.NoError(t, os.Remove(filepath.Join(sys, "gromacs", "index.ndx")))
	_, err := run("patch", sys, lig)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.ndx")
}
