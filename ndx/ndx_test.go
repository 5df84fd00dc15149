package ndx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/ligpatch/internal/errors"
)

const index = `[ SOLU ]
   1    2    3    4    5    6    7    8    9   10   11   12   13   14   15
  16   17
[ SOLV ]
  18   19   20
`

func TestRead(t *testing.T) {
	f, err := Read(strings.NewReader(index))
	require.NoError(t, err)
	require.Len(t, f.Groups, 2)
	assert.Equal(t, Range(1, 17), f.Group("SOLU").Atoms)
	assert.Equal(t, []int{18, 19, 20}, f.Group("SOLV").Atoms)
	assert.Nil(t, f.Group("MEMB"))

	assert.Equal(t, index, strings.Join(f.Lines(), ""))
}

func TestAddToGroup(t *testing.T) {
	f, err := Read(strings.NewReader(index))
	require.NoError(t, err)
	n, err := f.AddToGroup("SOLU", Range(21, 33))
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	lines := f.Lines()
	assert.Equal(t, "[ SOLU ]\n", lines[0])
	assert.Equal(t, "  16   17   21   22   23   24   25   26   27   28   29   30   31   32   33\n", lines[2])
	assert.Equal(t, "[ SOLV ]\n", lines[3])
	assert.Equal(t, "  18   19   20\n", lines[4])

	n, err = f.AddToGroup("SOLU", Range(21, 33))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddToMissingGroup(t *testing.T) {
	f, err := Read(strings.NewReader(index))
	require.NoError(t, err)
	_, err = f.AddToGroup("LIG", []int{1})
	assert.True(t, errors.Is(err, ErrNoGroup))
	assert.True(t, errors.IsCode(err, errors.CodeMalformedContent))
}

func TestReadBadNumber(t *testing.T) {
	_, err := Read(strings.NewReader("[ SOLU ]\n 1 x\n"))
	assert.True(t, errors.IsCode(err, errors.CodeMalformedContent))
}
