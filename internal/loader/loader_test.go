package loader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const people = `Jim Halpert, Sales, Salesman, jim@dundlermifflin.com
Dwight Schrute, Sales, Manager, schrute@dundlermifflin.com, BRL
Gabe Lewis, Director, Manager, glewis@dundlermifflin.com, usd
`

func TestParse(t *testing.T) {
	records, errs := Parse(strings.NewReader(people))
	require.Empty(t, errs)
	require.Len(t, records, 3)

	jim := records[0]
	assert.Equal(t, 1, jim.Line)
	assert.Equal(t, "Jim Halpert", jim.Fields.Name)
	assert.Equal(t, "Sales", jim.Fields.Department)
	assert.Equal(t, "Salesman", jim.Fields.Role)
	assert.Equal(t, "jim@dundlermifflin.com", jim.Fields.Email)
	assert.Empty(t, jim.Fields.Currency)

	assert.Equal(t, "BRL", records[1].Fields.Currency)
	assert.Equal(t, "usd", records[2].Fields.Currency)
}

func TestParseSkipsMalformedRows(t *testing.T) {
	input := "only, three, cols\n" +
		"Jim Halpert, Sales, Salesman, jim@dundlermifflin.com\n" +
		"a, b, c, d, e, f\n"

	records, errs := Parse(strings.NewReader(input))
	require.Len(t, records, 1)
	require.Len(t, errs, 2)

	var rowErr *RowError
	require.True(t, errors.As(errs[0], &rowErr))
	assert.Equal(t, 1, rowErr.Line)
	require.True(t, errors.As(errs[1], &rowErr))
	assert.Equal(t, 3, rowErr.Line)
}

func TestParseIgnoresBlankLinesAndComments(t *testing.T) {
	input := "# name, department, role, email\n\n" + people
	records, errs := Parse(strings.NewReader(input))
	assert.Empty(t, errs)
	assert.Len(t, records, 3)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(people), 0o600))

	records, errs, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Len(t, records, 3)

	_, _, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
