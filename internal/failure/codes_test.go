package failure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCodeTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
AC04:
  meaning: "Closed account number"
  checks:
    - "Verify the beneficiary account is open"
  ask:
    - "Ask beneficiary bank for correct account details"
AM05:
  meaning: "Duplication"
  checks:
    - "Search for a duplicate payment with the same references"
  ask:
    - "Ask whether the payment was processed once or twice"
`), 0o644))

	table, err := LoadCodeTable(path)
	require.NoError(t, err)
	require.Len(t, table, 2)

	ac04 := table["AC04"]
	assert.Equal(t, "Closed account number", ac04.Meaning)
	require.Len(t, ac04.Checks, 1)
	require.Len(t, ac04.Ask, 1)

	_, ok := table["AC99"]
	assert.False(t, ok)
}

func TestLoadCodeTableMissingFile(t *testing.T) {
	_, err := LoadCodeTable(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading reason-code table")
}

func TestLoadCodeTableMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("AC04: [meaning: {\n"), 0o644))

	_, err := LoadCodeTable(path)
	require.Error(t, err)
}

func TestShippedCodeTable(t *testing.T) {
	table, err := LoadCodeTable(filepath.Join("..", "..", "configs", "reason_codes.yaml"))
	require.NoError(t, err)

	for _, code := range []string{"AC01", "AC04", "AG01", "AM04", "AM05", "BE04", "DUPL"} {
		entry, ok := table[code]
		require.Truef(t, ok, "expected %s in shipped table", code)
		assert.NotEmptyf(t, entry.Meaning, "%s needs a meaning", code)
		assert.NotEmptyf(t, entry.Checks, "%s needs checks", code)
		assert.NotEmptyf(t, entry.Ask, "%s needs questions", code)
	}
}
