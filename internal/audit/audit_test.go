package audit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter_RowsVisibleBeforeClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fix_log_apply.csv")
	w, err := Create(path)
	require.NoError(t, err)

	assert.Equal(t, [][]string{Header}, readRows(t, path))

	require.NoError(t, w.Record(Record{
		Kind: "convert_m4a", Source: "/m/a, b.m4a", Destination: "/m/a, b.flac",
		Status: StatusOK, Note: "m4a→flac",
	}))
	rows := readRows(t, path)
	require.Len(t, rows, 2, "row must be flushed immediately")
	assert.Equal(t, []string{"convert_m4a", "/m/a, b.m4a", "/m/a, b.flac", "OK", "m4a→flac"}, rows[1])

	require.NoError(t, w.Record(Record{Kind: "repair_flac", Source: "/m/c.flac", Status: StatusErrorVerify, Note: "re-encode flac"}))
	assert.Equal(t, 2, w.Rows())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Error(t, w.Record(Record{}))

	rows = readRows(t, path)
	assert.Equal(t, "ERROR: verify", rows[2][3])
}

func TestCreate_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fix_log_preview.csv")
	require.NoError(t, os.WriteFile(path, []byte("old,content\nmore,rows\n"), 0o644))

	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, [][]string{Header}, readRows(t, path))
}

func TestCreate_BadDir(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "log.csv"))
	assert.Error(t, err)
}
