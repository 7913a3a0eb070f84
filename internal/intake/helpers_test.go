package intake

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var pdfHeader = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

// writeSized writes header followed by zero padding up to size bytes.
func writeSized(t *testing.T, dir, name string, header []byte, size int64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = f.Write(header)
	require.NoError(t, err)
	if size > int64(len(header)) {
		require.NoError(t, f.Truncate(size))
	}
	require.NoError(t, f.Close())
	return path
}

func writeText(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}
