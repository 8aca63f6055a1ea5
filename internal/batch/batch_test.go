package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mr1hm/go-quake-impact/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// writeASC writes a rows x cols ESRI ASCII grid filled with v.
func writeASC(t *testing.T, path string, rows, cols int, v float64) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "ncols %d\nnrows %d\nxllcorner 100\nyllcorner -2\ncellsize 0.5\nNODATA_value -9999\n", cols, rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%g", v)
		}
		b.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

// layers writes a uniform MMI 7 hazard and a population of 1000 per cell
// into dir.
func layers(t *testing.T, dir string) {
	t.Helper()
	writeASC(t, filepath.Join(dir, "shake.asc"), 2, 3, 7)
	writeASC(t, filepath.Join(dir, "people.asc"), 2, 3, 1000)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testRepo(t *testing.T) *repository.SQLiteDB {
	t.Helper()
	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
