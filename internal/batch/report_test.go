package batch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	r := newReport([]Scenario{{Label: "Padang"}, {Label: "Bengkulu"}, {Label: "Palu"}})
	r.record(1, errors.New("no such file"))
	r.record(0, nil)

	assert.Equal(t, 1, r.Passed())
	assert.Equal(t, 2, r.Failed())
	assert.Equal(t, 3, r.Tasks())

	errs := r.Errors()
	assert.EqualError(t, errs["Bengkulu"], "no such file")
	assert.ErrorIs(t, errs["Palu"], ErrNotRun)
	assert.NotContains(t, errs, "Padang")

	var b strings.Builder
	_, err := r.WriteTo(&b)
	require.NoError(t, err)
	assert.Equal(t, ` Batch Report File
-----------------------------
P: Padang
F: Bengkulu
F: Palu
-----------------------------
Total passed: 1
Total failed: 2
Total tasks: 3
-----------------------------
`, b.String())

	dir := filepath.Join(t.TempDir(), "reports")
	path, err := r.WriteFile(dir)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, b.String(), string(data))
}
