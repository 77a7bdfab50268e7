package runlog

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	base := filepath.Join(t.TempDir(), "runs")

	run, err := New(base)
	require.NoError(t, err)

	assert.Len(t, run.ID, 8)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{6}_[0-9a-f]{8}$`), filepath.Base(run.Dir))
	assert.Equal(t, base, filepath.Dir(run.Dir))
	assert.DirExists(t, run.Dir)
	assert.Equal(t, filepath.Join(run.Dir, "plan.json"), run.Path("plan.json"))
}

func TestRunContext_Files(t *testing.T) {
	run, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, run.Write("plan.txt", []byte("hello")))

	f, err := run.Create("plan.log")
	require.NoError(t, err)
	_, err = f.WriteString("PLAN_EVENT:{}\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(run.Path("plan.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestListRuns(t *testing.T) {
	base := t.TempDir()

	older := filepath.Join(base, "2025-01-15_143052_aaaaaaaa")
	newer := filepath.Join(base, "2025-02-01_090000_bbbbbbbb")
	require.NoError(t, os.MkdirAll(older, 0755))
	require.NoError(t, os.MkdirAll(newer, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(newer, "plan.json"), []byte("{}"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(newer, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "stray.txt"), []byte("x"), 0644))

	runs, err := ListRuns(base)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "2025-02-01_090000_bbbbbbbb", runs[0].Name)
	assert.Equal(t, newer, runs[0].Dir)
	require.Len(t, runs[0].Files, 1)
	assert.Equal(t, File{Name: "plan.json", Path: filepath.Join(newer, "plan.json"), Size: 2}, runs[0].Files[0])

	assert.Equal(t, "2025-01-15_143052_aaaaaaaa", runs[1].Name)
	assert.Empty(t, runs[1].Files)
}

func TestListRuns_MissingDir(t *testing.T) {
	runs, err := ListRuns(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}
