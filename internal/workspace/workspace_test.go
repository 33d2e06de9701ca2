package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare_CleansPreviousRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "report")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0755))
	stale := filepath.Join(dir, "logs", "001_old_test.js.log")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0644))

	ws, err := Prepare(dir)
	require.NoError(t, err)
	assert.True(t, ws.Cleaned())

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale artifact must be removed")

	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPrepare_FreshDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "report")

	ws, err := Prepare(dir)
	require.NoError(t, err)
	assert.False(t, ws.Cleaned())
	assert.Equal(t, dir, ws.Dir())
}

func TestPrepare_ScratchWriteError(t *testing.T) {
	// A regular file in the way of the directory tree makes creation fail
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := Prepare(filepath.Join(blocker, "report"))
	require.Error(t, err)
	assert.True(t, IsScratchWriteError(err))

	_, err = Prepare("")
	assert.True(t, IsScratchWriteError(err))
}

func TestPrepare_RefusesInputDirectories(t *testing.T) {
	base := t.TempDir()
	tests := filepath.Join(base, "func_req_tests")
	script := filepath.Join(tests, "login_test.js")
	require.NoError(t, os.MkdirAll(tests, 0755))
	require.NoError(t, os.WriteFile(script, []byte("x"), 0644))

	cases := []struct {
		name string
		dir  string
	}{
		{name: "base directory", dir: base},
		{name: "scan directory", dir: tests},
		{name: "scan directory with trailing slash", dir: tests + string(filepath.Separator)},
		{name: "parent of base", dir: filepath.Dir(base)},
		{name: "relative alias", dir: filepath.Join(tests, "..")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Prepare(tc.dir, base, tests)
			require.Error(t, err)
			assert.True(t, IsScratchWriteError(err))
			assert.ErrorIs(t, err, ErrProtectedPath)

			_, err = os.Stat(script)
			assert.NoError(t, err, "test script must survive")
		})
	}
}

func TestPrepare_AllowsSiblingAndNestedReportDirs(t *testing.T) {
	base := t.TempDir()
	tests := filepath.Join(base, "tests")
	require.NoError(t, os.MkdirAll(tests, 0755))

	// Inside the base directory but not containing any input
	_, err := Prepare(filepath.Join(base, "report"), base, tests)
	require.NoError(t, err)

	// Shares a name prefix with a scan directory
	_, err = Prepare(filepath.Join(base, "tests-report"), base, tests)
	require.NoError(t, err)
}

func TestLogPath_UniquePerUnit(t *testing.T) {
	ws, err := Prepare(filepath.Join(t.TempDir(), "report"))
	require.NoError(t, err)

	a := ws.LogPath(0, "login_test.js")
	b := ws.LogPath(1, "login_test.js")
	assert.NotEqual(t, a, b)
	assert.Equal(t, "001_login_test.js.log", filepath.Base(a))
	assert.Equal(t, "003_weird_name_test.js.log", filepath.Base(ws.LogPath(2, "weird name_test.js")))
}

func TestWriteLog(t *testing.T) {
	ws, err := Prepare(filepath.Join(t.TempDir(), "report"))
	require.NoError(t, err)

	path, err := ws.WriteLog(0, "a_test.js", "hello\n")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}
