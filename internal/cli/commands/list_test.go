package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptest/internal/exitcodes"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	base, loader := newFixture(t)
	loader.Register("signup_test.js", func(ctx context.Context, w io.Writer) error {
		return errors.New("boom")
	})

	// Without a stored run there are no markers
	out, err := executeRoot(t, "list", "--base-dir", base, "-d", "func_req_tests", "-d", "missing", "-d", "non_Func_req_tests")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 3 test file(s):")
	assert.Contains(t, out, "Directory not found: missing")
	assert.NotContains(t, out, "[F]")
	assert.NotContains(t, out, "helpers.js")

	cfg := testConfig(base)
	_, err = runOnce(t, cfg, loader)
	require.True(t, exitcodes.IsTestFailureError(err))

	out, err = executeRoot(t, "list", "--base-dir", base, "-d", "func_req_tests", "-d", "non_Func_req_tests")
	require.NoError(t, err)
	assert.Contains(t, out, "signup_test.js [F]")
	assert.NotContains(t, out, "login_test.js [F]")

	out, err = executeRoot(t, "list", "--base-dir", base, "-d", "func_req_tests", "-d", "non_Func_req_tests", "--filter", "nothing*")
	require.NoError(t, err)
	assert.Contains(t, out, "No tests found")
}

func TestFailuresCommand_Plain(t *testing.T) {
	base, loader := newFixture(t)

	out, err := executeRoot(t, "failures", "--base-dir", base, "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored run found")

	loader.Register("login_test.js", func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, "Error: login page did not load\n")
		return errors.New("exit status 1")
	})
	_, err = runOnce(t, testConfig(base), loader)
	require.True(t, exitcodes.IsTestFailureError(err))

	out, err = executeRoot(t, "failures", "--base-dir", base, "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "✗ 1 test file(s) failed")
	assert.Contains(t, out, "login_test.js")
	assert.Contains(t, out, "Error: login page did not load")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	_, err := executeRoot(t, "run", "--base-dir", t.TempDir(), "--format", "pdf")
	require.Error(t, err)
	assert.Equal(t, exitcodes.RuntimeErr, exitcodes.FromError(err))

	_, err = executeRoot(t, "run", "--config", "/does/not/exist.yaml")
	assert.Equal(t, exitcodes.RuntimeErr, exitcodes.FromError(err))
}
