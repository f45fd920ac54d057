package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve_PassthroughForNonEnvLeaf(t *testing.T) {
	v, ok := Resolve("plain-value")
	require.True(t, ok)
	require.Equal(t, "plain-value", v)
}

func TestResolve_EnvLeafResolved(t *testing.T) {
	t.Setenv("WAYLE_TEST_API_KEY", "abc")
	v, ok := Resolve("$WAYLE_TEST_API_KEY")
	require.True(t, ok)
	require.Equal(t, "abc", v)
}

func TestResolve_UnsetEnvLeafYieldsAbsent(t *testing.T) {
	require.NoError(t, os.Unsetenv("WAYLE_TEST_UNSET"))
	_, ok := Resolve("$WAYLE_TEST_UNSET")
	require.False(t, ok)
}

func TestLoadEnvFiles_FallsBackWhenProcessEnvUnset(t *testing.T) {
	require.NoError(t, os.Unsetenv("WAYLE_TEST_FROM_FILE"))
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("# comment\nWAYLE_TEST_FROM_FILE=\"from-file\"\n"), 0o644))

	require.NoError(t, loadEnvFiles(dir))
	defer func() { require.NoError(t, loadEnvFiles(t.TempDir())) }()

	v, ok := Resolve("$WAYLE_TEST_FROM_FILE")
	require.True(t, ok)
	require.Equal(t, "from-file", v)
}

func TestLoadEnvFiles_ProcessEnvTakesPriority(t *testing.T) {
	t.Setenv("WAYLE_TEST_PRIORITY", "from-process")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("WAYLE_TEST_PRIORITY=from-file\n"), 0o644))

	require.NoError(t, loadEnvFiles(dir))
	defer func() { require.NoError(t, loadEnvFiles(t.TempDir())) }()

	v, ok := Resolve("$WAYLE_TEST_PRIORITY")
	require.True(t, ok)
	require.Equal(t, "from-process", v)
}
