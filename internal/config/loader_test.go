package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pozitronik/wayle/pkg/service"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLoadWithImports_MergesImportsThenMain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.toml"), `
[bar]
height = 10

[general]
log_level = "debug"
`)
	writeFile(t, filepath.Join(dir, "main.toml"), `
imports = ["base"]

[bar]
height = 20
`)

	doc, err := loadWithImports(filepath.Join(dir, "main.toml"))
	require.NoError(t, err)

	bar := doc["bar"].(rawDoc)
	require.EqualValues(t, 20, bar["height"], "main overrides imported value")

	general := doc["general"].(rawDoc)
	require.Equal(t, "debug", general["log_level"], "import-only key survives the merge")
}

func TestLoadWithImports_DetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.toml"), `imports = ["b"]`)
	writeFile(t, filepath.Join(dir, "b.toml"), `imports = ["a"]`)

	_, err := loadWithImports(filepath.Join(dir, "a.toml"))
	require.Error(t, err)

	var svcErr *service.Error
	require.True(t, errors.As(err, &svcErr))
	require.Equal(t, service.KindCircularImport, svcErr.Kind)
	require.True(t, strings.Contains(svcErr.Error(), "a.toml"))
	require.True(t, strings.Contains(svcErr.Error(), "b.toml"))
}

func TestLoadWithImports_MalformedTOMLReportsDeserializationKind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.toml"), `not = [valid`)

	_, err := loadWithImports(filepath.Join(dir, "broken.toml"))
	require.Error(t, err)

	var svcErr *service.Error
	require.True(t, errors.As(err, &svcErr))
	require.Equal(t, service.KindConfigDeserialization, svcErr.Kind)
}

func TestLoader_Load_CreatesDefaultConfigWhenMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)

	loader, err := NewLoader()
	require.NoError(t, err)
	require.NoError(t, loader.Load())

	_, statErr := os.Stat(loader.Paths.ConfigFile())
	require.NoError(t, statErr)
	require.Equal(t, 32, loader.Tree.Bar.Height.Get())
}

func TestApplyLayer_UnresolvedSecretLeafKeepsPreviousValue(t *testing.T) {
	require.NoError(t, os.Unsetenv("WAYLE_TEST_APPLY_UNSET"))
	tree := NewTree()
	tree.Weather.Key.ApplyConfigLayer("previous-key")

	applyLayer(tree, rawDoc{"weather": rawDoc{"key": "$WAYLE_TEST_APPLY_UNSET"}}, layerRuntime)

	require.Equal(t, "previous-key", tree.Weather.Key.Get())
}

func TestApplyLayer_ResolvedSecretLeafOverrides(t *testing.T) {
	t.Setenv("WAYLE_TEST_APPLY_SET", "resolved-key")
	tree := NewTree()

	applyLayer(tree, rawDoc{"weather": rawDoc{"key": "$WAYLE_TEST_APPLY_SET"}}, layerRuntime)

	require.Equal(t, "resolved-key", tree.Weather.Key.Get())
}

func TestLoader_ReloadFile_AppliesConfigLayerChange(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)

	loader, err := NewLoader()
	require.NoError(t, err)
	require.NoError(t, loader.Load())

	ch, stop := loader.Tree.Bar.Height.Watch()
	defer stop()

	writeFile(t, loader.Paths.ConfigFile(), "[bar]\nheight = 40\n")
	require.NoError(t, loader.ReloadFile(loader.Paths.ConfigFile(), layerConfig))

	require.Equal(t, 40, loader.Tree.Bar.Height.Get())
	require.Equal(t, 40, <-ch)
}
