package reconstruct

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/reconstruct/parser"
	"github.com/arjunmahishi/reconstruct/types"
)

const loggerManifest = `
[services.logger]
class = 'App\Logging\LoggerImpl'
`

const loggerSource = `class A {
  run() {
    this.get("logger").info();
  }
}
`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessCollectsFileErrors(t *testing.T) {
	dir := t.TempDir()
	manifest := write(t, dir, "services.toml", loggerManifest)
	write(t, dir, "a.ts", loggerSource)
	write(t, dir, "b.ts", "class B {\n  run( {\n}\n")

	results, err := Process(context.Background(), Options{Path: dir, Manifest: manifest, Jobs: 2})

	var syntaxErr *parser.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	require.ErrorContains(t, err, "b.ts: syntax error")
	require.Len(t, results, 1)
	assert.Equal(t, "a.ts", results[0].File)
	assert.True(t, results[0].Written)
}

func TestProcessBootFailureTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "a.ts", loggerSource)

	_, err := Process(context.Background(), Options{Path: dir, Manifest: filepath.Join(dir, "missing.toml")})
	require.ErrorContains(t, err, "booting container")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, loggerSource, string(data))
}

func TestProcessKeepsFileMode(t *testing.T) {
	dir := t.TempDir()
	manifest := write(t, dir, "services.toml", loggerManifest)
	path := write(t, dir, "a.ts", loggerSource)
	require.NoError(t, os.Chmod(path, 0o600))

	results, err := Process(context.Background(), Options{File: path, Manifest: manifest})
	require.NoError(t, err)
	require.Equal(t, []types.FileResult{{
		File:    "a.ts",
		Changed: true,
		Written: true,
		Sites:   1,
		Migrations: []types.Migration{
			{Class: "A", Method: "run", Key: "logger", Property: "logger", Type: `App\Logging\LoggerImpl`},
		},
	}}, results)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestProcessRemovesCacheDir(t *testing.T) {
	dir := t.TempDir()
	manifest := write(t, dir, "services.toml", loggerManifest)
	write(t, dir, "src/a.ts", loggerSource)
	cache := filepath.Join(dir, ".reconstruct", "cache")

	_, err := Process(context.Background(), Options{Path: dir, Manifest: manifest, CacheDir: cache, DryRun: true})
	require.NoError(t, err)
	assert.NoDirExists(t, cache)
}

func TestProcessCancelled(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.ts", loggerSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := Process(ctx, Options{Path: dir})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestUnknownLanguage(t *testing.T) {
	_, err := Process(context.Background(), Options{Path: t.TempDir(), Language: "cobol"})
	require.EqualError(t, err, "cobol language not registered")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, ConfigFileName, `
[container]
manifest = "config/services.yaml"
environment = "test"
debug = false
cache-dir = "/tmp/cache"

[naming]
strip-suffixes = ["Service"]

[locator]
method = "service"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config/services.yaml"), cfg.path(cfg.Container.Manifest))
	assert.Equal(t, "/tmp/cache", cfg.path(cfg.Container.CacheDir))
	assert.Equal(t, "test", cfg.Container.Environment)
	require.NotNil(t, cfg.Container.Debug)
	assert.False(t, *cfg.Container.Debug)
	assert.Equal(t, []string{"Service"}, cfg.Naming.StripSuffixes)
	assert.Equal(t, "service", cfg.Locator.Method)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	require.ErrorContains(t, err, "cannot read")

	_, err = LoadConfig(write(t, dir, "bad.toml", "[container\n"))
	require.ErrorContains(t, err, "parse error in")

	_, err = LoadConfig(write(t, dir, "typo.toml", "[container]\nmanifesto = \"x\"\n"))
	require.ErrorContains(t, err, `unknown key "container.manifesto"`)
}

func TestFindConfig(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ConfigFileName, "[locator]\nmethod = \"service\"\n")
	nested := filepath.Join(dir, "src", "app")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := FindConfig(nested)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "service", cfg.Locator.Method)

	s, err := resolve(Options{Path: nested})
	require.NoError(t, err)
	assert.Equal(t, "service", s.lookup)

	s, err = resolve(Options{Path: nested, LookupName: "locate"})
	require.NoError(t, err)
	assert.Equal(t, "locate", s.lookup)
}
