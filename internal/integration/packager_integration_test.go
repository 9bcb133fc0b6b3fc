package integration

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deploykit/bundler/internal/config"
	repo "github.com/deploykit/bundler/internal/repository/artifact"
	"github.com/deploykit/bundler/internal/service/packager"
)

// writeProjectFile creates a file with parent directories inside the project tree.
func writeProjectFile(t *testing.T, root, relativePath, contents string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(relativePath))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}

// archiveEntries returns the sorted entry names of a zip artifact.
func archiveEntries(t *testing.T, path string) []string {
	t.Helper()

	reader, err := zip.OpenReader(path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, reader.Close())
	}()

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}

	sort.Strings(names)

	return names
}

// TestPackager_CollectiveRun packages a whole project into one artifact and
// verifies default excludes are applied and a description is recorded.
func TestPackager_CollectiveRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProjectFile(t, dir, "handler.js", "exports.handler = null")
	writeProjectFile(t, dir, "lib/util.js", "module.exports = {}")
	writeProjectFile(t, dir, ".git/config", "[core]")
	writeProjectFile(t, dir, ".gitignore", "node_modules")
	writeProjectFile(t, dir, config.DefaultManifestFilename, `
service: test-proj
functions:
  test-one:
    handler: handler.one
  test-two:
    handler: handler.two
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := packager.Run(ctx, &packager.Options{SourceDir: dir})
	require.NoError(t, err)

	artifactPath := filepath.Join(dir, packager.DefaultOutputDirname, "test-proj.zip")
	require.Equal(t, []string{"handler.js", "lib/util.js"}, archiveEntries(t, artifactPath))

	// Description records the artifact with its checksum.
	descriptionPath := filepath.Join(dir, packager.DefaultOutputDirname, repo.DefaultDescriptionFilename)
	description, err := repo.NewFileRepository(descriptionPath).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "test-proj", description.Service)
	require.Len(t, description.Artifacts, 1)
	require.NotEmpty(t, description.Artifacts["test-proj.zip"].Checksum)
}

// TestPackager_IndividualRun produces one artifact per function honoring
// per-function include patterns.
func TestPackager_IndividualRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProjectFile(t, dir, "one.js", "exports.one = null")
	writeProjectFile(t, dir, "two.js", "exports.two = null")
	writeProjectFile(t, dir, config.DefaultManifestFilename, `
service: test-proj
package:
  individually: true
  exclude:
    - "*.js"
functions:
  test-one:
    handler: one.handler
    package:
      include:
        - one.js
  test-two:
    handler: two.handler
    package:
      include:
        - two.js
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := packager.Run(ctx, &packager.Options{SourceDir: dir})
	require.NoError(t, err)

	outputDir := filepath.Join(dir, packager.DefaultOutputDirname)
	require.Equal(t, []string{"one.js"},
		archiveEntries(t, filepath.Join(outputDir, "test-proj-test-one.zip")))
	require.Equal(t, []string{"two.js"},
		archiveEntries(t, filepath.Join(outputDir, "test-proj-test-two.zip")))

	// No combined artifact.
	_, err = os.Stat(filepath.Join(outputDir, "test-proj.zip"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestPackager_SingleFunctionRun packages only the requested function and
// fails with an error for unknown keys.
func TestPackager_SingleFunctionRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProjectFile(t, dir, "handler.js", "exports.handler = null")
	writeProjectFile(t, dir, config.DefaultManifestFilename, `
service: test-proj
functions:
  test-one:
    handler: handler.one
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := packager.Run(ctx, &packager.Options{SourceDir: dir, FunctionKey: "test-one"})
	require.NoError(t, err)

	artifactPath := filepath.Join(dir, packager.DefaultOutputDirname, "test-proj-test-one.zip")
	require.Equal(t, []string{"handler.js"}, archiveEntries(t, artifactPath))

	err = packager.Run(ctx, &packager.Options{SourceDir: dir, FunctionKey: "missing"})
	require.Error(t, err)
}

// TestPackager_RefusesConcurrentRun returns an error while a fresh marker exists.
func TestPackager_RefusesConcurrentRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeProjectFile(t, dir, "handler.js", "exports.handler = null")
	writeProjectFile(t, dir, config.DefaultManifestFilename, `
service: test-proj
functions:
  test-one:
    handler: handler.one
`)

	outputDir := filepath.Join(dir, packager.DefaultOutputDirname)
	require.NoError(t, os.MkdirAll(outputDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(outputDir, packager.MarkerFilename),
		[]byte("1"),
		0o600,
	))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := packager.Run(ctx, &packager.Options{SourceDir: dir})
	require.Error(t, err)
}
