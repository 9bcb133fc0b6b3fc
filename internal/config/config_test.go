package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and derived defaults for the manifest.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing service name.
	manifest := new(Manifest)

	err := Validate(manifest)
	require.Error(t, err)

	// Missing handler.
	manifest = &Manifest{
		Service: "test-proj",
		Functions: map[string]*FunctionConfig{
			"test-one": {},
		},
	}

	err = Validate(manifest)
	require.Error(t, err)

	// Okay, with name defaulting.
	manifest = &Manifest{
		Service: "test-proj",
		Functions: map[string]*FunctionConfig{
			"test-one": {Handler: "handler.one"},
			"test-two": {Handler: "handler.two", Name: "custom-two"},
		},
	}

	err = Validate(manifest)
	require.NoError(t, err)
	require.Equal(t, "test-proj-test-one", manifest.Functions["test-one"].Name)
	require.Equal(t, "custom-two", manifest.Functions["test-two"].Name)
}

// TestSaveLoadRoundtrip ensures a manifest is persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultManifestFilename)

	individually := true
	manifest := &Manifest{
		Service: "test-proj",
		Package: PackageConfig{
			Individually: &individually,
			Exclude:      []string{"node_modules/**"},
		},
		Functions: map[string]*FunctionConfig{
			"test-one": {
				Handler: "handler.one",
				Package: &PackageConfig{
					Include: []string{"handler.js"},
				},
			},
		},
	}

	require.NoError(t, Save(path, manifest))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, manifest.Service, loaded.Service)
	require.NotNil(t, loaded.Package.Individually)
	require.True(t, *loaded.Package.Individually)
	require.Equal(t, manifest.Package.Exclude, loaded.Package.Exclude)
	require.Equal(t, []string{"handler.js"}, loaded.Functions["test-one"].Package.Include)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_ExplicitFalseSurvives distinguishes "individually: false" from an unset flag.
func TestLoad_ExplicitFalseSurvives(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultManifestFilename)
	contents := []byte(`
service: test-proj
functions:
  test-one:
    handler: handler.one
    package:
      individually: false
  test-two:
    handler: handler.two
`)
	require.NoError(t, os.WriteFile(path, contents, DefaultFilePermissions))

	loaded, err := Load(path)
	require.NoError(t, err)

	one := loaded.Functions["test-one"]
	require.NotNil(t, one.Package)
	require.NotNil(t, one.Package.Individually)
	require.False(t, *one.Package.Individually)

	two := loaded.Functions["test-two"]
	require.Nil(t, two.Package)
}

// TestLoad_MissingFile surfaces the read error.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}
