package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest describes a service and its functions as declared in the project
// manifest file.
type Manifest struct {
	// Service is the name of the deployable service.
	Service string `yaml:"service"`
	// Package holds service-wide packaging configuration.
	Package PackageConfig `yaml:"package"`
	// Functions maps function keys to their declarations.
	Functions map[string]*FunctionConfig `yaml:"functions"`
}

// PackageConfig controls how files are selected for an artifact. All fields
// are optional; absence means "inherit" for flags and "empty" for lists.
type PackageConfig struct {
	// Individually, when set, requests one artifact per function instead of
	// a single combined artifact. A pointer distinguishes an explicit false
	// from an unset value.
	Individually *bool `yaml:"individually,omitempty"`
	// Include lists glob patterns that re-admit files matched by excludes.
	Include []string `yaml:"include,omitempty"`
	// Exclude lists glob patterns for files to leave out of the artifact.
	Exclude []string `yaml:"exclude,omitempty"`
}

// FunctionConfig declares a single function within the service.
type FunctionConfig struct {
	// Handler is the entry point reference for the function runtime.
	Handler string `yaml:"handler"`
	// Name is the declared function name. When empty it defaults to
	// "<service>-<key>".
	Name string `yaml:"name,omitempty"`
	// Package optionally overrides the service-wide packaging configuration.
	Package *PackageConfig `yaml:"package,omitempty"`
}

const (
	// DefaultManifestFilename is the default name of the service manifest.
	DefaultManifestFilename = "serverless.yml"

	// AlternateManifestFilename is the accepted alternate manifest name.
	AlternateManifestFilename = "serverless.yaml"

	// DefaultFilePermissions is the default file permission for manifests.
	DefaultFilePermissions = 0o600
)

var (
	// errManifestIsNotSet is returned when a nil manifest is provided.
	errManifestIsNotSet = errors.New("manifest is not set")
	// errServiceNameRequired is returned when the service name is missing.
	errServiceNameRequired = errors.New("service name must be provided")
)

// Load reads the manifest from the provided path and validates essential
// fields. An empty path is resolved to the default manifest filename, with a
// fallback to the alternate filename when the default does not exist.
func Load(path string) (*Manifest, error) {
	if path == "" {
		path = DefaultManifestFilename
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = AlternateManifestFilename
		}
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(contents, &manifest); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	if err := Validate(&manifest); err != nil {
		return nil, err
	}

	return &manifest, nil
}

// Save writes the manifest to the provided path.
func Save(path string, manifest *Manifest) error {
	if manifest == nil {
		return errManifestIsNotSet
	}

	if path == "" {
		path = DefaultManifestFilename
	}

	if err := Validate(manifest); err != nil {
		return err
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// Validate checks the manifest for required fields and fills derived
// defaults: function names fall back to "<service>-<key>".
func Validate(manifest *Manifest) error {
	if manifest == nil {
		return errManifestIsNotSet
	}

	if manifest.Service == "" {
		return errServiceNameRequired
	}

	for key, function := range manifest.Functions {
		if function == nil {
			return fmt.Errorf("function %q: declaration is empty", key)
		}

		if function.Handler == "" {
			return fmt.Errorf("function %q: handler must be provided", key)
		}

		if function.Name == "" {
			function.Name = fmt.Sprintf("%s-%s", manifest.Service, key)
		}
	}

	return nil
}
