package packager

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deploykit/bundler/internal/archiver"
	"github.com/deploykit/bundler/internal/config"
	"github.com/deploykit/bundler/internal/domain/bundle"
	"github.com/deploykit/bundler/internal/logger"
	repo "github.com/deploykit/bundler/internal/repository/artifact"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// ConfigPath is an optional path to the service manifest (defaults to
	// serverless.yml in the source directory).
	ConfigPath string
	// SourceDir is the root of the tree to package (defaults to ".").
	SourceDir string
	// OutputDir is where artifacts are written (defaults to
	// "<source-dir>/.serverless").
	OutputDir string
	// FunctionKey, when set, packages only the named function instead of the
	// whole service.
	FunctionKey string
}

// DefaultOutputDirname is the artifact directory created inside the source tree.
const DefaultOutputDirname = ".serverless"

// errPackagingInProgress indicates that another packaging run holds the marker.
var errPackagingInProgress = errors.New("another packaging run is in progress")

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "bundler")

	sourceDir := opts.SourceDir
	if sourceDir == "" {
		sourceDir = "."
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(sourceDir, DefaultOutputDirname)
	}

	configPath := opts.ConfigPath
	if configPath == "" && sourceDir != "." {
		configPath = filepath.Join(sourceDir, config.DefaultManifestFilename)
	}

	manifest, err := config.Load(configPath)
	if err != nil {
		return err
	}

	svc, err := bundle.FromManifest(manifest)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(outputDir, archiver.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	markerPath := filepath.Join(outputDir, MarkerFilename)
	if isPackagingRunningNow(ctx, markerPath) {
		return errPackagingInProgress
	}

	if err = createMarker(markerPath); err != nil {
		return fmt.Errorf("create packaging marker: %w", err)
	}

	defer removeMarker(markerPath)

	s := newService(
		svc,
		archiver.NewZipArchiver(sourceDir, outputDir),
		repo.NewFileRepository(filepath.Join(outputDir, repo.DefaultDescriptionFilename)),
	)

	artifacts, err := s.packageRequested(ctx, opts.FunctionKey)
	if err != nil {
		return fmt.Errorf("packager failed: %w", err)
	}

	if err = s.saveDescription(ctx, artifacts); err != nil {
		return fmt.Errorf("save packaging description: %w", err)
	}

	for _, produced := range artifacts {
		logger.InfoKV(ctx, "Artifact created", "name", produced.Name, "path", produced.Path)
	}

	logger.Info(ctx, "Packager completed successfully")

	return nil
}

// packageRequested runs either a single-function or a whole-service packaging.
func (s *service) packageRequested(ctx context.Context, functionKey string) ([]*bundle.Artifact, error) {
	if functionKey == "" {
		return s.PackageService(ctx)
	}

	logger.InfoKV(ctx, "Packaging single function", "function", functionKey)

	produced, err := s.PackageFunction(ctx, functionKey)
	if err != nil {
		return nil, err
	}

	return []*bundle.Artifact{produced}, nil
}

// saveDescription records checksums of the produced artifacts on disk.
func (s *service) saveDescription(ctx context.Context, artifacts []*bundle.Artifact) error {
	description := repo.NewDescription(s.svc.Name)
	description.CreatedAt = time.Now().UTC()

	for _, produced := range artifacts {
		checksum, err := repo.FileChecksum(produced.Path)
		if err != nil {
			return err
		}

		produced.Checksum = base64.StdEncoding.EncodeToString(checksum)
		produced.CreatedAt = description.CreatedAt

		description.Artifacts[produced.Name] = repo.Entry{
			Path:     produced.Path,
			Checksum: produced.Checksum,
		}
	}

	return s.repo.Save(ctx, description)
}
