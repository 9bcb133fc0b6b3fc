package packager

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/deploykit/bundler/internal/archiver"
	"github.com/deploykit/bundler/internal/domain/bundle"
	"github.com/deploykit/bundler/internal/globs"
	"github.com/deploykit/bundler/internal/logger"
	repo "github.com/deploykit/bundler/internal/repository/artifact"
)

// service orchestrates packaging of a single manifest. It is unexported to
// keep the CLI decoupled from the implementation; an archiver is injected so
// tests can substitute a double.
type service struct {
	// svc is the domain model of the service being packaged.
	svc *bundle.Service
	// archiver produces the actual archive files.
	archiver archiver.Archiver
	// repo persists the packaging description after a successful run.
	repo repo.Repository
}

// newService creates a packaging service for the provided domain model.
func newService(svc *bundle.Service, arch archiver.Archiver, repository repo.Repository) *service {
	return &service{
		svc:      svc,
		archiver: arch,
		repo:     repository,
	}
}

// PackageService packages every function of the service. Functions whose
// effective mode is individual each get their own artifact; the rest share a
// single combined artifact. Units are independent and run concurrently; the
// call waits for all of them and fails as a whole when any unit fails.
// Artifacts already produced by succeeded units are left on disk.
func (s *service) PackageService(ctx context.Context) ([]*bundle.Artifact, error) {
	var (
		individual []string
		collective int
	)

	for _, key := range s.svc.FunctionKeys() {
		function, err := s.svc.Function(key)
		if err != nil {
			return nil, err
		}

		if function.PackagedIndividually(s.svc.Individually) {
			individual = append(individual, key)
		} else {
			collective++
		}
	}

	units := len(individual)
	if collective > 0 {
		units++
	}

	var (
		artifacts       = make([]*bundle.Artifact, units)
		group, groupCtx = errgroup.WithContext(ctx)
	)

	slot := 0

	if collective > 0 {
		logger.InfoKV(ctx, "Packaging service collectively", "functions", collective)

		group.Go(func() error {
			produced, err := s.PackageAll(groupCtx)
			if err != nil {
				return err
			}

			artifacts[0] = produced

			return nil
		})

		slot++
	}

	for _, key := range individual {
		key := key
		index := slot
		slot++

		group.Go(func() error {
			produced, err := s.PackageFunction(groupCtx, key)
			if err != nil {
				return err
			}

			artifacts[index] = produced

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return artifacts, nil
}

// PackageAll produces the combined artifact for the whole service using only
// service-level glob lists. The artifact is named "<service-name>.zip".
func (s *service) PackageAll(ctx context.Context) (*bundle.Artifact, error) {
	var (
		excludes     = globs.Excludes(s.svc.Exclude, nil)
		includes     = globs.Includes(s.svc.Include, nil)
		artifactName = s.svc.Name + ".zip"
	)

	path, err := s.archiver.Create(ctx, excludes, includes, artifactName)
	if err != nil {
		return nil, fmt.Errorf("package service %s: %w", s.svc.Name, err)
	}

	return &bundle.Artifact{
		Name: artifactName,
		Path: path,
	}, nil
}

// PackageFunction produces an artifact for a single function, merging the
// function's glob lists on top of the service-level ones. The artifact is
// named after the function's declared name, not its manifest key.
func (s *service) PackageFunction(ctx context.Context, key string) (*bundle.Artifact, error) {
	function, err := s.svc.Function(key)
	if err != nil {
		return nil, err
	}

	var (
		excludes     = globs.Excludes(s.svc.Exclude, function.Exclude)
		includes     = globs.Includes(s.svc.Include, function.Include)
		artifactName = function.Name + ".zip"
	)

	path, err := s.archiver.Create(ctx, excludes, includes, artifactName)
	if err != nil {
		return nil, fmt.Errorf("package function %s: %w", key, err)
	}

	return &bundle.Artifact{
		Name: artifactName,
		Path: path,
	}, nil
}
