package archiver

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moby/patternmatcher"
)

// DefaultDirPermissions is used when creating the artifact output directory.
const DefaultDirPermissions = 0o755

// ZipArchiver writes zip artifacts from a source directory into a target
// directory. The walk order is lexical, so archives are deterministic for a
// given tree and pattern set.
type ZipArchiver struct {
	// sourceDir is the root of the tree to package.
	sourceDir string
	// targetDir is where produced artifacts are written.
	targetDir string
}

// NewZipArchiver creates an archiver reading from sourceDir and writing
// artifacts into targetDir.
func NewZipArchiver(sourceDir, targetDir string) *ZipArchiver {
	return &ZipArchiver{
		sourceDir: filepath.Clean(sourceDir),
		targetDir: filepath.Clean(targetDir),
	}
}

// Create walks the source tree, keeps every regular file that survives
// pattern evaluation, and writes them into targetDir/fileName.
func (a *ZipArchiver) Create(ctx context.Context, excludes, includes []string, fileName string) (string, error) {
	excludeMatcher, err := patternmatcher.New(excludes)
	if err != nil {
		return "", fmt.Errorf("compile exclude patterns: %w", err)
	}

	includeMatcher, err := patternmatcher.New(includes)
	if err != nil {
		return "", fmt.Errorf("compile include patterns: %w", err)
	}

	if err = os.MkdirAll(a.targetDir, DefaultDirPermissions); err != nil {
		return "", fmt.Errorf("create target directory: %w", err)
	}

	artifactPath := filepath.Join(a.targetDir, fileName)

	artifact, err := os.Create(artifactPath)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}

	writer := zip.NewWriter(artifact)

	if err = a.writeEntries(ctx, writer, excludeMatcher, includeMatcher); err != nil {
		// Best-effort cleanup of the partial artifact.
		_ = writer.Close()
		_ = artifact.Close()
		_ = os.Remove(artifactPath)

		return "", err
	}

	if err = writer.Close(); err != nil {
		_ = artifact.Close()

		return "", fmt.Errorf("finalize artifact: %w", err)
	}

	if err = artifact.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}

	return artifactPath, nil
}

// writeEntries walks the source tree and streams every selected file into the
// zip writer.
func (a *ZipArchiver) writeEntries(ctx context.Context, writer *zip.Writer, excludeMatcher, includeMatcher *patternmatcher.PatternMatcher) error {
	return filepath.WalkDir(a.sourceDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk source tree: %w", err)
		}

		if err = ctx.Err(); err != nil {
			return err
		}

		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}

		relativePath, err := filepath.Rel(a.sourceDir, path)
		if err != nil {
			return fmt.Errorf("resolve path %s: %w", path, err)
		}

		relativePath = filepath.ToSlash(relativePath)

		selected, err := a.selects(relativePath, excludeMatcher, includeMatcher)
		if err != nil {
			return err
		}

		if !selected {
			return nil
		}

		return a.writeEntry(writer, path, relativePath)
	})
}

// selects decides whether a path belongs in the artifact: excluded paths are
// dropped unless an include pattern re-admits them.
func (a *ZipArchiver) selects(relativePath string, excludeMatcher, includeMatcher *patternmatcher.PatternMatcher) (bool, error) {
	excluded, err := excludeMatcher.MatchesOrParentMatches(relativePath)
	if err != nil {
		return false, fmt.Errorf("match excludes for %s: %w", relativePath, err)
	}

	if !excluded {
		return true, nil
	}

	readmitted, err := includeMatcher.MatchesOrParentMatches(relativePath)
	if err != nil {
		return false, fmt.Errorf("match includes for %s: %w", relativePath, err)
	}

	return readmitted, nil
}

// writeEntry copies a single file into the zip writer under its relative path.
func (a *ZipArchiver) writeEntry(writer *zip.Writer, path, relativePath string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("build header for %s: %w", relativePath, err)
	}

	header.Name = relativePath
	header.Method = zip.Deflate

	target, err := writer.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", relativePath, err)
	}

	source, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	if _, err = io.Copy(target, source); err != nil {
		_ = source.Close()

		return fmt.Errorf("write entry %s: %w", relativePath, err)
	}

	return source.Close()
}
