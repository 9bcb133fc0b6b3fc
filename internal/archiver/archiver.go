package archiver

import "context"

// Archiver produces an archive from a source tree, honoring ordered
// include/exclude glob patterns. Exclude patterns are evaluated first so
// include patterns can re-admit explicitly excluded paths.
type Archiver interface {
	// Create writes an archive named fileName containing every file from the
	// source tree that survives pattern evaluation, and returns the path of
	// the produced artifact.
	Create(ctx context.Context, excludes, includes []string, fileName string) (string, error)
}
