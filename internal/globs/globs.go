package globs

// defaultExcludes lists patterns that never belong in a deployable artifact.
// The manifest itself and previously built artifacts are always skipped.
//
//nolint:gochecknoglobals // Fixed policy shared by every packaging run.
var defaultExcludes = []string{
	".git/**",
	".gitignore",
	".DS_Store",
	"npm-debug.log",
	"serverless.yaml",
	"serverless.yml",
	".serverless/**",
}

// DefaultExcludes returns a fresh copy of the built-in exclude patterns.
func DefaultExcludes() []string {
	return append([]string(nil), defaultExcludes...)
}

// Excludes merges the built-in excludes with service-level and function-level
// patterns, in that order. Order matters: the archiver evaluates later
// patterns after earlier ones, so caller-supplied patterns can tighten the
// defaults. No deduplication is performed and the result never aliases the
// input slices.
func Excludes(service, function []string) []string {
	merged := make([]string, 0, len(defaultExcludes)+len(service)+len(function))
	merged = append(merged, defaultExcludes...)
	merged = append(merged, service...)
	merged = append(merged, function...)

	return merged
}

// Includes merges service-level include patterns with function-level ones,
// function patterns last. Returns an empty slice when neither is set.
func Includes(service, function []string) []string {
	merged := make([]string, 0, len(service)+len(function))
	merged = append(merged, service...)
	merged = append(merged, function...)

	return merged
}
