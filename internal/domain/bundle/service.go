package bundle

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/deploykit/bundler/internal/config"
)

// Function is a single deployable unit of compute within a service.
type Function struct {
	// Key is the identifier of the function inside the manifest.
	Key string
	// Name is the declared artifact-facing name of the function.
	Name string
	// Handler is the entry point reference for the function runtime.
	Handler string
	// Individually, when set, overrides the service-wide packaging mode for
	// this function only. Nil means the service default applies.
	Individually *bool
	// Include lists function-level include patterns.
	Include []string
	// Exclude lists function-level exclude patterns.
	Exclude []string
}

// PackagedIndividually reports the effective packaging mode of the function,
// based on the presence of the override rather than its value.
func (f *Function) PackagedIndividually(serviceDefault bool) bool {
	if f.Individually != nil {
		return *f.Individually
	}

	return serviceDefault
}

// Clone returns a deep copy of the function.
func (f *Function) Clone() *Function {
	if f == nil {
		return nil
	}

	cloned := *f
	cloned.Include = append([]string(nil), f.Include...)
	cloned.Exclude = append([]string(nil), f.Exclude...)

	if f.Individually != nil {
		flag := *f.Individually
		cloned.Individually = &flag
	}

	return &cloned
}

// Service is the top-level deployable unit comprising one or more functions
// and shared packaging configuration.
type Service struct {
	// Name is the service name; it also names the combined artifact.
	Name string
	// Individually is the service-wide default packaging mode.
	Individually bool
	// Include lists service-level include patterns.
	Include []string
	// Exclude lists service-level exclude patterns.
	Exclude []string

	// functions indexes functions by their manifest key.
	functions map[string]*Function
}

// Artifact is a packaged output file covering either the whole service or a
// single function.
type Artifact struct {
	// Name is the artifact filename, e.g. "test-proj.zip".
	Name string
	// Path is the filesystem location of the produced archive.
	Path string
	// Checksum is the base64-encoded hash of the archive contents.
	Checksum string
	// CreatedAt is when the artifact was produced.
	CreatedAt time.Time
}

// ErrFunctionNotFound is returned when a function key is absent from the service.
var ErrFunctionNotFound = errors.New("function not found")

// FromManifest converts a validated manifest into the domain service model.
// Absent optional fields become empty lists; the service-wide packaging flag
// defaults to false when unset.
func FromManifest(manifest *config.Manifest) (*Service, error) {
	if err := config.Validate(manifest); err != nil {
		return nil, err
	}

	service := &Service{
		Name:      manifest.Service,
		Include:   append([]string(nil), manifest.Package.Include...),
		Exclude:   append([]string(nil), manifest.Package.Exclude...),
		functions: make(map[string]*Function, len(manifest.Functions)),
	}

	if manifest.Package.Individually != nil {
		service.Individually = *manifest.Package.Individually
	}

	for key, declaration := range manifest.Functions {
		function := &Function{
			Key:     key,
			Name:    declaration.Name,
			Handler: declaration.Handler,
		}

		if pkg := declaration.Package; pkg != nil {
			function.Include = append([]string(nil), pkg.Include...)
			function.Exclude = append([]string(nil), pkg.Exclude...)

			if pkg.Individually != nil {
				flag := *pkg.Individually
				function.Individually = &flag
			}
		}

		service.functions[key] = function
	}

	return service, nil
}

// Function looks up a function by its manifest key.
func (s *Service) Function(key string) (*Function, error) {
	function, ok := s.functions[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, key)
	}

	return function, nil
}

// FunctionKeys returns the manifest keys of all functions in sorted order.
func (s *Service) FunctionKeys() []string {
	keys := make([]string, 0, len(s.functions))
	for key := range s.functions {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
