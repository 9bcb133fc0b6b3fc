package artifact

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deploykit/bundler/internal/config"

	// Ensure SHA512 is available for checksum calculation.
	_ "crypto/sha512"
)

// Entry records a single produced artifact inside the description.
type Entry struct {
	// Path is the filesystem location of the artifact.
	Path string `yaml:"path"`
	// Checksum is the base64-encoded SHA-512 hash of the artifact contents.
	Checksum string `yaml:"checksum"`
}

// Description is the persisted record of a packaging run.
type Description struct {
	// Service is the name of the packaged service.
	Service string `yaml:"service"`
	// CreatedAt is when the packaging run completed.
	CreatedAt time.Time `yaml:"created_at"`
	// Artifacts maps artifact names to their location and checksum.
	Artifacts map[string]Entry `yaml:"artifacts"`
}

// NewDescription creates an empty description for the named service.
func NewDescription(service string) *Description {
	return &Description{
		Service:   service,
		Artifacts: make(map[string]Entry),
	}
}

// Repository defines persistence operations for the packaging description.
type Repository interface {
	Load(ctx context.Context) (*Description, error)
	Save(ctx context.Context, description *Description) error
}

// FileRepository persists the packaging description to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the description file.
	path string
	// mu protects concurrent access to the description file.
	mu sync.Mutex
}

const (
	// DefaultDescriptionFilename names the description inside the output directory.
	DefaultDescriptionFilename = "bundle-description.yml"

	// DefaultChecksumFunction is used to hash produced artifacts.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512
)

var (
	// ErrNotFound is returned when the description file does not exist yet.
	ErrNotFound = errors.New("description not found")

	errHashUnavailable = errors.New("hash function unavailable")
)

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the description from disk.
func (r *FileRepository) Load(_ context.Context) (*Description, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read description file: %w", err)
	}

	var description Description
	if err = yaml.Unmarshal(contents, &description); err != nil {
		return nil, fmt.Errorf("decode description file: %w", err)
	}

	return &description, nil
}

// Save writes the description to disk.
func (r *FileRepository) Save(_ context.Context, description *Description) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(description)
	if err != nil {
		return fmt.Errorf("encode description: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write description file: %w", err)
	}

	return nil
}

// FileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func FileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
