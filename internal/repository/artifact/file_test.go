package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.yml"))

	description, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, description)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal description.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), DefaultDescriptionFilename)
	repo := NewFileRepository(file)

	want := NewDescription("test-proj")
	want.CreatedAt = time.Now().UTC().Truncate(time.Second)
	want.Artifacts["test-proj.zip"] = Entry{
		Path:     "/tmp/.serverless/test-proj.zip",
		Checksum: "c2hhNTEy",
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.Service, got.Service)
	require.Equal(t, want.CreatedAt.Unix(), got.CreatedAt.Unix())
	require.Equal(t, want.Artifacts, got.Artifacts)

	_, err = os.Stat(file)
	require.NoError(t, err)
}

// TestFileChecksum hashes file contents and fails for missing files.
func TestFileChecksum(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.zip")
	require.NoError(t, os.WriteFile(path, []byte("contents"), 0o600))

	sum, err := FileChecksum(path)
	require.NoError(t, err)
	require.Len(t, sum, DefaultChecksumFunction.Size())

	// Same contents, same checksum.
	again, err := FileChecksum(path)
	require.NoError(t, err)
	require.Equal(t, sum, again)

	_, err = FileChecksum(filepath.Join(dir, "missing.zip"))
	require.Error(t, err)
}
