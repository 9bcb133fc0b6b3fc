package packager

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/deploykit/bundler/internal/config"
	"github.com/deploykit/bundler/internal/logger"
)

const (
	// MarkerFilename marks that a packaging run is active inside the output
	// directory, to avoid two runs writing the same artifacts.
	MarkerFilename = "bundle-package-marker.bin"

	// markerLifetime is the period after which a stale packaging marker is ignored.
	markerLifetime = 5 * time.Minute

	// executableName is the process name checked during stale marker recovery.
	executableName = "bundler"
)

// isPackagingRunningNow checks presence of a marker file and attempts
// recovery if it looks stale.
func isPackagingRunningNow(ctx context.Context, markerPath string) bool {
	logger.Debug(ctx, "Checking for the presence of a packaging marker")

	fileInfo, err := os.Stat(markerPath)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The packaging marker is too old, attempting cleanup")

		if anotherPackagerRunning() {
			return true
		}

		if err = os.Remove(markerPath); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read packaging marker: %v", err)

	return false
}

// anotherPackagerRunning reports whether a different bundler process exists.
// Enumeration failures count as running so a live run is never clobbered.
func anotherPackagerRunning() bool {
	processList, err := ps.Processes()
	if err != nil {
		return true
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		name := strings.TrimSuffix(process.Executable(), ".exe")
		if name == executableName {
			return true
		}
	}

	return false
}

// createMarker writes the marker file recording the current process ID.
func createMarker(markerPath string) error {
	contents := []byte(strconv.Itoa(os.Getpid()))

	return os.WriteFile(markerPath, contents, config.DefaultFilePermissions)
}

// removeMarker deletes the marker file, tolerating its absence.
func removeMarker(markerPath string) {
	if err := os.Remove(markerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Errorf(context.Background(), "Unable to remove packaging marker: %v", err)
	}
}
