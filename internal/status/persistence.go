// Package status provides sync status tracking and persistence for targets.
package status

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

const (
	// StatusFileName is the name of the status file
	StatusFileName = "status.json"
)

// StatusPersistence defines the interface for sync status persistence
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveStatus saves the sync status of a target
	SaveStatus(ctx context.Context, targetName string, status *SyncStatus) error

	// LoadStatus loads the sync status of a target.
	// Returns an empty SyncStatus if none was saved yet.
	LoadStatus(ctx context.Context, targetName string) (*SyncStatus, error)

	// LoadAllStatus loads the sync status of every target with a saved status
	LoadAllStatus(ctx context.Context) (map[string]*SyncStatus, error)
}

// fileStatusPersistence stores one status file per target directory
type fileStatusPersistence struct {
	basePath string
}

// NewFileStatusPersistence creates a new file-based status persistence rooted at basePath
func NewFileStatusPersistence(basePath string) StatusPersistence {
	return &fileStatusPersistence{
		basePath: basePath,
	}
}

// SaveStatus writes the status to <basePath>/<target>/status.json atomically
func (f *fileStatusPersistence) SaveStatus(_ context.Context, targetName string, status *SyncStatus) error {
	targetDir := filepath.Join(f.basePath, targetName)
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return fmt.Errorf("failed to create status directory for target '%s': %w", targetName, err)
	}

	filePath := filepath.Join(targetDir, StatusFileName)

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status data for target '%s': %w", targetName, err)
	}

	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file for target '%s': %w", targetName, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file for target '%s': %w", targetName, err)
	}

	return nil
}

// LoadStatus reads the status of a target, returning an empty status when no file exists
func (f *fileStatusPersistence) LoadStatus(_ context.Context, targetName string) (*SyncStatus, error) {
	filePath := filepath.Join(f.basePath, targetName, StatusFileName)

	// #nosec G304 -- filePath is built from the configured base path and a configured target name
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &SyncStatus{}, nil
		}
		return nil, fmt.Errorf("failed to read status file for target '%s': %w", targetName, err)
	}

	var status SyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status data for target '%s': %w", targetName, err)
	}

	return &status, nil
}

// LoadAllStatus loads the status of every target directory. Unreadable
// statuses are skipped so that one corrupt file does not hide the others.
func (f *fileStatusPersistence) LoadAllStatus(ctx context.Context) (map[string]*SyncStatus, error) {
	result := make(map[string]*SyncStatus)

	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read status directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		targetName := entry.Name()
		if _, err := os.Stat(filepath.Join(f.basePath, targetName, StatusFileName)); err != nil {
			continue
		}

		status, err := f.LoadStatus(ctx, targetName)
		if err != nil {
			continue
		}
		result[targetName] = status
	}

	return result, nil
}
