// Package archive stores the point logs and final scores of finished
// matches in blob storage so they survive database pruning.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Get calls when no blob exists for the match.
var ErrNotFound = errors.New("archive: not found")

// Blob kinds.
const (
	KindPoints = "points"
	KindScore  = "score"
)

// StorageClient abstracts blob storage for archived matches.
type StorageClient interface {
	PutPointLog(ctx context.Context, matchID string, data []byte) error
	GetPointLog(ctx context.Context, matchID string) ([]byte, error)
	PutScore(ctx context.Context, matchID string, data []byte) error
	GetScore(ctx context.Context, matchID string) ([]byte, error)
}

// objectKey is shared by the bucket backends: matches/<id>/<kind>.json.
func objectKey(matchID, kind string) string {
	return "matches/" + matchID + "/" + kind + ".json"
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(matchID, kind string) string {
	return filepath.Join(s.BaseDir, "matches", matchID, kind+".json")
}

func (s *LocalStorage) put(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *LocalStorage) get(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return data, err
}

// PutPointLog stores a match's point log.
func (s *LocalStorage) PutPointLog(ctx context.Context, matchID string, data []byte) error {
	return s.put(s.path(matchID, KindPoints), data)
}

// GetPointLog retrieves a match's point log.
func (s *LocalStorage) GetPointLog(ctx context.Context, matchID string) ([]byte, error) {
	return s.get(s.path(matchID, KindPoints))
}

// PutScore stores a match's final score.
func (s *LocalStorage) PutScore(ctx context.Context, matchID string, data []byte) error {
	return s.put(s.path(matchID, KindScore), data)
}

// GetScore retrieves a match's final score.
func (s *LocalStorage) GetScore(ctx context.Context, matchID string) ([]byte, error) {
	return s.get(s.path(matchID, KindScore))
}
