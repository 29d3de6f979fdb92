package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tennisscore/tennisscore/pkg/config"
	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
)

// New builds the StorageClient selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (StorageClient, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStorage(cfg.Path), nil
	case "s3":
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	case "gcs":
		return NewGCSStorage(ctx, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Archive writes a finished match's input log and final score.
func Archive(ctx context.Context, s StorageClient, log *match.Log, score *scoring.Score) error {
	inputs := &match.Log{
		MatchID: log.MatchID,
		Format:  log.Format,
		Points:  make([]match.PointEvent, len(log.Points)),
	}
	for i, p := range log.Points {
		inputs.Points[i] = p.Input()
	}

	data, err := json.Marshal(inputs)
	if err != nil {
		return fmt.Errorf("marshal point log: %w", err)
	}
	if err := s.PutPointLog(ctx, log.MatchID, data); err != nil {
		return fmt.Errorf("archive point log: %w", err)
	}

	data, err = json.Marshal(score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	if err := s.PutScore(ctx, log.MatchID, data); err != nil {
		return fmt.Errorf("archive score: %w", err)
	}
	return nil
}

// Restore reads an archived point log back.
func Restore(ctx context.Context, s StorageClient, matchID string) (*match.Log, error) {
	data, err := s.GetPointLog(ctx, matchID)
	if err != nil {
		return nil, err
	}
	var log match.Log
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("parse archived point log %s: %w", matchID, err)
	}
	return &log, nil
}

// RestoreScore reads an archived final score back.
func RestoreScore(ctx context.Context, s StorageClient, matchID string) (*scoring.Score, error) {
	data, err := s.GetScore(ctx, matchID)
	if err != nil {
		return nil, err
	}
	var score scoring.Score
	if err := json.Unmarshal(data, &score); err != nil {
		return nil, fmt.Errorf("parse archived score %s: %w", matchID, err)
	}
	return &score, nil
}
