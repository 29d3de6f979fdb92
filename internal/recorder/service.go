// Package recorder records points against stored matches: it guards the
// append-only log, recomputes the score, and fans the result out to the
// cache, live subscribers and the archive.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tennisscore/tennisscore/internal/archive"
	"github.com/tennisscore/tennisscore/internal/live"
	"github.com/tennisscore/tennisscore/internal/matches"
	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
)

// Store is the persistence the recorder needs. *matches.Store satisfies it.
type Store interface {
	GetMatch(ctx context.Context, id string) (*matches.Match, error)
	LoadPointLog(ctx context.Context, matchID string) ([]match.PointEvent, error)
	AppendPoint(ctx context.Context, matchID string, p match.PointEvent) error
	SaveScore(ctx context.Context, matchID string, score *scoring.Score) error
	SetStatus(ctx context.Context, matchID, status string) error
}

// Cache holds the latest score per match.
type Cache interface {
	Get(matchID string) (*scoring.Score, bool)
	Put(matchID string, score *scoring.Score)
}

// Publisher pushes events to live subscribers. *live.Hub satisfies it.
type Publisher interface {
	Publish(matchID, event string, data any) error
}

// PointInput is a point as reported by an umpire. PointNumber zero means
// "the next one"; an empty Server means "whoever the rotation says".
type PointInput struct {
	PointNumber int           `json:"point_number,omitempty"`
	Winner      match.Player  `json:"winner"`
	Server      match.Player  `json:"server,omitempty"`
	Outcome     match.Outcome `json:"outcome,omitempty"`
}

// Update is the outcome of recording one point.
type Update struct {
	MatchID  string                `json:"match_id"`
	Point    match.PointEvent      `json:"point"`
	Score    *scoring.Score        `json:"score"`
	Next     *scoring.PointContext `json:"next,omitempty"`
	Complete bool                  `json:"complete"`
}

// Service orchestrates point recording.
type Service struct {
	store     Store
	cache     Cache
	publisher Publisher
	storage   archive.StorageClient
	logger    *slog.Logger
}

// Option configures optional collaborators.
type Option func(*Service)

// WithCache keeps computed scores in c.
func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

// WithPublisher sends point and completion events through p.
func WithPublisher(p Publisher) Option { return func(s *Service) { s.publisher = p } }

// WithArchive writes finished matches to st.
func WithArchive(st archive.StorageClient) Option { return func(s *Service) { s.storage = st } }

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// NewService creates a new recorder Service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordPoint appends one point to the match and returns the new score.
// The point is checked against the replayed log before it is stored, so
// an illegal append (match over, wrong number, bad player) never reaches
// the database.
func (s *Service) RecordPoint(ctx context.Context, matchID string, in PointInput) (*Update, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status == matches.StatusAbandoned {
		return nil, fmt.Errorf("record point %s: %w", matchID, matches.ErrAbandoned)
	}
	engine, err := scoring.NewEngine(m.Format)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", matchID, err)
	}

	log, err := s.store.LoadPointLog(ctx, matchID)
	if err != nil {
		return nil, err
	}
	current, _, err := engine.Replay(log)
	if err != nil {
		return nil, fmt.Errorf("stored log of match %s: %w", matchID, err)
	}

	p := match.PointEvent{
		PointNumber: in.PointNumber,
		Winner:      in.Winner,
		Server:      in.Server,
		Outcome:     in.Outcome,
	}
	if p.PointNumber == 0 {
		p.PointNumber = current.LastPointNumber + 1
	}
	if p.Server == "" {
		p.Server = current.Server
	}
	if p.Server != "" && current.Server != "" && p.Server != current.Server {
		s.logger.Warn("recorder: reported server disagrees with rotation",
			"match_id", matchID, "point_number", p.PointNumber,
			"reported", p.Server, "rotation", current.Server)
	}

	next, annotated, err := engine.Step(current, p)
	if err != nil {
		return nil, err
	}

	if err := s.store.AppendPoint(ctx, matchID, p); err != nil {
		return nil, err
	}
	// The point is durable from here on; a failed score snapshot is logged.
	if s.cache != nil {
		s.cache.Put(matchID, next)
	}
	if err := s.store.SaveScore(ctx, matchID, next); err != nil {
		s.logger.Error("recorder: save score", "match_id", matchID, "point_number", p.PointNumber, "err", err)
	}

	u := &Update{MatchID: matchID, Point: annotated, Score: next, Complete: next.IsComplete()}
	if !u.Complete {
		if u.Next, err = engine.Classify(next); err != nil {
			return nil, err
		}
	}

	s.logger.Info("recorder: point recorded",
		"match_id", matchID, "point_number", p.PointNumber, "winner", p.Winner,
		"set", annotated.SetNumber, "game", annotated.GameNumber)
	s.publish(matchID, live.EventPoint, u)

	if u.Complete {
		s.finish(ctx, m, append(log, p), next)
	}
	return u, nil
}

// finish marks the match completed, archives it and tells subscribers.
// Failures here are logged: the point itself is already durable.
func (s *Service) finish(ctx context.Context, m *matches.Match, points []match.PointEvent, final *scoring.Score) {
	if err := s.store.SetStatus(ctx, m.ID, matches.StatusCompleted); err != nil {
		s.logger.Error("recorder: mark completed", "match_id", m.ID, "err", err)
	}
	if s.storage != nil {
		log := &match.Log{MatchID: m.ID, Format: m.Format, Points: points}
		if err := archive.Archive(ctx, s.storage, log, final); err != nil {
			s.logger.Error("recorder: archive", "match_id", m.ID, "err", err)
		}
	}
	s.logger.Info("recorder: match complete", "match_id", m.ID, "winner", final.MatchWinner)
	s.publish(m.ID, live.EventComplete, final)
}

func (s *Service) publish(matchID, event string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(matchID, event, data); err != nil {
		s.logger.Warn("recorder: publish", "match_id", matchID, "event", event, "err", err)
	}
}

// Score returns the current score of a match, from the cache when possible.
func (s *Service) Score(ctx context.Context, matchID string) (*scoring.Score, error) {
	if s.cache != nil {
		if sc, ok := s.cache.Get(matchID); ok {
			return sc, nil
		}
	}
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	log, err := s.store.LoadPointLog(ctx, matchID)
	if err != nil {
		return nil, err
	}
	sc, err := scoring.ComputeScore(log, m.Format)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", matchID, err)
	}
	if s.cache != nil {
		s.cache.Put(matchID, sc)
	}
	return sc, nil
}

// Annotated returns the match's log with derived fields populated.
func (s *Service) Annotated(ctx context.Context, matchID string) (*matches.Match, []match.PointEvent, *scoring.Score, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := s.store.LoadPointLog(ctx, matchID)
	if err != nil {
		return nil, nil, nil, err
	}
	engine, err := scoring.NewEngine(m.Format)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("match %s: %w", matchID, err)
	}
	sc, annotated, err := engine.Replay(log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("match %s: %w", matchID, err)
	}
	return m, annotated, sc, nil
}

// Rebuild recomputes a match's cached score from its stored log. A log
// with a bad tail is not rewritten: the score of its valid prefix is saved
// and the reconciliation is returned along with the tail's error.
func (s *Service) Rebuild(ctx context.Context, matchID string) (*scoring.Reconciliation, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	log, err := s.store.LoadPointLog(ctx, matchID)
	if err != nil {
		return nil, err
	}

	r, err := scoring.Reconcile(log, m.Format)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", matchID, err)
	}
	if err := s.store.SaveScore(ctx, matchID, r.Score); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(matchID, r.Score)
	}

	status := matches.StatusInProgress
	if r.Score.IsComplete() {
		status = matches.StatusCompleted
	}
	if status != m.Status && m.Status != matches.StatusAbandoned {
		if err := s.store.SetStatus(ctx, matchID, status); err != nil {
			return nil, err
		}
	}

	if !r.Clean() {
		s.logger.Warn("recorder: point log has an invalid tail",
			"match_id", matchID, "kept", len(r.Points), "rejected", len(r.Rejected), "err", r.Err)
		return r, fmt.Errorf("rebuild match %s: %w", matchID, r.Err)
	}
	s.logger.Info("recorder: rebuilt score", "match_id", matchID, "points", len(r.Points))
	return r, nil
}

// IsClientError reports whether err stems from the request rather than the
// system: an unknown match, an invalid format, an illegal or malformed
// point.
func IsClientError(err error) bool {
	return errors.Is(err, matches.ErrNotFound) ||
		errors.Is(err, matches.ErrAbandoned) ||
		errors.Is(err, match.ErrInvalidFormat) ||
		errors.Is(err, match.ErrLogIntegrity) ||
		errors.Is(err, scoring.ErrIllegalState)
}
