package recorder_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tennisscore/tennisscore/internal/archive"
	"github.com/tennisscore/tennisscore/internal/live"
	"github.com/tennisscore/tennisscore/internal/matches"
	"github.com/tennisscore/tennisscore/internal/recorder"
	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
)

// memStore is an in-memory recorder.Store.
type memStore struct {
	mu      sync.Mutex
	matches map[string]*matches.Match
	points  map[string][]match.PointEvent
}

func newMemStore() *memStore {
	return &memStore{matches: map[string]*matches.Match{}, points: map[string][]match.PointEvent{}}
}

func (s *memStore) add(id string, f match.MatchFormat) {
	s.matches[id] = &matches.Match{ID: id, Player1: "A", Player2: "B", Format: f, Status: matches.StatusInProgress}
}

func (s *memStore) GetMatch(_ context.Context, id string) (*matches.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, matches.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) LoadPointLog(_ context.Context, id string) ([]match.PointEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]match.PointEvent(nil), s.points[id]...), nil
}

func (s *memStore) AppendPoint(_ context.Context, id string, p match.PointEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.points[id]
	last := 0
	if len(log) > 0 {
		last = log[len(log)-1].PointNumber
	}
	if err := match.ValidateNext(len(log), last, p); err != nil {
		return err
	}
	s.points[id] = append(log, p)
	return nil
}

func (s *memStore) SaveScore(_ context.Context, id string, sc *scoring.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[id].Score = sc.Clone()
	return nil
}

func (s *memStore) SetStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[id].Status = status
	return nil
}

type mapCache map[string]*scoring.Score

func (c mapCache) Get(id string) (*scoring.Score, bool) {
	s, ok := c[id]
	return s, ok
}

func (c mapCache) Put(id string, s *scoring.Score) { c[id] = s }

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(_, event string, _ any) error {
	p.events = append(p.events, event)
	return nil
}

func superSingleSet() match.MatchFormat {
	return match.MatchFormat{SetsToPlay: 1, TiebreakEnabled: true, FinalSetTiebreak: match.FinalSetSuper, FinalSetTiebreakAt: 10}
}

func TestRecordPoint_FullMatch(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.add("m1", superSingleSet())
	cache := mapCache{}
	pub := &recordingPublisher{}
	storage := archive.NewLocalStorage(t.TempDir())

	svc := recorder.NewService(store,
		recorder.WithCache(cache),
		recorder.WithPublisher(pub),
		recorder.WithArchive(storage),
	)

	u, err := svc.RecordPoint(ctx, "m1", recorder.PointInput{Winner: match.P1, Server: match.P1, Outcome: match.OutcomeAce})
	if err != nil {
		t.Fatalf("first point: %v", err)
	}
	if u.Point.PointNumber != 1 || !u.Point.IsTiebreakPoint {
		t.Errorf("first point = %+v", u.Point)
	}
	if u.Next == nil || u.Next.Server != match.P2 {
		t.Errorf("expected P2 to serve point 2, got %+v", u.Next)
	}

	for i := 0; i < 9; i++ {
		u, err = svc.RecordPoint(ctx, "m1", recorder.PointInput{Winner: match.P1})
		if err != nil {
			t.Fatalf("point %d: %v", i+2, err)
		}
	}
	if !u.Complete || u.Score.MatchWinner != match.P1 {
		t.Fatalf("expected P1 to win 10-0, got %+v", u.Score)
	}
	if !u.Point.IsMatchWinning || u.Next != nil {
		t.Errorf("last update = %+v", u)
	}

	if store.matches["m1"].Status != matches.StatusCompleted {
		t.Errorf("status = %q", store.matches["m1"].Status)
	}
	if cached, ok := cache["m1"]; !ok || !cached.IsComplete() {
		t.Error("expected final score in cache")
	}
	if n := len(pub.events); n != 11 || pub.events[n-1] != live.EventComplete {
		t.Errorf("events = %v", pub.events)
	}

	restored, err := archive.Restore(ctx, storage, "m1")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(restored.Points) != 10 || restored.Points[0].Outcome != match.OutcomeAce {
		t.Errorf("archived log = %+v", restored.Points)
	}

	_, err = svc.RecordPoint(ctx, "m1", recorder.PointInput{Winner: match.P2})
	if !errors.Is(err, scoring.ErrIllegalState) {
		t.Errorf("expected ErrIllegalState after match end, got %v", err)
	}
	if len(store.points["m1"]) != 10 {
		t.Error("illegal point must not be stored")
	}
}

func TestRecordPoint_Rejections(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.add("m", match.DefaultFormat())
	svc := recorder.NewService(store)

	tests := []struct {
		name    string
		matchID string
		in      recorder.PointInput
		want    error
	}{
		{"unknown match", "nope", recorder.PointInput{Winner: match.P1, Server: match.P1}, matches.ErrNotFound},
		{"first point without server", "m", recorder.PointInput{Winner: match.P1}, match.ErrLogIntegrity},
		{"gap", "m", recorder.PointInput{PointNumber: 3, Winner: match.P1, Server: match.P1}, match.ErrLogIntegrity},
		{"bad winner", "m", recorder.PointInput{Winner: "p3", Server: match.P1}, match.ErrLogIntegrity},
		{"bad outcome", "m", recorder.PointInput{Winner: match.P1, Server: match.P1, Outcome: "let"}, match.ErrLogIntegrity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordPoint(ctx, tc.matchID, tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if !recorder.IsClientError(err) {
				t.Errorf("IsClientError(%v) = false", err)
			}
		})
	}
	if len(store.points["m"]) != 0 {
		t.Errorf("rejected points were stored: %+v", store.points["m"])
	}
}

func TestRecordPoint_ServerFollowsRotation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.add("m", match.DefaultFormat())
	svc := recorder.NewService(store)

	for i := 0; i < 4; i++ {
		if _, err := svc.RecordPoint(ctx, "m", recorder.PointInput{Winner: match.P2, Server: match.P1}); err != nil {
			t.Fatalf("point %d: %v", i+1, err)
		}
	}
	// P2 broke; P2 serves game 2 and the stored event says so.
	u, err := svc.RecordPoint(ctx, "m", recorder.PointInput{Winner: match.P1})
	if err != nil {
		t.Fatalf("point 5: %v", err)
	}
	if got := store.points["m"][4].Server; got != match.P2 {
		t.Errorf("stored server = %q, want p2", got)
	}
	if u.Score.Games != (scoring.Tally{P2: 1}) {
		t.Errorf("games = %+v", u.Score.Games)
	}
}

func TestRecordPoint_AbandonedMatch(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.add("m", match.DefaultFormat())
	store.matches["m"].Status = matches.StatusAbandoned
	svc := recorder.NewService(store)

	_, err := svc.RecordPoint(ctx, "m", recorder.PointInput{Winner: match.P1, Server: match.P1})
	if !errors.Is(err, matches.ErrAbandoned) {
		t.Fatalf("err = %v, want ErrAbandoned", err)
	}
	if !recorder.IsClientError(err) {
		t.Errorf("IsClientError(%v) = false", err)
	}
	if len(store.points["m"]) != 0 {
		t.Error("point stored on abandoned match")
	}
}

// failingScoreStore stores points but cannot save score snapshots.
type failingScoreStore struct {
	*memStore
}

func (s failingScoreStore) SaveScore(context.Context, string, *scoring.Score) error {
	return errors.New("connection reset")
}

func TestRecordPoint_SaveScoreFailureKeepsCacheCurrent(t *testing.T) {
	ctx := context.Background()
	store := failingScoreStore{newMemStore()}
	store.add("m", match.DefaultFormat())
	cache := mapCache{}
	svc := recorder.NewService(store, recorder.WithCache(cache))

	cache["m"] = &scoring.Score{}

	u, err := svc.RecordPoint(ctx, "m", recorder.PointInput{Winner: match.P1, Server: match.P1})
	if err != nil {
		t.Fatalf("RecordPoint: %v", err)
	}
	if u.Score.PointsPlayed != 1 || len(store.points["m"]) != 1 {
		t.Fatalf("points played = %d stored = %d", u.Score.PointsPlayed, len(store.points["m"]))
	}

	sc, err := svc.Score(ctx, "m")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if sc.PointsPlayed != 1 || sc.Points != (scoring.Tally{P1: 1}) {
		t.Errorf("cached score = %+v, want the point just stored", sc)
	}

	// The next point still lines up with the stored log.
	if _, err := svc.RecordPoint(ctx, "m", recorder.PointInput{Winner: match.P2}); err != nil {
		t.Fatalf("second point: %v", err)
	}
	if sc, _ := svc.Score(ctx, "m"); sc.PointsPlayed != 2 {
		t.Errorf("points played = %d, want 2", sc.PointsPlayed)
	}
}

func TestScoreUsesCache(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.add("m", match.DefaultFormat())
	cache := mapCache{}
	svc := recorder.NewService(store, recorder.WithCache(cache))

	sc, err := svc.Score(ctx, "m")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if sc.PointsPlayed != 0 || sc.IsComplete() {
		t.Errorf("fresh match score = %+v", sc)
	}

	sentinel := &scoring.Score{PointsPlayed: 99}
	cache["m"] = sentinel
	got, err := svc.Score(ctx, "m")
	if err != nil || got != sentinel {
		t.Errorf("expected cached score, got %+v, %v", got, err)
	}
}

func TestRebuild(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.add("m", superSingleSet())
	svc := recorder.NewService(store)

	t.Run("clean log", func(t *testing.T) {
		for i := 1; i <= 10; i++ {
			store.points["m"] = append(store.points["m"], match.PointEvent{PointNumber: i, Winner: match.P2, Server: match.P1})
		}
		r, err := svc.Rebuild(ctx, "m")
		if err != nil {
			t.Fatalf("Rebuild: %v", err)
		}
		if r.Score.MatchWinner != match.P2 || store.matches["m"].Status != matches.StatusCompleted {
			t.Errorf("winner = %q status = %q", r.Score.MatchWinner, store.matches["m"].Status)
		}
	})

	t.Run("tail after match end", func(t *testing.T) {
		store.points["m"] = append(store.points["m"], match.PointEvent{PointNumber: 11, Winner: match.P1, Server: match.P1})
		r, err := svc.Rebuild(ctx, "m")
		if !errors.Is(err, scoring.ErrIllegalState) {
			t.Fatalf("err = %v, want ErrIllegalState", err)
		}
		if len(r.Rejected) != 1 || store.matches["m"].Score.MatchWinner != match.P2 {
			t.Errorf("rejected = %d saved = %+v", len(r.Rejected), store.matches["m"].Score)
		}
		if len(store.points["m"]) != 11 {
			t.Error("Rebuild must not rewrite the log")
		}
	})
}

func TestAnnotated(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.add("m", match.DefaultFormat())
	svc := recorder.NewService(store)

	for _, w := range []match.Player{match.P2, match.P2, match.P2} {
		if _, err := svc.RecordPoint(ctx, "m", recorder.PointInput{Winner: w, Server: match.P1}); err != nil {
			t.Fatal(err)
		}
	}
	_, annotated, sc, err := svc.Annotated(ctx, "m")
	if err != nil {
		t.Fatalf("Annotated: %v", err)
	}
	if len(annotated) != 3 || annotated[0].SetNumber != 1 || annotated[0].GameNumber != 1 {
		t.Errorf("annotated = %+v", annotated)
	}
	if sc.Points != (scoring.Tally{P2: 3}) {
		t.Errorf("score points = %+v", sc.Points)
	}
}
