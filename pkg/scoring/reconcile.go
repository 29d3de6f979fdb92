package scoring

import (
	"reflect"

	"github.com/tennisscore/tennisscore/pkg/match"
)

// Reconciliation is the result of folding a possibly damaged log.
type Reconciliation struct {
	// Score is the fold of the longest valid prefix.
	Score *Score
	// Points is that prefix with derived fields assigned.
	Points []match.PointEvent
	// Rejected is the tail starting at the first entry that could not be
	// applied. Nothing in it is rewritten or guessed.
	Rejected []match.PointEvent
	// Err explains why the first rejected entry failed.
	Err error
}

// Clean reports whether the whole log was applied.
func (r *Reconciliation) Clean() bool {
	return r.Err == nil
}

// Reconcile folds as much of log as is valid and flags the rest. It only
// fails when the format itself is invalid.
func Reconcile(log []match.PointEvent, format match.MatchFormat) (*Reconciliation, error) {
	e, err := NewEngine(format)
	if err != nil {
		return nil, err
	}

	var first match.Player
	if len(log) > 0 && log[0].Server.Valid() {
		first = log[0].Server
	}

	r := &Reconciliation{Score: e.Start(first)}
	for i, p := range log {
		next, ann, err := e.Step(r.Score, p)
		if err != nil {
			r.Rejected = append([]match.PointEvent(nil), log[i:]...)
			r.Err = err
			break
		}
		r.Score = next
		r.Points = append(r.Points, ann)
	}
	return r, nil
}

// Equal reports whether two scores describe the same match state.
func (s *Score) Equal(o *Score) bool {
	if s == nil || o == nil {
		return s == o
	}
	a, b := s.Clone(), o.Clone()
	if len(a.Sets) == 0 {
		a.Sets = nil
	}
	if len(b.Sets) == 0 {
		b.Sets = nil
	}
	return reflect.DeepEqual(a, b)
}
