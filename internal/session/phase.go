package session

import (
	"fmt"

	"github.com/abhisek/rcscout/internal/store"
)

// Phase is where a candidate question is in its annotation lifecycle.
type Phase int

const (
	PhaseCandidate Phase = iota
	PhaseSkipped
	PhasePresented
	PhaseAccepted
	PhaseRejected
	PhaseAnnotated
	PhaseDropped
)

var phaseNames = map[Phase]string{
	PhaseCandidate: "candidate",
	PhaseSkipped:   "skipped",
	PhasePresented: "presented",
	PhaseAccepted:  "accepted",
	PhaseRejected:  "rejected",
	PhaseAnnotated: "annotated",
	PhaseDropped:   "dropped",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// transitions lists the legal successors of each phase. Phases absent
// from the table are terminal.
var transitions = map[Phase][]Phase{
	PhaseCandidate: {PhaseSkipped, PhasePresented},
	PhasePresented: {PhaseAccepted, PhaseRejected},
	PhaseAccepted:  {PhaseAnnotated, PhaseDropped},
}

// Terminal reports whether no further transition is possible.
func (p Phase) Terminal() bool {
	_, ok := transitions[p]
	return !ok
}

// CanMove reports whether to is a legal successor of p.
func (p Phase) CanMove(to Phase) bool {
	for _, next := range transitions[p] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError is returned for a move the lifecycle does not allow.
type TransitionError struct {
	QuestionID int64
	From, To   Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("question %d: illegal transition %s -> %s", e.QuestionID, e.From, e.To)
}

// outcome maps a terminal phase to its event store name.
func (p Phase) outcome() string {
	switch p {
	case PhaseSkipped:
		return store.OutcomeSkipped
	case PhaseRejected:
		return store.OutcomeRejected
	case PhaseAccepted:
		return store.OutcomeAccepted
	case PhaseAnnotated:
		return store.OutcomeAnnotated
	case PhaseDropped:
		return store.OutcomeDropped
	}
	return p.String()
}

// Outcome is the last known phase of one candidate.
type Outcome struct {
	QuestionID int64
	Phase      Phase
}

// lifecycle tracks the phase of every candidate seen by a session, in
// the order they were first seen.
type lifecycle struct {
	phases map[int64]Phase
	order  []int64
}

func newLifecycle() *lifecycle {
	return &lifecycle{phases: make(map[int64]Phase)}
}

func (l *lifecycle) phase(id int64) Phase {
	return l.phases[id]
}

func (l *lifecycle) move(id int64, to Phase) error {
	from, seen := l.phases[id]
	if !seen {
		from = PhaseCandidate
		l.order = append(l.order, id)
		l.phases[id] = from
	}
	if !from.CanMove(to) {
		return &TransitionError{QuestionID: id, From: from, To: to}
	}
	l.phases[id] = to
	return nil
}

func (l *lifecycle) outcomes() []Outcome {
	out := make([]Outcome, len(l.order))
	for i, id := range l.order {
		out[i] = Outcome{QuestionID: id, Phase: l.phases[id]}
	}
	return out
}
