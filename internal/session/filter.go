package session

import (
	"context"
	"fmt"

	"github.com/abhisek/rcscout/internal/itemstore"
	"github.com/abhisek/rcscout/internal/logging"
	"github.com/abhisek/rcscout/internal/markup"
	"github.com/abhisek/rcscout/internal/prompt"
	"github.com/abhisek/rcscout/internal/qa"
)

// Selection is what survives filtering: the accepted questions and the
// accepted answers to fetch for them.
type Selection struct {
	Accepted         map[int64]qa.Question
	AnswerToQuestion map[int64]int64

	answerOrder []int64
	life        *lifecycle
}

func newSelection() *Selection {
	return &Selection{
		Accepted:         make(map[int64]qa.Question),
		AnswerToQuestion: make(map[int64]int64),
		life:             newLifecycle(),
	}
}

// AnswerIDs returns the accepted answer IDs in the order their questions
// were accepted.
func (s *Selection) AnswerIDs() []int64 {
	return append([]int64(nil), s.answerOrder...)
}

// Outcomes returns the phase of every candidate seen so far.
func (s *Selection) Outcomes() []Outcome {
	return s.life.outcomes()
}

// Phase returns the current phase of a question.
func (s *Selection) Phase(questionID int64) Phase {
	return s.life.phase(questionID)
}

// Filter walks the ranked candidates and asks the operator to accept or
// reject each one until quota questions are accepted. Questions already
// in items, and questions without an accepted answer, are skipped without
// a prompt and do not count against the quota. Cancelling ctx aborts
// the prompt that is waiting.
func Filter(ctx context.Context, items *itemstore.Store, candidates []qa.Question, quota int, p *prompt.Prompter) (*Selection, error) {
	log := logging.New("session")
	sel := newSelection()

	p.Clear()
	log.Info("filtering candidates", "found", len(candidates), "keep", quota)

	for _, q := range candidates {
		if quota <= 0 {
			break
		}
		id := q.QuestionID
		if sel.life.phase(id) != PhaseCandidate {
			log.Debug("duplicate candidate", "question_id", id)
			continue
		}

		if items.Has(id) || !q.HasAcceptedAnswer() {
			if err := sel.life.move(id, PhaseSkipped); err != nil {
				return sel, err
			}
			if items.Has(id) {
				log.Info("question already processed, skipping", "question_id", id)
			} else {
				log.Debug("question has no accepted answer, skipping", "question_id", id)
			}
			continue
		}

		if err := sel.life.move(id, PhasePresented); err != nil {
			return sel, err
		}
		p.Printf("\n\n")
		p.Rule()
		p.Title(fmt.Sprintf("Q#%d - %s", id, markup.ToText(q.Title)))
		p.Rule()

		accepted, err := p.Decide(ctx, "(A) accept | (R) reject: ")
		if err != nil {
			return sel, err
		}
		if !accepted {
			if err := sel.life.move(id, PhaseRejected); err != nil {
				return sel, err
			}
			log.Info("question rejected", "question_id", id)
			continue
		}

		if err := sel.life.move(id, PhaseAccepted); err != nil {
			return sel, err
		}
		sel.Accepted[id] = q
		sel.AnswerToQuestion[*q.AcceptedAnswerID] = id
		sel.answerOrder = append(sel.answerOrder, *q.AcceptedAnswerID)
		quota--
		log.Info("question accepted", "question_id", id)
	}
	return sel, nil
}
