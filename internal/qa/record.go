// Package qa holds the question/answer records that get annotated.
package qa

import "encoding/json"

// Question is a search hit as returned by the question source.
type Question struct {
	QuestionID       int64    `json:"question_id"`
	AcceptedAnswerID *int64   `json:"accepted_answer_id,omitempty"`
	Title            string   `json:"title"`
	Body             string   `json:"body"`
	Tags             []string `json:"tags,omitempty"`
	Link             string   `json:"link,omitempty"`
	Score            int      `json:"score,omitempty"`
	IsAnswered       bool     `json:"is_answered,omitempty"`

	// Extra holds source fields without a typed home (owner, view_count,
	// ...) so a load and save keeps them.
	Extra map[string]json.RawMessage `json:"-"`
}

type plainQuestion Question

func (q *Question) UnmarshalJSON(data []byte) error {
	var p plainQuestion
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, p)
	if err != nil {
		return err
	}
	*q = Question(p)
	q.Extra = extra
	return nil
}

func (q Question) MarshalJSON() ([]byte, error) {
	return withExtra(plainQuestion(q), q.Extra)
}

// HasAcceptedAnswer reports whether the source marked an answer as accepted.
func (q Question) HasAcceptedAnswer() bool {
	return q.AcceptedAnswerID != nil
}

// Answer is an answer body fetched for an accepted question.
type Answer struct {
	AnswerID   int64  `json:"answer_id"`
	QuestionID int64  `json:"question_id"`
	Body       string `json:"body"`
	Score      int    `json:"score,omitempty"`
	IsAccepted bool   `json:"is_accepted,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type plainAnswer Answer

func (a *Answer) UnmarshalJSON(data []byte) error {
	var p plainAnswer
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, p)
	if err != nil {
		return err
	}
	*a = Answer(p)
	a.Extra = extra
	return nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	return withExtra(plainAnswer(a), a.Extra)
}

// Record is one annotated question/answer pair.
type Record struct {
	Question           Question `json:"question"`
	Answer             Answer   `json:"answer"`
	ValidatedAnswer    Verdict  `json:"validated_answer"`
	ValidatedRootCause Verdict  `json:"validated_root_cause"`
}

// ID returns the store key of the record.
func (r Record) ID() int64 {
	return r.Question.QuestionID
}

// Complete reports whether both judgments were given.
func (r Record) Complete() bool {
	return r.ValidatedAnswer.IsSet() && r.ValidatedRootCause.IsSet()
}
