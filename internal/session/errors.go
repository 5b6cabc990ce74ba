package session

import "fmt"

// MissingParentError reports an answer whose question was not accepted
// during filtering. The answer is dropped; the session continues.
type MissingParentError struct {
	QuestionID int64
	AnswerID   int64
}

func (e *MissingParentError) Error() string {
	return fmt.Sprintf("missing question %d to match answer %d", e.QuestionID, e.AnswerID)
}
