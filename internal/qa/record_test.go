package qa

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_KeepsUnknownFields(t *testing.T) {
	in := `{"question_id": 3, "title": "t", "body": "b", "view_count": 12, "owner": {"user_id": 1}}`

	var q Question
	require.NoError(t, json.Unmarshal([]byte(in), &q))
	assert.Equal(t, int64(3), q.QuestionID)
	assert.Len(t, q.Extra, 2)

	q.Title = "edited"
	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"question_id": 3, "title": "edited", "body": "b", "view_count": 12, "owner": {"user_id": 1}}`, string(out))
}

func TestQuestion_TypedOnlyHasNoExtra(t *testing.T) {
	id := int64(30)
	q := Question{QuestionID: 3, AcceptedAnswerID: &id, Title: "t", Tags: []string{"nginx"}}
	data, err := json.Marshal(q)
	require.NoError(t, err)

	var back Question
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Nil(t, back.Extra)
	assert.Equal(t, q, back)
}

func TestAnswer_KeepsUnknownFields(t *testing.T) {
	in := `{"answer_id": 30, "question_id": 3, "body": "a", "is_accepted": false, "last_activity_date": 99}`

	var a Answer
	require.NoError(t, json.Unmarshal([]byte(in), &a))
	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}
