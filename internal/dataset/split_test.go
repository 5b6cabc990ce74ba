package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rcscout/internal/itemstore"
	"github.com/abhisek/rcscout/internal/qa"
)

func storeOf(n int) *itemstore.Store {
	s := itemstore.New()
	for i := 1; i <= n; i++ {
		rc := qa.Rejected
		if i%2 == 0 {
			rc = qa.Accepted
		}
		s.Merge(qa.Record{
			Question:           qa.Question{QuestionID: int64(i), Title: fmt.Sprintf("q%d", i)},
			Answer:             qa.Answer{AnswerID: int64(100 + i), QuestionID: int64(i), Body: fmt.Sprintf("<p>answer %d</p>", i)},
			ValidatedAnswer:    qa.Accepted,
			ValidatedRootCause: rc,
		})
	}
	return s
}

func ids(examples []Example) []int64 {
	out := make([]int64, len(examples))
	for i, e := range examples {
		out[i] = e.QuestionID
	}
	return out
}

func TestSplit_Ratio(t *testing.T) {
	s := storeOf(10)
	for seed := uint64(0); seed < 5; seed++ {
		sp := SplitStore(s, Options{Ratio: 0.8, Rand: NewRand(seed)})
		require.Len(t, sp.Train, 8)
		require.Len(t, sp.Eval, 2)

		union := append(ids(sp.Train), ids(sp.Eval)...)
		assert.ElementsMatch(t, s.IDs(), union)
	}
}

func TestSplit_DefaultRatio(t *testing.T) {
	sp := SplitStore(storeOf(10), Options{Rand: NewRand(1)})
	assert.Len(t, sp.Train, 8)
	assert.Len(t, sp.Eval, 2)
}

func TestSplit_Floor(t *testing.T) {
	sp := SplitStore(storeOf(7), Options{Ratio: 0.8, Rand: NewRand(1)})
	assert.Len(t, sp.Train, 5)
	assert.Len(t, sp.Eval, 2)
}

func TestSplit_LabelsAndText(t *testing.T) {
	sp := SplitStore(storeOf(4), Options{Ratio: 1, Rand: NewRand(3)})
	require.Len(t, sp.Train, 4)
	assert.Empty(t, sp.Eval)
	for _, e := range sp.Train {
		assert.Equal(t, fmt.Sprintf("answer %d", e.QuestionID), e.Text)
		want := 0.0
		if e.QuestionID%2 == 0 {
			want = 1.0
		}
		assert.Equal(t, want, e.Label)
	}
	assert.Equal(t, 2, Positives(sp.Train))
}

func TestSplit_UnsetRootCauseIsNegative(t *testing.T) {
	s := itemstore.New()
	s.Merge(qa.Record{Question: qa.Question{QuestionID: 1}, ValidatedRootCause: qa.Unset})
	sp := SplitStore(s, Options{Ratio: 1, Rand: NewRand(0)})
	require.Len(t, sp.Train, 1)
	assert.Equal(t, 0.0, sp.Train[0].Label)
}

func TestSplit_Limit(t *testing.T) {
	s := storeOf(10)

	full := SplitExamples(Examples(s), Options{Ratio: 1, Rand: NewRand(9)})
	limited := SplitStore(s, Options{Ratio: 0.5, Limit: 4, Rand: NewRand(9)})

	require.Len(t, limited.Train, 2)
	require.Len(t, limited.Eval, 2)
	// The limit keeps the tail of the same shuffle.
	assert.Equal(t, ids(full.Train[6:]), append(ids(limited.Train), ids(limited.Eval)...))
}

func TestSplit_SeedIsReproducible(t *testing.T) {
	a := SplitStore(storeOf(20), Options{Rand: NewRand(42)})
	b := SplitStore(storeOf(20), Options{Rand: NewRand(42)})
	assert.Equal(t, ids(a.Train), ids(b.Train))
	assert.Equal(t, ids(a.Eval), ids(b.Eval))
}

func TestSplit_Degenerate(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		wantTrain int
		wantEval  int
	}{
		{"empty", 0, 0, 0},
		{"single", 1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := SplitStore(storeOf(tt.n), Options{Ratio: 0.8, Rand: NewRand(0)})
			assert.Len(t, sp.Train, tt.wantTrain)
			assert.Len(t, sp.Eval, tt.wantEval)
		})
	}
}

func TestTextsAndLabels(t *testing.T) {
	ex := []Example{{Text: "a", Label: 1}, {Text: "b", Label: 0}}
	assert.Equal(t, []string{"a", "b"}, Texts(ex))
	assert.Equal(t, []float64{1, 0}, Labels(ex))
}
