package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lezionipari/coursecore/internal/apperr"
	"github.com/lezionipari/coursecore/internal/types"
)

func TestQuestionIDsComeFromTheLocalCounter(t *testing.T) {
	e := New(types.NewQuizState())

	first := e.AddRadio("1+1?", []string{"3"}, "2")
	second := e.AddOpen("Capital of France?", []string{"Paris"})
	assert.Equal(t, "q-0", first)
	assert.Equal(t, "q-1", second)

	// Removal does not free the ID.
	require.NoError(t, e.RemoveQuestion(first))
	third := e.AddOpen("Capital of Italy?", []string{"Rome"})
	assert.Equal(t, "q-2", third)
}

func TestRemoveQuestionMissing(t *testing.T) {
	e := New(types.NewQuizState())

	err := e.RemoveQuestion("q-7")
	assert.True(t, apperr.IsNotFound(err))
}

func TestCheckboxScoring(t *testing.T) {
	e := New(types.NewQuizState())
	id := e.AddCheckbox("Pick the primes", []string{"c"}, []string{"a", "b"})

	// One hit and one miss cancel out: max(0, 1-1)/2 = 0.
	scores, err := e.Evaluate(map[string]types.Answer{id: types.MultiAnswer("a", "c")})
	require.NoError(t, err)
	assert.Equal(t, 0.0, scores[id])

	scores, err = e.Evaluate(map[string]types.Answer{id: types.MultiAnswer("a", "b")})
	require.NoError(t, err)
	assert.Equal(t, 1.0, scores[id])

	scores, err = e.Evaluate(map[string]types.Answer{id: types.MultiAnswer("a")})
	require.NoError(t, err)
	assert.Equal(t, 0.5, scores[id])

	// More misses than hits clamps at zero.
	scores, err = e.Evaluate(map[string]types.Answer{id: types.MultiAnswer("c")})
	require.NoError(t, err)
	assert.Equal(t, 0.0, scores[id])
}

func TestCheckboxScoringWithoutCorrectAnswers(t *testing.T) {
	e := New(types.NewQuizState())
	id := e.AddCheckbox("Trick question", []string{"a"}, nil)

	scores, err := e.Evaluate(map[string]types.Answer{id: types.MultiAnswer("a")})
	require.NoError(t, err)
	assert.Equal(t, 0.0, scores[id])
}

func TestRadioScoring(t *testing.T) {
	e := New(types.NewQuizState())
	id := e.AddRadio("Pick b", []string{"a", "c"}, "b")

	scores, err := e.Evaluate(map[string]types.Answer{id: types.SingleAnswer("b")})
	require.NoError(t, err)
	assert.Equal(t, 1.0, scores[id])

	scores, err = e.Evaluate(map[string]types.Answer{id: types.SingleAnswer("a")})
	require.NoError(t, err)
	assert.Equal(t, 0.0, scores[id])
}

func TestOpenScoringIsCaseSensitive(t *testing.T) {
	e := New(types.NewQuizState())
	id := e.AddOpen("Capital of France?", []string{"Paris", "paris"})

	scores, err := e.Evaluate(map[string]types.Answer{id: types.SingleAnswer("Paris")})
	require.NoError(t, err)
	assert.Equal(t, 1.0, scores[id])

	scores, err = e.Evaluate(map[string]types.Answer{id: types.SingleAnswer("PARIS")})
	require.NoError(t, err)
	assert.Equal(t, 0.0, scores[id])
}

func TestEvaluateUnknownQuestionID(t *testing.T) {
	e := New(types.NewQuizState())
	e.AddRadio("Pick b", []string{"a"}, "b")

	_, err := e.Evaluate(map[string]types.Answer{"q-42": types.SingleAnswer("b")})
	assert.True(t, apperr.IsValidation(err))
}

func TestRecordAttemptAggregatesToTenPointScale(t *testing.T) {
	e := New(types.NewQuizState())
	answers := map[string]types.Answer{
		"q-0": types.SingleAnswer("b"),
		"q-1": types.SingleAnswer("nope"),
	}
	scores := map[string]float64{"q-0": 1, "q-1": 0}

	require.NoError(t, e.RecordAttempt("u-1", answers, scores))

	attempts, err := e.Attempts("u-1")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 5.0, attempts[0].Mark)
	assert.Equal(t, scores, attempts[0].Scores)
	assert.Equal(t, answers, attempts[0].Answers)
	assert.False(t, attempts[0].Date.IsZero())
}

func TestRecordAttemptKeepsHistoryOrdered(t *testing.T) {
	e := New(types.NewQuizState())

	require.NoError(t, e.RecordAttempt("u-1", nil, map[string]float64{"q-0": 0}))
	require.NoError(t, e.RecordAttempt("u-1", nil, map[string]float64{"q-0": 1}))

	attempts, err := e.Attempts("u-1")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 0.0, attempts[0].Mark)
	assert.Equal(t, 10.0, attempts[1].Mark)
}

func TestRecordAttemptNoScores(t *testing.T) {
	e := New(types.NewQuizState())

	err := e.RecordAttempt("u-1", nil, map[string]float64{})
	assert.True(t, apperr.IsValidation(err))
}

func TestAttemptsUnknownUser(t *testing.T) {
	e := New(types.NewQuizState())

	_, err := e.Attempts("u-9")
	assert.True(t, apperr.IsNotFound(err))
}
