// Package quiz is the scoring engine: a pure, storage-agnostic transformer
// over one quiz element's in-memory state. Callers load the state from the
// content store, run the engine, and persist the returned state themselves.
// The engine holds nothing shared, so separate copies of quiz state can be
// evaluated concurrently without synchronization.
package quiz

import (
	"fmt"
	"time"

	"github.com/lezionipari/coursecore/internal/apperr"
	"github.com/lezionipari/coursecore/internal/types"
)

type Engine struct {
	state *types.QuizState
}

func New(state *types.QuizState) *Engine {
	if state.Questions.Questions == nil {
		state.Questions.Questions = map[string]*types.Question{}
	}
	if state.Stats == nil {
		state.Stats = map[string][]types.Attempt{}
	}
	return &Engine{state: state}
}

// State returns the transformed quiz state for the caller to persist.
func (e *Engine) State() *types.QuizState {
	return e.state
}

// AddCheckbox appends a multi-select question and returns its ID.
func (e *Engine) AddCheckbox(text string, wrongAnswers, correctAnswers []string) string {
	id := e.nextQuestionID()
	e.state.Questions.Questions[id] = &types.Question{
		Type:           types.QuestionCheckbox,
		Text:           text,
		WrongAnswers:   wrongAnswers,
		CorrectAnswers: correctAnswers,
	}
	return id
}

// AddRadio appends a single-choice question and returns its ID.
func (e *Engine) AddRadio(text string, wrongAnswers []string, correctAnswer string) string {
	id := e.nextQuestionID()
	e.state.Questions.Questions[id] = &types.Question{
		Type:          types.QuestionRadio,
		Text:          text,
		WrongAnswers:  wrongAnswers,
		CorrectAnswer: correctAnswer,
	}
	return id
}

// AddOpen appends a free-text question; grading is a case-sensitive exact
// match against the accepted answers.
func (e *Engine) AddOpen(text string, correctAnswers []string) string {
	id := e.nextQuestionID()
	e.state.Questions.Questions[id] = &types.Question{
		Type:           types.QuestionOpen,
		Text:           text,
		CorrectAnswers: correctAnswers,
	}
	return id
}

func (e *Engine) RemoveQuestion(id string) error {
	if _, ok := e.state.Questions.Questions[id]; !ok {
		return apperr.NotFound("question %s not found", id)
	}
	delete(e.state.Questions.Questions, id)
	return nil
}

// Evaluate scores the submitted answers against the question bank. An answer
// referencing a question the bank does not know fails the whole evaluation:
// silently dropping it would lose the submission without a trace.
func (e *Engine) Evaluate(answers map[string]types.Answer) (map[string]float64, error) {
	scores := make(map[string]float64, len(answers))
	for id, answer := range answers {
		question, ok := e.state.Questions.Questions[id]
		if !ok {
			return nil, apperr.Validation("answer references unknown question %s", id)
		}
		scores[id] = score(question, answer)
	}
	return scores, nil
}

// score grades one answer. Checkbox: max(0, hits-misses)/|correct|.
// Radio and open: all or nothing.
func score(q *types.Question, a types.Answer) float64 {
	switch q.Type {
	case types.QuestionCheckbox:
		if len(q.CorrectAnswers) == 0 {
			return 0
		}
		submitted := a.Values()
		points := countIn(submitted, q.CorrectAnswers) - countIn(submitted, q.WrongAnswers)
		if points < 0 {
			return 0
		}
		return float64(points) / float64(len(q.CorrectAnswers))
	case types.QuestionRadio:
		if a.Text == q.CorrectAnswer {
			return 1
		}
		return 0
	case types.QuestionOpen:
		if contains(q.CorrectAnswers, a.Text) {
			return 1
		}
		return 0
	}
	return 0
}

// RecordAttempt appends a scored submission to the user's history. The
// aggregate mark is the mean score scaled to 0..10; an empty score set has no
// mean and is rejected rather than dividing by zero.
func (e *Engine) RecordAttempt(userID string, answers map[string]types.Answer, scores map[string]float64) error {
	if len(scores) == 0 {
		return apperr.Validation("attempt has no scores to record")
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	mark := sum / float64(len(scores)) * 10
	e.state.Stats[userID] = append(e.state.Stats[userID], types.Attempt{
		Date:    time.Now().UTC(),
		Mark:    mark,
		Answers: answers,
		Scores:  scores,
	})
	return nil
}

// Attempts returns the user's attempt history in submission order.
func (e *Engine) Attempts(userID string) ([]types.Attempt, error) {
	attempts, ok := e.state.Stats[userID]
	if !ok {
		return nil, apperr.NotFound("no attempts for %s", userID)
	}
	return attempts, nil
}

// nextQuestionID allocates from the quiz-local counter, which is independent
// of the descriptor counters and starts at zero for a fresh quiz.
func (e *Engine) nextQuestionID() string {
	id := fmt.Sprintf("q-%d", e.state.Questions.Count)
	e.state.Questions.Count++
	return id
}

func countIn(values, set []string) int {
	n := 0
	for _, v := range values {
		if contains(set, v) {
			n++
		}
	}
	return n
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
