package types

import (
	"encoding/json"
	"fmt"
	"time"
)

type QuestionType string

const (
	QuestionCheckbox QuestionType = "checkbox"
	QuestionRadio    QuestionType = "radio"
	QuestionOpen     QuestionType = "open"
)

// Question is the flattened wire form of the three question variants.
// Checkbox uses WrongAnswers+CorrectAnswers, radio uses
// WrongAnswers+CorrectAnswer, open uses CorrectAnswers only.
type Question struct {
	Type           QuestionType `json:"type"`
	Text           string       `json:"text"`
	WrongAnswers   []string     `json:"wrong_answers,omitempty"`
	CorrectAnswers []string     `json:"correct_answers,omitempty"`
	CorrectAnswer  string       `json:"correct_answer,omitempty"`
}

// QuestionBank is the question map plus the quiz-local ID counter. On the
// wire the counter lives inline under the reserved "count" key:
// {"count": 2, "q-0": {...}, "q-1": {...}}.
type QuestionBank struct {
	Count     int
	Questions map[string]*Question
}

func (b QuestionBank) MarshalJSON() ([]byte, error) {
	raw := make(map[string]json.RawMessage, len(b.Questions)+1)
	count, err := json.Marshal(b.Count)
	if err != nil {
		return nil, err
	}
	raw["count"] = count
	for id, q := range b.Questions {
		enc, err := json.Marshal(q)
		if err != nil {
			return nil, err
		}
		raw[id] = enc
	}
	return json.Marshal(raw)
}

func (b *QuestionBank) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Questions = make(map[string]*Question, len(raw))
	for key, val := range raw {
		if key == "count" {
			if err := json.Unmarshal(val, &b.Count); err != nil {
				return fmt.Errorf("question counter: %w", err)
			}
			continue
		}
		var q Question
		if err := json.Unmarshal(val, &q); err != nil {
			return fmt.Errorf("question %s: %w", key, err)
		}
		b.Questions[key] = &q
	}
	return nil
}

// Answer is one submitted answer. Checkbox submissions are a list of labels,
// radio and open submissions a single string; the wire keeps both shapes.
type Answer struct {
	Selected []string
	Text     string
}

func SingleAnswer(v string) Answer    { return Answer{Text: v} }
func MultiAnswer(vs ...string) Answer { return Answer{Selected: vs} }

// Values returns the submitted labels regardless of shape.
func (a Answer) Values() []string {
	if a.Selected != nil {
		return a.Selected
	}
	if a.Text == "" {
		return nil
	}
	return []string{a.Text}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Selected != nil {
		return json.Marshal(a.Selected)
	}
	return json.Marshal(a.Text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Answer{Text: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = Answer{Selected: list}
		return nil
	}
	return fmt.Errorf("invalid answer %s", data)
}

// Attempt is one scored submission by one user.
type Attempt struct {
	Date    time.Time          `json:"date"`
	Mark    float64            `json:"mark"`
	Answers map[string]Answer  `json:"answers"`
	Scores  map[string]float64 `json:"scores"`
}

// QuizState is the full content document of one quiz element.
type QuizState struct {
	Questions QuestionBank         `json:"questions"`
	Stats     map[string][]Attempt `json:"stats"`
}

// NewQuizState returns the skeleton seeded for a fresh quiz element:
// {"questions": {"count": 0}, "stats": {}}.
func NewQuizState() *QuizState {
	return &QuizState{
		Questions: QuestionBank{Count: 0, Questions: map[string]*Question{}},
		Stats:     map[string][]Attempt{},
	}
}
