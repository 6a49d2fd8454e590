// Package grading holds the single answer evaluator shared by the
// student submit path and the faculty preview path. Grading is total:
// an absent or malformed submission grades as incorrect, never as an
// error. The only error case is a question type outside the closed set,
// which is an authoring-side configuration problem.
package grading

import (
	"github.com/kambaz-lms/kambaz-quiz/internal/quiz"
)

// Result is the outcome of evaluating a single question.
type Result struct {
	Correct bool
	Points  int // question points if correct, 0 otherwise; no partial credit
}

// strategy grades one question variant.
type strategy interface {
	evaluate(q quiz.Question, submitted any) bool
}

var strategies = map[quiz.QuestionType]strategy{
	quiz.MultipleChoice: choiceStrategy{},
	quiz.TrueFalse:      boolStrategy{},
	quiz.FillInBlank:    blanksStrategy{},
}

// Evaluate is a pure function of (question, submitted). Deterministic:
// the same inputs always yield the same result.
func Evaluate(q quiz.Question, submitted any) (Result, error) {
	s, ok := strategies[q.Type]
	if !ok {
		return Result{}, &quiz.ConfigurationError{Field: "type", Reason: "unknown question type: " + string(q.Type)}
	}
	if submitted == nil {
		return Result{}, nil
	}
	if s.evaluate(q, submitted) {
		return Result{Correct: true, Points: q.Points}, nil
	}
	return Result{}, nil
}

type choiceStrategy struct{}

func (choiceStrategy) evaluate(q quiz.Question, submitted any) bool {
	s, ok := submitted.(string)
	return ok && s == q.CorrectChoice
}

type boolStrategy struct{}

func (boolStrategy) evaluate(q quiz.Question, submitted any) bool {
	b, ok := submitted.(bool)
	return ok && b == q.CorrectBool
}

type blanksStrategy struct{}

// Blanks are order-sensitive and all-or-nothing: every slot must match
// its key after normalization, and the lengths must agree.
func (blanksStrategy) evaluate(q quiz.Question, submitted any) bool {
	given, ok := toStringSlice(submitted)
	if !ok || len(given) != len(q.CorrectBlanks) {
		return false
	}
	for i, g := range given {
		if Normalize(g) != Normalize(q.CorrectBlanks[i]) {
			return false
		}
	}
	return true
}

// GradeAll evaluates every question on the quiz against the draft answer
// map (absent entries grade as incorrect) and returns the answer records
// in quiz-question order plus the total score.
func GradeAll(questions []quiz.Question, answers map[string]any) ([]quiz.AnswerRecord, int, error) {
	records := make([]quiz.AnswerRecord, 0, len(questions))
	total := 0
	for _, q := range questions {
		given := answers[q.ID]
		res, err := Evaluate(q, given)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, quiz.AnswerRecord{
			Question: q.ID,
			Selected: given,
			Correct:  res.Correct,
		})
		total += res.Points
	}
	return records, total, nil
}

// toStringSlice accepts []string directly and []any as produced by
// encoding/json.
func toStringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
