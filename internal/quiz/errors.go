package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
)

// ConfigurationError marks a malformed quiz or question caught during
// authoring. It blocks the save.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IneligibleError is returned when a student may not start or submit an
// attempt: the quiz is unpublished, outside its availability window, or
// out of attempts. DaysUntilOpen is set only for the not-yet-open case.
type IneligibleError struct {
	Reason        string
	DaysUntilOpen int
}

func (e *IneligibleError) Error() string { return e.Reason }
