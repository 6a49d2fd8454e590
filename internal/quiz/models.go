package quiz

import "time"

// QuestionType is a closed set. Every consumer (validator, evaluator,
// renderer) must branch over all three; an unknown type is a
// configuration error, never a silent fallback.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	FillInBlank    QuestionType = "fill_in_blank"
)

// Question is a tagged union keyed by Type. Exactly one payload group is
// meaningful per type:
//
//	MultipleChoice: Choices + CorrectChoice
//	TrueFalse:      CorrectBool
//	FillInBlank:    CorrectBlanks (one accepted value per blank, in order)
type Question struct {
	ID     string       `json:"id"`
	QuizID string       `json:"quiz_id"`
	Type   QuestionType `json:"type"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Points int          `json:"points"`

	Choices       []string `json:"choices,omitempty"`
	CorrectChoice string   `json:"correct_choice,omitempty"`
	CorrectBool   bool     `json:"correct_bool,omitempty"`
	CorrectBlanks []string `json:"correct_blanks,omitempty"`

	Position  int   `json:"position"`
	CreatedAt int64 `json:"created_at,omitempty"`
}

// Quiz policy fields mirror the authoring form. Points is the declared
// total and is independent of the summed question points.
type Quiz struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Points      int    `json:"points"`
	Published   bool   `json:"published"`

	AvailableFrom  *time.Time `json:"available_from,omitempty"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`

	ShuffleAnswers              bool   `json:"shuffle_answers"`
	TimeLimitMin                int    `json:"time_limit_min"` // 0 = unlimited
	MultipleAttempts            bool   `json:"multiple_attempts"`
	MaxAttempts                 int    `json:"max_attempts"` // meaningful only with MultipleAttempts
	ShowCorrectAnswers          bool   `json:"show_correct_answers"`
	AccessCode                  string `json:"access_code,omitempty"`
	OneQuestionAtATime          bool   `json:"one_question_at_a_time"`
	WebcamRequired              bool   `json:"webcam_required"`
	LockQuestionsAfterAnswering bool   `json:"lock_questions_after_answering"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// AnswerRecord is one graded answer inside a finalized attempt. Selected
// keeps the student's raw submission (string, bool, []string, or nil) and
// Correct is fixed at submission time, never recomputed.
type AnswerRecord struct {
	Question string `json:"question"`
	Selected any    `json:"selected"`
	Correct  bool   `json:"correct"`
}

// Attempt is created exactly once per submission and is immutable after
// that. A retake produces a new Attempt.
type Attempt struct {
	ID          string         `json:"id"`
	QuizID      string         `json:"quiz_id"`
	StudentID   string         `json:"student_id"`
	Answers     []AnswerRecord `json:"answers"`
	Score       int            `json:"score"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// StripAnswerKeys blanks the key material on a question so it can be
// served to students.
func (q Question) StripAnswerKeys() Question {
	blanks := len(q.CorrectBlanks)
	q.CorrectChoice = ""
	q.CorrectBool = false
	q.CorrectBlanks = nil
	if q.Type == FillInBlank && blanks > 0 {
		// the take form still needs to know how many blanks to render
		q.CorrectBlanks = make([]string, blanks)
	}
	return q
}
