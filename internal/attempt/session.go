package attempt

import (
	"context"
	"errors"
	"time"

	"github.com/kambaz-lms/kambaz-quiz/internal/grading"
	"github.com/kambaz-lms/kambaz-quiz/internal/quiz"
)

// State of a single attempt instance. Submitted is terminal for the
// instance; a retake builds a fresh InProgress pass through the same
// Session after re-checking eligibility.
type State int

const (
	NotStarted State = iota
	InProgress
	Submitted
)

var (
	ErrNotInProgress    = errors.New("attempt is not in progress")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
)

// Session owns the ephemeral take-flow state for one (student, quiz)
// pair: cursor position and draft answers. None of it is persisted;
// only the finalized Attempt produced by Submit survives. A Session is
// single-flight: one active attempt per session, no concurrent use.
type Session struct {
	store     quiz.Store
	history   *Manager
	quiz      quiz.Quiz
	questions []quiz.Question
	studentID string
	now       func() time.Time

	state    State
	cursor   int
	drafts   map[string]any
	result   *quiz.Attempt
	snapshot Snapshot
}

// NewSession wires a session over the loaded quiz and its questions in
// delivery order. nowFn defaults to time.Now.
func NewSession(store quiz.Store, z quiz.Quiz, questions []quiz.Question, studentID string, nowFn func() time.Time) *Session {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Session{
		store:     store,
		history:   NewManager(store),
		quiz:      z,
		questions: questions,
		studentID: studentID,
		now:       nowFn,
		drafts:    map[string]any{},
	}
}

func (s *Session) State() State      { return s.state }
func (s *Session) Remaining() int    { return s.snapshot.Remaining }
func (s *Session) History() Snapshot { return s.snapshot }

func (s *Session) Result() (quiz.Attempt, bool) {
	if s.result == nil {
		return quiz.Attempt{}, false
	}
	return *s.result, true
}

// Load refreshes history from the store and, when a prior attempt
// exists, restores the most recent result into the presentation: the
// session lands in Submitted showing the last score and answers rather
// than a blank form. This is "resume last result", not resuming any
// in-progress state.
func (s *Session) Load(ctx context.Context) error {
	snap, err := s.history.Snapshot(ctx, s.quiz, s.studentID)
	if err != nil {
		return err
	}
	s.snapshot = snap
	if last, ok := Latest(snap.Attempts); ok {
		s.restore(last)
	}
	return nil
}

func (s *Session) restore(a quiz.Attempt) {
	s.drafts = map[string]any{}
	for _, ans := range a.Answers {
		s.drafts[ans.Question] = ans.Selected
	}
	last := a
	s.result = &last
	s.state = Submitted
}

// Start moves NotStarted -> InProgress after the entry gate: quiz
// published, availability window open, attempts remaining per the
// server-derived snapshot.
func (s *Session) Start(ctx context.Context) error {
	snap, err := s.history.Snapshot(ctx, s.quiz, s.studentID)
	if err != nil {
		return err
	}
	s.snapshot = snap
	if err := quiz.CheckEntry(s.quiz, s.now(), snap.Remaining); err != nil {
		return err
	}
	s.state = InProgress
	s.cursor = 0
	s.drafts = map[string]any{}
	s.result = nil
	return nil
}

// SetAnswer records a draft selection. A no-op once submitted (answers
// are read-only in memory, not just in storage). With one-question-at-a-
// time pacing only the question under the cursor may change.
func (s *Session) SetAnswer(questionID string, selected any) {
	if s.state != InProgress {
		return
	}
	if s.quiz.OneQuestionAtATime {
		cur, ok := s.Current()
		if !ok || cur.ID != questionID {
			return
		}
	}
	s.drafts[questionID] = selected
}

// Answer returns the current draft for a question.
func (s *Session) Answer(questionID string) (any, bool) {
	v, ok := s.drafts[questionID]
	return v, ok
}

// Current returns the question under the cursor.
func (s *Session) Current() (quiz.Question, bool) {
	if s.cursor < 0 || s.cursor >= len(s.questions) {
		return quiz.Question{}, false
	}
	return s.questions[s.cursor], true
}

func (s *Session) Cursor() int { return s.cursor }

// Next advances the cursor. At the last question it stays put: the UI
// swaps the control for Submit instead of wrapping around.
func (s *Session) Next() {
	if s.state == InProgress && s.cursor < len(s.questions)-1 {
		s.cursor++
	}
}

// Prev moves the cursor back, stopping at 0.
func (s *Session) Prev() {
	if s.state == InProgress && s.cursor > 0 {
		s.cursor--
	}
}

// Submit grades every question on the quiz in order against the drafts
// (absent answers grade as incorrect), persists the finalized Attempt,
// and refreshes history so the retake decision uses the server's count.
// A quiz with zero questions submits successfully with an empty answer
// list and score 0.
func (s *Session) Submit(ctx context.Context) (quiz.Attempt, error) {
	switch s.state {
	case Submitted:
		return quiz.Attempt{}, ErrAlreadySubmitted
	case NotStarted:
		return quiz.Attempt{}, ErrNotInProgress
	}

	records, score, err := grading.GradeAll(s.questions, s.drafts)
	if err != nil {
		return quiz.Attempt{}, err
	}
	saved, err := s.store.InsertAttempt(ctx, quiz.Attempt{
		QuizID:    s.quiz.ID,
		StudentID: s.studentID,
		Answers:   records,
		Score:     score,
	})
	if err != nil {
		// the session stays InProgress so the student can retry the
		// submission; nothing was recorded
		return quiz.Attempt{}, err
	}
	s.result = &saved
	s.state = Submitted

	snap, err := s.history.Snapshot(ctx, s.quiz, s.studentID)
	if err != nil {
		return saved, err
	}
	s.snapshot = snap
	return saved, nil
}

// Retake discards the displayed result and drafts and re-enters through
// the same gate as Start. The stored attempts are untouched.
func (s *Session) Retake(ctx context.Context) error {
	s.state = NotStarted
	s.result = nil
	s.drafts = map[string]any{}
	s.cursor = 0
	return s.Start(ctx)
}
