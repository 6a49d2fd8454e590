// Package attempt implements the student-side attempt lifecycle: the
// per-session state machine and the attempt history / limit bookkeeping.
package attempt

import (
	"context"

	"github.com/kambaz-lms/kambaz-quiz/internal/quiz"
)

// Snapshot is an eventually-consistent view of a student's standing on a
// quiz, derived from the store on every refresh. Counts always come from
// the server-side count, never from local state, so two sessions on
// different devices converge after each submission.
type Snapshot struct {
	Attempts  []quiz.Attempt `json:"attempts"`
	Used      int            `json:"used"`
	Remaining int            `json:"remaining"`
}

// Manager computes attempt history and retake eligibility.
type Manager struct {
	store quiz.Store
}

func NewManager(store quiz.Store) *Manager { return &Manager{store: store} }

// Snapshot loads the student's prior attempts (submission order) and the
// authoritative attempt count for the quiz.
func (m *Manager) Snapshot(ctx context.Context, z quiz.Quiz, studentID string) (Snapshot, error) {
	attempts, err := m.store.ListAttempts(ctx, z.ID, studentID)
	if err != nil {
		return Snapshot{}, err
	}
	used, err := m.store.CountAttempts(ctx, z.ID, studentID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Attempts: attempts, Used: used, Remaining: Remaining(z, used)}, nil
}

// Remaining applies the quiz's attempt policy: with multiple attempts
// enabled it is maxAttempts minus attempts used (floored at 0); without,
// a single attempt is available until one exists.
func Remaining(z quiz.Quiz, used int) int {
	if z.MultipleAttempts {
		max := z.MaxAttempts
		if max < 1 {
			max = 1
		}
		if r := max - used; r > 0 {
			return r
		}
		return 0
	}
	if used == 0 {
		return 1
	}
	return 0
}

// Latest returns the most recent attempt, if any. Re-entering a quiz
// restores this attempt's answers and score as the displayed result.
func Latest(list []quiz.Attempt) (quiz.Attempt, bool) {
	if len(list) == 0 {
		return quiz.Attempt{}, false
	}
	return list[len(list)-1], true
}
