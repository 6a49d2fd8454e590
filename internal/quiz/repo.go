package quiz

import "context"

// Store is the persistence collaborator for quizzes, questions and
// attempts. Attempts are insert-only: there is no update or delete, a
// stored attempt never changes.
type Store interface {
	CreateQuiz(ctx context.Context, z Quiz) (Quiz, error)
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	ListQuizzes(ctx context.Context, courseID string) ([]Quiz, error)
	UpdateQuiz(ctx context.Context, z Quiz) (Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error

	CreateQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	ListQuestions(ctx context.Context, quizID string) ([]Question, error)
	UpdateQuestion(ctx context.Context, q Question) (Question, error)
	DeleteQuestion(ctx context.Context, id string) error

	// InsertAttempt assigns the id and submitted_at; callers send an
	// Attempt without them.
	InsertAttempt(ctx context.Context, a Attempt) (Attempt, error)
	// ListAttempts returns a student's attempts for a quiz in
	// submission order.
	ListAttempts(ctx context.Context, quizID, studentID string) ([]Attempt, error)
	// CountAttempts is the server-side authority for attempts used;
	// remaining-attempt math must derive from it, never from a local
	// counter.
	CountAttempts(ctx context.Context, quizID, studentID string) (int, error)
}
