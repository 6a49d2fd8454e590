package quiz

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore backs tests and single-process dev runs.
type memoryStore struct {
	mu        sync.RWMutex
	quizzes   map[string]Quiz
	questions map[string]Question
	attempts  []Attempt
}

func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes:   map[string]Quiz{},
		questions: map[string]Question{},
	}
}

func (m *memoryStore) CreateQuiz(_ context.Context, z Quiz) (Quiz, error) {
	if err := z.Validate(); err != nil {
		return Quiz{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if z.ID == "" {
		z.ID = uuid.NewString()
	}
	z.CreatedAt = time.Now().Unix()
	m.quizzes[z.ID] = z
	return z, nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	return z, nil
}

func (m *memoryStore) ListQuizzes(_ context.Context, courseID string) ([]Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Quiz{}
	for _, z := range m.quizzes {
		if z.CourseID == courseID {
			out = append(out, z)
		}
	}
	SortByAvailableFrom(out)
	return out, nil
}

func (m *memoryStore) UpdateQuiz(_ context.Context, z Quiz) (Quiz, error) {
	if err := z.Validate(); err != nil {
		return Quiz{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.quizzes[z.ID]
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	z.CourseID = old.CourseID
	z.CreatedAt = old.CreatedAt
	m.quizzes[z.ID] = z
	return z, nil
}

func (m *memoryStore) DeleteQuiz(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return ErrQuizNotFound
	}
	delete(m.quizzes, id)
	for qid, q := range m.questions {
		if q.QuizID == id {
			delete(m.questions, qid)
		}
	}
	return nil
}

func (m *memoryStore) CreateQuestion(_ context.Context, q Question) (Question, error) {
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatedAt = time.Now().Unix()
	m.questions[q.ID] = q
	return q, nil
}

func (m *memoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrQuestionNotFound
	}
	return q, nil
}

func (m *memoryStore) ListQuestions(_ context.Context, quizID string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Question{}
	for _, q := range m.questions {
		if q.QuizID == quizID {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt < out[j].CreatedAt
	})
	return out, nil
}

func (m *memoryStore) UpdateQuestion(_ context.Context, q Question) (Question, error) {
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.questions[q.ID]
	if !ok {
		return Question{}, ErrQuestionNotFound
	}
	q.QuizID = old.QuizID
	q.CreatedAt = old.CreatedAt
	m.questions[q.ID] = q
	return q, nil
}

func (m *memoryStore) DeleteQuestion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return ErrQuestionNotFound
	}
	delete(m.questions, id)
	return nil
}

func (m *memoryStore) InsertAttempt(_ context.Context, a Attempt) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.NewString()
	a.SubmittedAt = time.Now().UTC()
	if a.Answers == nil {
		a.Answers = []AnswerRecord{}
	}
	m.attempts = append(m.attempts, a)
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, quizID, studentID string) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if a.QuizID == quizID && a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryStore) CountAttempts(ctx context.Context, quizID, studentID string) (int, error) {
	list, err := m.ListAttempts(ctx, quizID, studentID)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}
