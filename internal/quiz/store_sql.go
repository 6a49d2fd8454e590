package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SQLStore persists quizzes, questions and attempts over database/sql.
// Question answer payloads and attempt answers live in JSON text columns.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// questionPayload is the JSON shape of the type-dependent part of a
// question row.
type questionPayload struct {
	Choices       []string `json:"choices,omitempty"`
	CorrectChoice string   `json:"correct_choice,omitempty"`
	CorrectBool   bool     `json:"correct_bool,omitempty"`
	CorrectBlanks []string `json:"correct_blanks,omitempty"`
}

func (s *SQLStore) CreateQuiz(ctx context.Context, z Quiz) (Quiz, error) {
	if err := z.Validate(); err != nil {
		return Quiz{}, err
	}
	if z.ID == "" {
		z.ID = uuid.NewString()
	}
	z.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO quizzes
		(id,course_id,title,description,points,published,
		 available_from,available_until,due_date,
		 shuffle_answers,time_limit_min,multiple_attempts,max_attempts,
		 show_correct_answers,access_code,one_question_at_a_time,
		 webcam_required,lock_questions_after_answering,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		z.ID, z.CourseID, z.Title, z.Description, z.Points, z.Published,
		unixPtr(z.AvailableFrom), unixPtr(z.AvailableUntil), unixPtr(z.DueDate),
		z.ShuffleAnswers, z.TimeLimitMin, z.MultipleAttempts, z.MaxAttempts,
		z.ShowCorrectAnswers, z.AccessCode, z.OneQuestionAtATime,
		z.WebcamRequired, z.LockQuestionsAfterAnswering, z.CreatedAt)
	if err != nil {
		return Quiz{}, err
	}
	return z, nil
}

const quizCols = `id,course_id,title,description,points,published,
	available_from,available_until,due_date,
	shuffle_answers,time_limit_min,multiple_attempts,max_attempts,
	show_correct_answers,access_code,one_question_at_a_time,
	webcam_required,lock_questions_after_answering,created_at`

func scanQuiz(row interface{ Scan(...any) error }) (Quiz, error) {
	var z Quiz
	var from, until, due sql.NullInt64
	err := row.Scan(&z.ID, &z.CourseID, &z.Title, &z.Description, &z.Points, &z.Published,
		&from, &until, &due,
		&z.ShuffleAnswers, &z.TimeLimitMin, &z.MultipleAttempts, &z.MaxAttempts,
		&z.ShowCorrectAnswers, &z.AccessCode, &z.OneQuestionAtATime,
		&z.WebcamRequired, &z.LockQuestionsAfterAnswering, &z.CreatedAt)
	if err != nil {
		return Quiz{}, err
	}
	z.AvailableFrom = timePtr(from)
	z.AvailableUntil = timePtr(until)
	z.DueDate = timePtr(due)
	return z, nil
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+quizCols+` FROM quizzes WHERE id=$1`, id)
	z, err := scanQuiz(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, ErrQuizNotFound
	}
	return z, err
}

func (s *SQLStore) ListQuizzes(ctx context.Context, courseID string) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quizCols+` FROM quizzes WHERE course_id=$1`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		z, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	SortByAvailableFrom(out)
	return out, nil
}

func (s *SQLStore) UpdateQuiz(ctx context.Context, z Quiz) (Quiz, error) {
	if err := z.Validate(); err != nil {
		return Quiz{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE quizzes SET
		title=$1, description=$2, points=$3, published=$4,
		available_from=$5, available_until=$6, due_date=$7,
		shuffle_answers=$8, time_limit_min=$9, multiple_attempts=$10, max_attempts=$11,
		show_correct_answers=$12, access_code=$13, one_question_at_a_time=$14,
		webcam_required=$15, lock_questions_after_answering=$16
		WHERE id=$17`,
		z.Title, z.Description, z.Points, z.Published,
		unixPtr(z.AvailableFrom), unixPtr(z.AvailableUntil), unixPtr(z.DueDate),
		z.ShuffleAnswers, z.TimeLimitMin, z.MultipleAttempts, z.MaxAttempts,
		z.ShowCorrectAnswers, z.AccessCode, z.OneQuestionAtATime,
		z.WebcamRequired, z.LockQuestionsAfterAnswering, z.ID)
	if err != nil {
		return Quiz{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Quiz{}, ErrQuizNotFound
	}
	return s.GetQuiz(ctx, z.ID)
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatedAt = time.Now().Unix()
	pj, err := json.Marshal(questionPayload{
		Choices: q.Choices, CorrectChoice: q.CorrectChoice,
		CorrectBool: q.CorrectBool, CorrectBlanks: q.CorrectBlanks,
	})
	if err != nil {
		return Question{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO questions
		(id,quiz_id,qtype,title,text,points,payload_json,position,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		q.ID, q.QuizID, string(q.Type), q.Title, q.Text, q.Points, string(pj), q.Position, q.CreatedAt)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func scanQuestion(row interface{ Scan(...any) error }) (Question, error) {
	var q Question
	var qtype, pj string
	if err := row.Scan(&q.ID, &q.QuizID, &qtype, &q.Title, &q.Text, &q.Points, &pj, &q.Position, &q.CreatedAt); err != nil {
		return Question{}, err
	}
	q.Type = QuestionType(qtype)
	var p questionPayload
	if err := json.Unmarshal([]byte(pj), &p); err != nil {
		return Question{}, err
	}
	q.Choices = p.Choices
	q.CorrectChoice = p.CorrectChoice
	q.CorrectBool = p.CorrectBool
	q.CorrectBlanks = p.CorrectBlanks
	return q, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,quiz_id,qtype,title,text,points,payload_json,position,created_at
		 FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrQuestionNotFound
	}
	return q, err
}

func (s *SQLStore) ListQuestions(ctx context.Context, quizID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,quiz_id,qtype,title,text,points,payload_json,position,created_at
		 FROM questions WHERE quiz_id=$1 ORDER BY position, created_at`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, q Question) (Question, error) {
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	pj, err := json.Marshal(questionPayload{
		Choices: q.Choices, CorrectChoice: q.CorrectChoice,
		CorrectBool: q.CorrectBool, CorrectBlanks: q.CorrectBlanks,
	})
	if err != nil {
		return Question{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE questions SET
		qtype=$1, title=$2, text=$3, points=$4, payload_json=$5, position=$6 WHERE id=$7`,
		string(q.Type), q.Title, q.Text, q.Points, string(pj), q.Position, q.ID)
	if err != nil {
		return Question{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Question{}, ErrQuestionNotFound
	}
	return s.GetQuestion(ctx, q.ID)
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (s *SQLStore) InsertAttempt(ctx context.Context, a Attempt) (Attempt, error) {
	a.ID = uuid.NewString()
	a.SubmittedAt = time.Now().UTC()
	if a.Answers == nil {
		a.Answers = []AnswerRecord{}
	}
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return Attempt{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO attempts
		(id,quiz_id,student_id,answers_json,score,submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.QuizID, a.StudentID, string(aj), a.Score, a.SubmittedAt.UnixNano())
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, quizID, studentID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,quiz_id,student_id,answers_json,score,submitted_at
		 FROM attempts WHERE quiz_id=$1 AND student_id=$2 ORDER BY submitted_at, id`,
		quizID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		var aj string
		var at int64
		if err := rows.Scan(&a.ID, &a.QuizID, &a.StudentID, &aj, &a.Score, &at); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aj), &a.Answers); err != nil {
			return nil, err
		}
		a.SubmittedAt = time.Unix(0, at).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountAttempts(ctx context.Context, quizID, studentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE quiz_id=$1 AND student_id=$2`,
		quizID, studentID).Scan(&n)
	return n, err
}

func unixPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
