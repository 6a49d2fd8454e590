package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kambaz-lms/kambaz-quiz/internal/attempt"
	"github.com/kambaz-lms/kambaz-quiz/internal/grading"
	"github.com/kambaz-lms/kambaz-quiz/internal/quiz"
	"github.com/kambaz-lms/kambaz-quiz/internal/rbac"
)

type submitReq struct {
	Answers map[string]any `json:"answers"`
}

// POST /quizzes/{quizID}/attempts
// The server regrades every question itself: client-computed scores are
// ignored. Eligibility (published, availability window, attempts
// remaining) is enforced before anything is persisted. Two racing
// submissions from separate sessions both pass the gate and are both
// counted; deduplication is deliberately not attempted.
func SubmitAttemptHandler(store quiz.Store) http.HandlerFunc {
	hist := attempt.NewManager(store)
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := rbac.SubjectFromContext(r.Context())
		quizID := chi.URLParam(r, "quizID")

		var req submitReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		z, err := store.GetQuiz(r.Context(), quizID)
		if err != nil {
			httpError(w, err)
			return
		}
		snap, err := hist.Snapshot(r.Context(), z, studentID)
		if err != nil {
			httpError(w, err)
			return
		}
		if err := quiz.CheckEntry(z, time.Now(), snap.Remaining); err != nil {
			httpError(w, err)
			return
		}

		questions, err := store.ListQuestions(r.Context(), quizID)
		if err != nil {
			httpError(w, err)
			return
		}
		records, score, err := grading.GradeAll(questions, req.Answers)
		if err != nil {
			httpError(w, err)
			return
		}
		saved, err := store.InsertAttempt(r.Context(), quiz.Attempt{
			QuizID:    quizID,
			StudentID: studentID,
			Answers:   records,
			Score:     score,
		})
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, saved)
	}
}

// GET /quizzes/{quizID}/attempts/{studentID}
// Students may only read their own history; faculty may read anyone's.
func ListAttemptsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		studentID := chi.URLParam(r, "studentID")
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())
		if role == quiz.RoleStudent && sub != studentID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		list, err := store.ListAttempts(r.Context(), quizID, studentID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, list)
	}
}

// GET /quizzes/{quizID}/attempts/{studentID}/count
func AttemptCountHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		studentID := chi.URLParam(r, "studentID")
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())
		if role == quiz.RoleStudent && sub != studentID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		n, err := store.CountAttempts(r.Context(), quizID, studentID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]int{"count": n})
	}
}

// GET /quizzes/{quizID}/eligibility
// Backs the take-entry gate: availability verdict, whole days until the
// quiz opens, and the attempts standing for the calling student.
func EligibilityHandler(store quiz.Store) http.HandlerFunc {
	hist := attempt.NewManager(store)
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := rbac.SubjectFromContext(r.Context())
		z, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			httpError(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		if !quiz.VisibleTo(z, role) {
			http.Error(w, quiz.ErrQuizNotFound.Error(), http.StatusNotFound)
			return
		}
		snap, err := hist.Snapshot(r.Context(), z, studentID)
		if err != nil {
			httpError(w, err)
			return
		}
		now := time.Now()
		resp := map[string]any{
			"availability":    quiz.Resolve(z, now),
			"days_until_open": quiz.DaysUntilOpen(z, now),
			"used":            snap.Used,
			"remaining":       snap.Remaining,
			"can_take":        quiz.CheckEntry(z, now, snap.Remaining) == nil,
		}
		writeJSON(w, resp)
	}
}

// POST /quizzes/{quizID}/preview
// Faculty-only dry run: grades a draft answer map with the same
// evaluator as the student submit path and persists nothing.
func PreviewHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		questions, err := store.ListQuestions(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			httpError(w, err)
			return
		}
		records, score, err := grading.GradeAll(questions, req.Answers)
		if err != nil {
			httpError(w, err)
			return
		}
		possible := 0
		for _, q := range questions {
			possible += q.Points
		}
		writeJSON(w, map[string]any{
			"score":           score,
			"possible_points": possible,
			"answers":         records,
		})
	}
}
