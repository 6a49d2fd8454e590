package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kambaz-lms/kambaz-quiz/internal/quiz"
	"github.com/kambaz-lms/kambaz-quiz/internal/rbac"
)

// GET /courses/{courseID}/quizzes
// Students see only published quizzes; the list is ordered ascending by
// open date with undated quizzes first.
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		role := rbac.RoleFromContext(r.Context())
		list, err := store.ListQuizzes(r.Context(), courseID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, quiz.FilterVisible(list, role))
	}
}

// POST /courses/{courseID}/quizzes
func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var z quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&z); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		z.ID = ""
		z.CourseID = chi.URLParam(r, "courseID")
		saved, err := store.CreateQuiz(r.Context(), z)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, saved)
	}
}

// GET /quizzes/{quizID}
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		z, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			httpError(w, err)
			return
		}
		if !quiz.VisibleTo(z, rbac.RoleFromContext(r.Context())) {
			http.Error(w, quiz.ErrQuizNotFound.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, z)
	}
}

// PUT /quizzes/{quizID}
// Partial update: the body is decoded over the stored quiz, so absent
// fields keep their values. Publish/unpublish rides this route.
func UpdateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		z, err := store.GetQuiz(r.Context(), id)
		if err != nil {
			httpError(w, err)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&z); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		z.ID = id
		saved, err := store.UpdateQuiz(r.Context(), z)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, saved)
	}
}

// DELETE /quizzes/{quizID}
func DeleteQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuiz(r.Context(), chi.URLParam(r, "quizID")); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
