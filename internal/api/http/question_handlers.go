package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kambaz-lms/kambaz-quiz/internal/quiz"
	"github.com/kambaz-lms/kambaz-quiz/internal/rbac"
)

// GET /quizzes/{quizID}/questions
// Unpublished quizzes do not exist for students, questions included.
// Answer keys are stripped for students; faculty get the full payload.
func ListQuestionsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
		qs, err := store.ListQuestions(r.Context(), z.ID)
		if err != nil {
			httpError(w, err)
			return
		}
		if role == quiz.RoleStudent {
			for i := range qs {
				qs[i] = qs[i].StripAnswerKeys()
			}
		}
		writeJSON(w, qs)
	}
}

// POST /quizzes/{quizID}/questions
func CreateQuestionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.ID = ""
		q.QuizID = chi.URLParam(r, "quizID")
		saved, err := store.CreateQuestion(r.Context(), q)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, saved)
	}
}

// PUT /questions/{questionID}
// Switching the question's type without sending a new payload resets the
// payload to the new type's empty shape, mirroring the editor.
func UpdateQuestionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionID")
		existing, err := store.GetQuestion(r.Context(), id)
		if err != nil {
			httpError(w, err)
			return
		}
		var q quiz.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.ID = id
		q.QuizID = existing.QuizID
		if q.Type != existing.Type && payloadEmpty(q) {
			q.ResetPayload()
		}
		saved, err := store.UpdateQuestion(r.Context(), q)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, saved)
	}
}

func payloadEmpty(q quiz.Question) bool {
	return len(q.Choices) == 0 && q.CorrectChoice == "" &&
		len(q.CorrectBlanks) == 0 && !q.CorrectBool
}

// DELETE /questions/{questionID}
func DeleteQuestionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
