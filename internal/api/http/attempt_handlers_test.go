package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kambaz-lms/kambaz-quiz/internal/quiz"
	"github.com/kambaz-lms/kambaz-quiz/internal/rbac"
)

func testRouter(store quiz.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/quizzes/{quizID}/attempts", SubmitAttemptHandler(store))
	r.Get("/quizzes/{quizID}/attempts/{studentID}", ListAttemptsHandler(store))
	r.Get("/quizzes/{quizID}/attempts/{studentID}/count", AttemptCountHandler(store))
	r.Get("/quizzes/{quizID}/eligibility", EligibilityHandler(store))
	r.Post("/quizzes/{quizID}/preview", PreviewHandler(store))
	r.Get("/courses/{courseID}/quizzes", ListQuizzesHandler(store))
	r.Put("/quizzes/{quizID}", UpdateQuizHandler(store))
	r.Get("/quizzes/{quizID}/questions", ListQuestionsHandler(store))
	return r
}

// asUser stands in for the JWT middleware.
func asUser(req *http.Request, sub, role string) *http.Request {
	ctx := rbac.WithSubject(req.Context(), sub)
	ctx = rbac.WithRole(ctx, role)
	return req.WithContext(ctx)
}

func seed(t *testing.T, store quiz.Store, z quiz.Quiz, questions ...quiz.Question) (quiz.Quiz, []quiz.Question) {
	t.Helper()
	ctx := context.Background()
	if z.Title == "" {
		z.Title = "Quiz"
	}
	saved, err := store.CreateQuiz(ctx, z)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	qs := make([]quiz.Question, 0, len(questions))
	for i, q := range questions {
		q.QuizID = saved.ID
		q.Position = i
		sq, err := store.CreateQuestion(ctx, q)
		if err != nil {
			t.Fatalf("create question: %v", err)
		}
		qs = append(qs, sq)
	}
	return saved, qs
}

func TestSubmitAttemptHandler(t *testing.T) {
	store := quiz.NewInMemoryStore()
	z, qs := seed(t, store, quiz.Quiz{CourseID: "c1", Published: true},
		quiz.Question{Type: quiz.MultipleChoice, Points: 10, Choices: []string{"a", "b"}, CorrectChoice: "b"},
		quiz.Question{Type: quiz.FillInBlank, Points: 5, CorrectBlanks: []string{"Paris"}})
	r := testRouter(store)

	body, _ := json.Marshal(map[string]any{"answers": map[string]any{
		qs[0].ID: "b",
		qs[1].ID: []string{" paris "},
	}})
	req := asUser(httptest.NewRequest("POST", "/quizzes/"+z.ID+"/attempts", bytes.NewReader(body)), "s1", quiz.RoleStudent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	var a quiz.Attempt
	if err := json.Unmarshal(w.Body.Bytes(), &a); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if a.Score != 15 || a.ID == "" || a.StudentID != "s1" {
		t.Fatalf("attempt wrong: %+v", a)
	}
	if len(a.Answers) != 2 || !a.Answers[0].Correct || !a.Answers[1].Correct {
		t.Fatalf("answers wrong: %+v", a.Answers)
	}
}

func TestSubmitAttemptHandlerRejectsNotYetOpen(t *testing.T) {
	store := quiz.NewInMemoryStore()
	opens := time.Now().Add(48 * time.Hour)
	z, _ := seed(t, store, quiz.Quiz{CourseID: "c1", Published: true, AvailableFrom: &opens})
	r := testRouter(store)

	req := asUser(httptest.NewRequest("POST", "/quizzes/"+z.ID+"/attempts", bytes.NewBufferString(`{"answers":{}}`)), "s1", quiz.RoleStudent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		DaysUntilOpen int `json:"days_until_open"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.DaysUntilOpen != 2 {
		t.Fatalf("want 2 days until open, got %d", resp.DaysUntilOpen)
	}
	if n, _ := store.CountAttempts(context.Background(), z.ID, "s1"); n != 0 {
		t.Fatalf("rejected submission created an attempt")
	}
}

func TestSubmitAttemptHandlerAttemptLimit(t *testing.T) {
	store := quiz.NewInMemoryStore()
	z, _ := seed(t, store, quiz.Quiz{CourseID: "c1", Published: true}) // single attempt
	r := testRouter(store)

	post := func() *httptest.ResponseRecorder {
		req := asUser(httptest.NewRequest("POST", "/quizzes/"+z.ID+"/attempts", bytes.NewBufferString(`{"answers":{}}`)), "s1", quiz.RoleStudent)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	if w := post(); w.Code != http.StatusOK {
		t.Fatalf("first submission: want 200, got %d", w.Code)
	}
	if w := post(); w.Code != http.StatusConflict {
		t.Fatalf("second submission on single-attempt quiz: want 409, got %d", w.Code)
	}
}

func TestListAttemptsOwnership(t *testing.T) {
	store := quiz.NewInMemoryStore()
	z, _ := seed(t, store, quiz.Quiz{CourseID: "c1", Published: true})
	_, _ = store.InsertAttempt(context.Background(), quiz.Attempt{QuizID: z.ID, StudentID: "s1", Score: 3})
	r := testRouter(store)

	// another student may not read s1's history
	req := asUser(httptest.NewRequest("GET", "/quizzes/"+z.ID+"/attempts/s1", nil), "s2", quiz.RoleStudent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("want 403 for foreign history, got %d", w.Code)
	}

	// faculty may
	req = asUser(httptest.NewRequest("GET", "/quizzes/"+z.ID+"/attempts/s1", nil), "f1", quiz.RoleFaculty)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200 for faculty, got %d", w.Code)
	}

	// count endpoint mirrors the same rule
	req = asUser(httptest.NewRequest("GET", "/quizzes/"+z.ID+"/attempts/s1/count", nil), "s1", quiz.RoleStudent)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200 for own count, got %d", w.Code)
	}
	var c struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &c); err != nil || c.Count != 1 {
		t.Fatalf("want count 1, got %+v err=%v", c, err)
	}
}

func TestEligibilityHandler(t *testing.T) {
	store := quiz.NewInMemoryStore()
	z, _ := seed(t, store, quiz.Quiz{CourseID: "c1", Published: true, MultipleAttempts: true, MaxAttempts: 3})
	_, _ = store.InsertAttempt(context.Background(), quiz.Attempt{QuizID: z.ID, StudentID: "s1"})
	r := testRouter(store)

	req := asUser(httptest.NewRequest("GET", "/quizzes/"+z.ID+"/eligibility", nil), "s1", quiz.RoleStudent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var resp struct {
		Remaining int  `json:"remaining"`
		Used      int  `json:"used"`
		CanTake   bool `json:"can_take"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Used != 1 || resp.Remaining != 2 || !resp.CanTake {
		t.Fatalf("eligibility wrong: %+v", resp)
	}
}

func TestQuestionsStrippedForStudents(t *testing.T) {
	store := quiz.NewInMemoryStore()
	z, _ := seed(t, store, quiz.Quiz{CourseID: "c1", Published: true},
		quiz.Question{Type: quiz.MultipleChoice, Points: 10, Choices: []string{"a", "b"}, CorrectChoice: "b"})
	r := testRouter(store)

	req := asUser(httptest.NewRequest("GET", "/quizzes/"+z.ID+"/questions", nil), "s1", quiz.RoleStudent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var qs []quiz.Question
	if err := json.Unmarshal(w.Body.Bytes(), &qs); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if qs[0].CorrectChoice != "" {
		t.Fatalf("answer key leaked to student")
	}

	req = asUser(httptest.NewRequest("GET", "/quizzes/"+z.ID+"/questions", nil), "f1", quiz.RoleFaculty)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &qs); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if qs[0].CorrectChoice != "b" {
		t.Fatalf("faculty must see the answer key")
	}
}

func TestQuestionsHiddenForUnpublishedQuiz(t *testing.T) {
	store := quiz.NewInMemoryStore()
	z, _ := seed(t, store, quiz.Quiz{CourseID: "c1", Published: false},
		quiz.Question{Type: quiz.MultipleChoice, Points: 10, Choices: []string{"a", "b"}, CorrectChoice: "b"})
	r := testRouter(store)

	// a draft quiz does not exist for students, questions included
	req := asUser(httptest.NewRequest("GET", "/quizzes/"+z.ID+"/questions", nil), "s1", quiz.RoleStudent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("draft questions leaked to student: want 404, got %d: %s", w.Code, w.Body.String())
	}

	// faculty keep editing access to the draft
	req = asUser(httptest.NewRequest("GET", "/quizzes/"+z.ID+"/questions", nil), "f1", quiz.RoleFaculty)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200 for faculty, got %d", w.Code)
	}
}

func TestUpdateQuizPartialAndExplicitNull(t *testing.T) {
	store := quiz.NewInMemoryStore()
	opens := time.Now().Add(24 * time.Hour)
	z, _ := seed(t, store, quiz.Quiz{CourseID: "c1", Title: "Midterm", Published: true, AvailableFrom: &opens})
	r := testRouter(store)

	// absent fields keep their values; an explicit null clears the date
	req := asUser(httptest.NewRequest("PUT", "/quizzes/"+z.ID, bytes.NewBufferString(`{"available_from": null}`)), "f1", quiz.RoleFaculty)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	var saved quiz.Quiz
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if saved.AvailableFrom != nil {
		t.Fatalf("explicit null must clear available_from, got %v", saved.AvailableFrom)
	}
	if saved.Title != "Midterm" || !saved.Published {
		t.Fatalf("absent fields must keep stored values: %+v", saved)
	}
}

func TestPreviewHandlerUsesSameEvaluator(t *testing.T) {
	store := quiz.NewInMemoryStore()
	z, qs := seed(t, store, quiz.Quiz{CourseID: "c1", Published: false}, // preview works pre-publish
		quiz.Question{Type: quiz.FillInBlank, Points: 5, CorrectBlanks: []string{"Paris"}})
	r := testRouter(store)

	body, _ := json.Marshal(map[string]any{"answers": map[string]any{qs[0].ID: []string{" PARIS "}}})
	req := asUser(httptest.NewRequest("POST", "/quizzes/"+z.ID+"/preview", bytes.NewReader(body)), "f1", quiz.RoleFaculty)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var resp struct {
		Score    int `json:"score"`
		Possible int `json:"possible_points"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Score != 5 || resp.Possible != 5 {
		t.Fatalf("preview grading wrong: %+v", resp)
	}
	// preview persists nothing
	if n, _ := store.CountAttempts(context.Background(), z.ID, "f1"); n != 0 {
		t.Fatalf("preview created an attempt")
	}
}

func TestListQuizzesRoleFilterAndOrder(t *testing.T) {
	store := quiz.NewInMemoryStore()
	ctx := context.Background()
	later := time.Now().Add(72 * time.Hour)
	_, _ = store.CreateQuiz(ctx, quiz.Quiz{CourseID: "c1", Title: "late", Published: true, AvailableFrom: &later})
	_, _ = store.CreateQuiz(ctx, quiz.Quiz{CourseID: "c1", Title: "draft", Published: false})
	_, _ = store.CreateQuiz(ctx, quiz.Quiz{CourseID: "c1", Title: "undated", Published: true})
	r := testRouter(store)

	req := asUser(httptest.NewRequest("GET", "/courses/c1/quizzes", nil), "s1", quiz.RoleStudent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var list []quiz.Quiz
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(list) != 2 || list[0].Title != "undated" || list[1].Title != "late" {
		t.Fatalf("student list wrong: %+v", list)
	}

	req = asUser(httptest.NewRequest("GET", "/courses/c1/quizzes", nil), "f1", quiz.RoleFaculty)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("faculty must see drafts too, got %d", len(list))
	}
}
