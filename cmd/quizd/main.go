package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	api "github.com/kambaz-lms/kambaz-quiz/internal/api/http"
	auth "github.com/kambaz-lms/kambaz-quiz/internal/auth/middleware"
	"github.com/kambaz-lms/kambaz-quiz/internal/config"
	"github.com/kambaz-lms/kambaz-quiz/internal/db"
	"github.com/kambaz-lms/kambaz-quiz/internal/quiz"
	"github.com/kambaz-lms/kambaz-quiz/internal/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := quiz.NewSQLStore(dbh)
	authSvc := auth.NewAuthService(cfg.AuthSecret, dbh)

	if cfg.Mode == config.ModeOffline {
		if err := seedDevUsers(ctx, dbh); err != nil {
			log.Fatalf("seed dev users: %v", err)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc))

	// Protected API (JWT -> subject/role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("quiz:view")).
			Get("/courses/{courseID}/quizzes", api.ListQuizzesHandler(store))
		pr.With(rbac.Require("quiz:create")).
			Post("/courses/{courseID}/quizzes", api.CreateQuizHandler(store))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(store))
		pr.With(rbac.Require("quiz:update")).
			Put("/quizzes/{quizID}", api.UpdateQuizHandler(store))
		pr.With(rbac.Require("quiz:delete")).
			Delete("/quizzes/{quizID}", api.DeleteQuizHandler(store))

		pr.With(rbac.Require("question:view")).
			Get("/quizzes/{quizID}/questions", api.ListQuestionsHandler(store))
		pr.With(rbac.Require("question:create")).
			Post("/quizzes/{quizID}/questions", api.CreateQuestionHandler(store))
		pr.With(rbac.Require("question:update")).
			Put("/questions/{questionID}", api.UpdateQuestionHandler(store))
		pr.With(rbac.Require("question:delete")).
			Delete("/questions/{questionID}", api.DeleteQuestionHandler(store))

		// Student take flow
		pr.With(rbac.Require("attempt:submit")).
			Post("/quizzes/{quizID}/attempts", api.SubmitAttemptHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/quizzes/{quizID}/attempts/{studentID}", api.ListAttemptsHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/quizzes/{quizID}/attempts/{studentID}/count", api.AttemptCountHandler(store))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}/eligibility", api.EligibilityHandler(store))

		// Faculty dry run, shares the student evaluator
		pr.With(rbac.Require("attempt:preview")).
			Post("/quizzes/{quizID}/preview", api.PreviewHandler(store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// seedDevUsers provisions offline-mode logins (faculty/faculty,
// student/student) when the users table is empty.
func seedDevUsers(ctx context.Context, dbh *sql.DB) error {
	var n int
	if err := dbh.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	now := time.Now().Unix()
	for _, u := range []struct{ name, role string }{
		{"faculty", "faculty"},
		{"student", "student"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.name), 12)
		if err != nil {
			return err
		}
		if _, err := dbh.ExecContext(ctx,
			`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
			uuid.NewString(), u.name, string(hash), u.role, now); err != nil {
			return err
		}
	}
	return nil
}
