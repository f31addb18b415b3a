package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/Aymardds/agrilearn-hub/internal/api/http"
	auth "github.com/Aymardds/agrilearn-hub/internal/auth/middleware"
	"github.com/Aymardds/agrilearn-hub/internal/cert"
	"github.com/Aymardds/agrilearn-hub/internal/config"
	"github.com/Aymardds/agrilearn-hub/internal/course"
	"github.com/Aymardds/agrilearn-hub/internal/db"
	"github.com/Aymardds/agrilearn-hub/internal/progress"
	"github.com/Aymardds/agrilearn-hub/internal/quiz"
	"github.com/Aymardds/agrilearn-hub/internal/rbac"
	syncx "github.com/Aymardds/agrilearn-hub/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	courses := course.NewSQLStore(dbh)
	prog := progress.NewSQLStore(dbh)
	quizzes := quiz.NewSQLStore(dbh)
	certs := cert.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh, cfg.SiteID)

	sessions := quiz.NewSessionManager(quizzes)
	defer sessions.Stop()

	gate := cert.NewGate(certs, func() cert.Settings {
		return cert.Settings{IssuerName: cfg.CertIssuerName, Partners: cfg.CertPartners}
	})

	// --- Auth ---
	secret := getenvOr("AUTH_HMAC_SECRET", "supersecret-dev-key")
	authSvc := auth.NewAuthService(secret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, cfg.AdminUser, cfg.AdminPassHash))

	// Public: certificate verification by code
	r.Get("/certificates/verify/{code}", api.VerifyCertificateHandler(certs))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.RoleClaimFallback))

		// Catalog / authoring
		pr.With(rbac.Require("course:view")).
			Get("/courses", api.ListCoursesHandler(courses))
		pr.With(rbac.Require("course:view")).
			Get("/courses/{courseID}", api.GetCourseStructureHandler(courses))
		pr.With(rbac.Require("course:create")).
			Post("/courses", api.CreateCourseHandler(courses))
		pr.With(rbac.Require("course:submit")).
			Post("/courses/{courseID}/submit", api.SetCourseStatusHandler(courses, course.StatusPending))
		pr.With(rbac.Require("course:approve")).
			Post("/courses/{courseID}/review", api.SetCourseStatusHandler(courses, course.StatusApproved, course.StatusRejected))
		pr.With(rbac.Require("course:publish")).
			Post("/courses/{courseID}/publish", api.SetCourseStatusHandler(courses, course.StatusPublished))
		pr.With(rbac.Require("course:delete")).
			Delete("/courses/{courseID}", api.DeleteCourseHandler(courses))
		pr.With(rbac.Require("module:create")).
			Post("/courses/{courseID}/modules", api.CreateModuleHandler(courses))
		pr.With(rbac.Require("chapter:create")).
			Post("/modules/{moduleID}/chapters", api.CreateChapterHandler(courses))
		pr.With(rbac.Require("lesson:create")).
			Post("/modules/{moduleID}/lessons", api.CreateLessonHandler(courses))

		// Learner flow
		pr.With(rbac.Require("enrollment:create")).
			Post("/courses/{courseID}/enroll", api.EnrollHandler(prog, events))
		pr.With(rbac.Require("enrollment:view-own")).
			Get("/me/enrollments", api.ListMyEnrollmentsHandler(prog))
		pr.With(rbac.Require("lesson:complete")).
			Post("/lessons/{lessonID}/complete", api.CompleteLessonHandler(prog, events))
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/courses/{courseID}/progress", api.CourseProgressHandler(prog))

		// Quizzes
		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.CreateQuizHandler(quizzes))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(quizzes))
		pr.With(rbac.Require("attempt:create")).
			Post("/quizzes/{quizID}/attempts", api.StartAttemptHandler(quizzes, courses, prog, sessions))
		pr.With(rbac.Require("attempt:save")).
			Post("/attempts/{attemptID}/answers", api.SaveAnswersHandler(quizzes))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/submit", api.SubmitAttemptHandler(sessions, events))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", api.GetAttemptHandler(quizzes))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(quizzes))

		// Certificates
		pr.With(rbac.Require("certificate:request")).
			Post("/courses/{courseID}/certificate", api.RequestCertificateHandler(gate, prog, quizzes, events))
		pr.With(rbac.Require("certificate:view-own")).
			Get("/me/certificates", api.ListMyCertificatesHandler(certs))

		// Users (admin bootstrap)
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func getenvOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
