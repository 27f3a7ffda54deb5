package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	api "github.com/reviewloop/reviewloop/internal/api/http"
	"github.com/reviewloop/reviewloop/internal/audit"
	auth "github.com/reviewloop/reviewloop/internal/auth/middleware"
	"github.com/reviewloop/reviewloop/internal/config"
	"github.com/reviewloop/reviewloop/internal/db"
	"github.com/reviewloop/reviewloop/internal/grades"
	"github.com/reviewloop/reviewloop/internal/metrics"
	"github.com/reviewloop/reviewloop/internal/rbac"
)

func main() {
	cfg := config.FromEnv()
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var (
		store    grades.Store
		recorder audit.Recorder = audit.Nop{}
		authSvc                 = auth.NewAuthService(cfg.AuthSecret)
		loginOK  bool
	)

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

	switch cfg.StoreBackend {
	case "memory":
		// Dev-only: no users table, so local login stays unmounted.
		store = grades.NewInMemoryStore()
		log.Warn("running on the in-memory store; local login disabled")
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			log.WithError(err).Fatal("db open failed")
		}
		store = grades.NewSQLStore(dbh, cfg.DBDriver)
		recorder = audit.NewEventRepo(dbh)
		if cfg.EnableLocalAuth {
			r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
			loginOK = true
		}
	}

	svc := grades.NewService(store)

	// Protected API (JWT → subject/role in context → RBAC / gate predicates)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Gate predicates run inside these handlers.
		pr.Get("/assignments/{assignmentID}/heatmap", api.HeatMapHandler(svc))
		pr.Get("/participants/{participantID}/scores", api.ViewMyScoresHandler(svc))
		pr.Get("/participants/{participantID}/team", api.ViewTeamHandler(svc))

		// Instructor/TA surfaces.
		pr.With(rbac.Require("grades:edit")).
			Get("/participants/{participantID}/edit", api.EditGradeHandler(svc))
		pr.With(rbac.Require("review:instructor")).
			Get("/participants/{participantID}/instructor-review", api.InstructorReviewHandler(svc))
		pr.With(rbac.Require("grades:override")).
			Patch("/participants/{participantID}/grade", api.UpdateGradeHandler(svc, recorder))
		pr.With(rbac.Require("submission:grade")).
			Post("/participants/{participantID}/submission-grade", api.SaveSubmissionGradeHandler(svc, recorder))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	if cfg.EnableMetrics {
		r.Handle("/metrics", metrics.Handler())
	}

	log.WithFields(logrus.Fields{
		"addr":  cfg.HTTPAddr,
		"mode":  cfg.Mode,
		"store": cfg.StoreBackend,
		"db":    cfg.DBDriver,
		"login": loginOK,
	}).Info("listening")
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
