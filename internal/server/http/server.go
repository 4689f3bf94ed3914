// Package http is the transport boundary of the server. It parses requests,
// extracts bearer tokens, and maps service errors to status codes; all
// business rules live in the services package.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/ebalodis/shellvault/internal/logging"
	"github.com/ebalodis/shellvault/internal/server/models"
	"github.com/ebalodis/shellvault/internal/server/services"
)

type accountSvc interface {
	Register(ctx context.Context, email, password string, fullName *string) (*models.Account, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	VerifyToken(token string) (string, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	Activate(ctx context.Context, id string) (*models.Account, error)
	Deactivate(ctx context.Context, id string) (*models.Account, error)
	ChangePassword(ctx context.Context, id, newPassword string) (*models.Account, error)
	UpdateFullName(ctx context.Context, id string, fullName *string) (*models.Account, error)
	Delete(ctx context.Context, id string) error
}

type specimenSvc interface {
	CreateWithImage(ctx context.Context, data models.SpecimenCreate, ownerID *string, upload *services.ImageUpload) (*models.Specimen, error)
	Get(ctx context.Context, id string) (*models.Specimen, error)
	List(ctx context.Context, filter models.SpecimenFilter, skip, limit int) ([]*models.Specimen, error)
	Count(ctx context.Context, filter models.SpecimenFilter) (int64, error)
	DistinctValues(ctx context.Context, field string) ([]string, error)
	UpdateWithImage(ctx context.Context, id string, patch models.SpecimenPatch, upload *services.ImageUpload) (*models.Specimen, error)
	DeleteImage(ctx context.Context, id string) (*models.Specimen, error)
	Delete(ctx context.Context, id string) error
}

type Server struct {
	address   string
	accounts  accountSvc
	specimens specimenSvc
	logger    logging.Logger
}

func NewServer(a string, l logging.Logger, as *services.AccountService, ss *services.SpecimenService) *Server {
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		accounts:  as,
		specimens: ss,
	}
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.RequestID,
		middleware.RealIP,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Get("/specimens", s.handleListSpecimens)
		r.Get("/specimens/filters/{field}", s.handleDistinctValues)
		r.Get("/specimens/{id}", s.handleGetSpecimen)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/accounts/me", s.handleGetMe)
			r.Patch("/accounts/me", s.handleUpdateMe)
			r.Post("/accounts/me/password", s.handleChangePassword)
			r.Delete("/accounts/me", s.handleDeleteMe)
			r.Patch("/accounts/{id}/activate", s.handleActivate)
			r.Patch("/accounts/{id}/deactivate", s.handleDeactivate)

			r.Post("/specimens", s.handleCreateSpecimen)
			r.Patch("/specimens/{id}", s.handleUpdateSpecimen)
			r.Delete("/specimens/{id}", s.handleDeleteSpecimen)
			r.Delete("/specimens/{id}/image", s.handleDeleteSpecimenImage)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
