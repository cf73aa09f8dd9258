/*
server.go - HTTP server and routing

PURPOSE:
  Wires the handlers into a chi router with standard middleware and CORS,
  and owns the http.Server lifecycle.

SEE ALSO:
  - handlers.go: the route implementations
  - cmd/server/main.go: startup, configuration and shutdown
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/terrazza/booking-engine/store/sqlite"
)

// Server is the HTTP front of the booking engine.
type Server struct {
	handler *Handler
	router  *chi.Mux
	http    *http.Server
	log     zerolog.Logger
}

// NewServer builds a server around the given store.
func NewServer(store *sqlite.Store, port int, log zerolog.Logger) *Server {
	s := &Server{
		handler: NewHandler(store, log),
		log:     log,
	}
	s.router = NewRouter(s.handler)
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// NewRouter mounts all routes on a fresh chi router.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", h.CreateReservation)
			r.Get("/", h.ListReservations)
			r.Get("/{id}", h.GetReservation)
			r.Post("/{id}/status", h.UpdateReservationStatus)
			r.Get("/{id}/tables/blocked", h.BlockedTables)
			r.Put("/{id}/tables", h.AssignTable)
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", h.ListTables)
			r.Post("/", h.CreateTable)
		})

		r.Get("/timeline", h.Timeline)
		r.Get("/availability", h.Availability)

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		r.Get("/opening-hours", h.GetOpeningHours)
		r.Put("/opening-hours", h.PutOpeningHours)

		r.Get("/special-days", h.ListSpecialDays)
		r.Post("/special-days", h.CreateSpecialDay)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// Router exposes the mux, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving. It blocks until the listener stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
