package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/haven-lab/lifeline/pkg/usecase"
	"github.com/haven-lab/lifeline/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(identityMiddleware)

		r.Route("/incidents", func(r chi.Router) {
			r.Post("/", s.createIncident)
			r.Get("/{incidentID}", s.getIncident)
			r.Post("/{incidentID}/status", s.updateIncident)
			r.Get("/{incidentID}/history", s.incidentHistory)
			r.Post("/{incidentID}/connections", s.createConnection)
		})

		r.Post("/connections/{connectionID}/close", s.closeConnection)

		r.Route("/responders", func(r chi.Router) {
			r.Post("/", s.registerResponder)
			r.Post("/{responderID}/training-complete", s.completeTraining)
			r.Post("/{responderID}/approve", s.approveResponder)
			r.Post("/{responderID}/availability", s.updateAvailability)
		})

		r.Get("/resources", s.searchResources)
		r.Get("/emergency-contacts", s.emergencyContacts)

		r.Post("/detect", s.detect)
		r.Post("/analyze", s.analyzeConversation)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
