package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fedmod/ostracon/pkg/usecase"
	"github.com/fedmod/ostracon/pkg/utils/logging"
)

type Server struct {
	router                  *chi.Mux
	uc                      *usecase.UseCases
	slackEventHandler       *SlackEventHandler
	slackInteractionHandler *SlackInteractionHandler
	slackSigningSecret      string
}

type Options func(*Server)

// WithSlackWebhooks enables the Slack event and interaction endpoints. All
// requests under /hooks/slack are signature verified.
func WithSlackWebhooks(event *SlackEventHandler, interaction *SlackInteractionHandler, signingSecret string) Options {
	return func(s *Server) {
		s.slackEventHandler = event
		s.slackInteractionHandler = interaction
		s.slackSigningSecret = signingSecret
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK")) //nolint:errcheck // header already committed
	})

	// Removal request API
	r.Route("/api/requests", func(r chi.Router) {
		r.Post("/", s.handleSubmitRequest)
		r.Get("/", s.handleListRequests)
		r.Get("/{requestID}", s.handleGetRequest)
		r.Post("/{requestID}/cancel", s.handleCancelRequest)
	})

	// Slack webhook endpoints - no auth, uses signature verification
	if s.slackEventHandler != nil {
		r.Route("/hooks/slack", func(r chi.Router) {
			r.Use(SlackSignatureMiddleware(s.slackSigningSecret))

			r.Post("/event", s.slackEventHandler.ServeHTTP)
			r.Post("/interaction", s.slackInteractionHandler.ServeHTTP)
		})
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
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
