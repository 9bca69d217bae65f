package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/petroops-lab/derrick/pkg/service/realtime"
	"github.com/petroops-lab/derrick/pkg/usecase"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	hub    *realtime.Hub
}

type Options func(*Server)

// WithRealtimeHub enables the websocket endpoint for live notifications
func WithRealtimeHub(hub *realtime.Hub) Options {
	return func(s *Server) {
		s.hub = hub
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

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/actions", func(r chi.Router) {
			r.Post("/", createActionHandler(uc.Action))
			r.Get("/", listActionsHandler(uc.Action))
			r.Get("/search", searchActionsHandler(uc.Action))
			r.Route("/{actionID}", func(r chi.Router) {
				r.Get("/", getActionHandler(uc.Action))
				r.Patch("/", updateActionHandler(uc.Action))
				r.Put("/status", updateActionStatusHandler(uc.Action))
				r.Delete("/", deleteActionHandler(uc.Action))
				r.Get("/tasks", listActionTasksHandler(uc.Task))
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", createTaskHandler(uc.Task))
			r.Get("/", listTasksHandler(uc.Task))
			r.Route("/{taskID}", func(r chi.Router) {
				r.Get("/", getTaskHandler(uc.Task))
				r.Put("/status", markTaskStatusHandler(uc.Task))
				r.Put("/progress", updateTaskProgressHandler(uc.Task))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", listNotificationsHandler(uc.Notification))
			r.Get("/unread-count", countUnreadHandler(uc.Notification))
			r.Post("/{notificationID}/read", markReadHandler(uc.Notification))
		})
	})

	if s.hub != nil {
		r.Get("/ws", websocketHandler(s.hub))
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck // header already committed
}
