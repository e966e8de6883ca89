package rest

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"property-explorer/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// ServerConfig - параметры HTTP-сервера.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// BaseContext - отмена этого контекста закрывает открытые SSE-потоки
	BaseContext context.Context
}

// Server - REST API и SSE для UI.
type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewRouter собирает маршруты /api/v1.
func NewRouter(cfg ServerConfig, h *Handlers, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader, traceIDHeader},
		ExposedHeaders:   []string{SessionHeader, traceIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Route("/explorer", func(r chi.Router) {
			r.Get("/filters", h.GetFilters)
			r.Put("/filters", h.SetFilters)
			r.Delete("/filters", h.ResetFilters)
			r.Get("/state", h.GetState)
			r.Post("/load-more", h.LoadMore)
			r.Post("/pages/next", h.NextPage)
			r.Post("/pages/previous", h.PreviousPage)
			r.Get("/selection", h.GetSelection)
			r.Put("/selection", h.SetSelection)
			r.Delete("/selection", h.ClearSelection)
			r.Get("/clusters", h.GetClusters)
			r.Get("/events", h.SubscribeToEvents)
		})
		r.Delete("/session", h.CloseSession)

		r.Route("/map/viewport", func(r chi.Router) {
			r.Get("/", h.GetViewport)
			r.Put("/", h.SaveViewport)
			r.Post("/locate", h.LocateViewport)
		})

		r.Route("/properties", func(r chi.Router) {
			r.Get("/featured", h.GetFeaturedProperties)
			r.Get("/search", h.SearchProperties)
			r.Get("/{propertyID}", h.GetProperty)
		})

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", h.ListBookmarks)
			r.Post("/", h.AddBookmark)
			r.Delete("/{propertyID}", h.RemoveBookmark)
			r.Post("/toggle/{propertyID}", h.ToggleBookmark)
		})

		r.Route("/likes", func(r chi.Router) {
			r.Get("/", h.ListLikes)
			r.Get("/check/{propertyID}", h.CheckLike)
			r.Post("/toggle/{propertyID}", h.ToggleLike)
		})

		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{id}", h.GetCategory)

		r.Get("/messages", h.ListMessages)
		r.Post("/messages", h.SendMessage)
		r.Get("/messages/{id}", h.GetMessage)

		r.Get("/users", h.ListUsers)
		r.Get("/users/me", h.GetMe)
		r.Get("/users/{id}", h.GetUser)
		r.Patch("/users/{id}", h.UpdateUser)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/refresh", h.Refresh)
			r.Post("/logout", h.Logout)
		})

		r.Post("/contact", h.SubmitContact)
	})

	return r
}

func NewServer(cfg ServerConfig, h *Handlers, baseLogger port.LoggerPort) *Server {
	// WriteTimeout не задан: SSE-соединения живут долго
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: NewRouter(cfg, h, baseLogger),
	}
	if cfg.BaseContext != nil {
		srv.BaseContext = func(net.Listener) context.Context { return cfg.BaseContext }
	}

	return &Server{
		httpServer: srv,
		logger:     baseLogger,
	}
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
