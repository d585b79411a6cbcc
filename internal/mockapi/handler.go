package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// DefaultUsers are the seeded accounts of the real backend.
var DefaultUsers = map[string]string{
	"admin": "admin123",
	"user":  "user123",
}

type Options struct {
	// Users maps usernames to passwords. Nil means DefaultUsers.
	Users map[string]string
	// Movies replaces DefaultCatalogue when set.
	Movies []Movie
	// FailHealth makes the health endpoints answer 500.
	FailHealth bool
	// Latency is added to every request.
	Latency time.Duration
	Logger  *slog.Logger
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type api struct {
	opts      Options
	catalogue *catalogue
	logger    *slog.Logger

	mutex  sync.RWMutex
	tokens map[string]string
}

// NewHandler returns the router of the mock backend.
func NewHandler(opts Options) http.Handler {
	if opts.Users == nil {
		opts.Users = DefaultUsers
	}
	if opts.Movies == nil {
		opts.Movies = DefaultCatalogue
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	a := &api{
		opts:      opts,
		catalogue: newCatalogue(opts.Movies),
		logger:    opts.Logger,
		tokens:    make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)
	if opts.Latency > 0 {
		r.Use(a.delay)
	}

	r.Get("/", a.frontend)

	r.Route("/api/health", func(r chi.Router) {
		r.Get("/", a.health)
		r.Get("/detailed", a.health)
		r.Get("/ping", a.ping)
	})

	r.Post("/api/auth/login", a.login)

	r.Group(func(r chi.Router) {
		r.Use(a.authenticate)
		r.Get("/api/movies", a.searchMovies)
		r.Get("/api/movies/{imdbID}", a.getMovie)
		r.Get("/api/stats", a.movieStats)
	})

	return r
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		a.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.String("request_id", r.Header.Get("X-Request-ID")),
			slog.Duration("duration", time.Since(start)))
	})
}

func (a *api) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(a.opts.Latency):
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
		}
	})
}

func (a *api) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		a.mutex.RLock()
		_, known := a.tokens[token]
		a.mutex.RUnlock()

		if !known {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *api) frontend(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("<!doctype html><title>MovieFlix</title><div id=\"root\"></div>"))
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	if a.opts.FailHealth {
		writeError(w, http.StatusInternalServerError, "service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data: map[string]string{
			"status":    "UP",
			"service":   "MovieFlix Backend",
			"version":   "1.0.0",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (a *api) ping(w http.ResponseWriter, r *http.Request) {
	if a.opts.FailHealth {
		http.Error(w, "down", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	password, ok := a.opts.Users[req.Username]
	if !ok || password != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := uuid.NewString()

	a.mutex.Lock()
	a.tokens[token] = req.Username
	a.mutex.Unlock()

	role := "USER"
	if req.Username == "admin" {
		role = "ADMIN"
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Login successful",
		Data: LoginResponse{
			Token:    token,
			Username: req.Username,
			Role:     role,
		},
	})
}

func (a *api) searchMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be a number")
		return
	}

	size, err := intParam(q.Get("size"), 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, "size must be a number")
		return
	}

	list := a.catalogue.search(q.Get("search"), q.Get("sort"), q.Get("order"), page, size)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: list})
}

func (a *api) getMovie(w http.ResponseWriter, r *http.Request) {
	movie, ok := a.catalogue.get(chi.URLParam(r, "imdbID"))
	if !ok {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: movie})
}

func (a *api) movieStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: a.catalogue.stats()})
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg})
}
