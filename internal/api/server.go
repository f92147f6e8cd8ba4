package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/logger"
	"github.com/julianstephens/alarmist/internal/models"
	"github.com/julianstephens/alarmist/internal/storage"
)

const maxBodyBytes = 1 << 20

type Server struct {
	store   storage.Provider
	origins []string
	now     func() time.Time
}

func NewServer(store storage.Provider, allowedOrigins []string) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &Server{store: store, origins: allowedOrigins, now: time.Now}
}

// SelectStore initializes primary and falls back to the flat-file store when
// the database cannot be reached.
func SelectStore(primary storage.Provider, fallback *storage.JSONStore) (storage.Provider, error) {
	if primary != nil {
		err := primary.Init()
		if err == nil {
			logger.Info("Using database storage", "kind", primary.Kind())
			return primary, nil
		}
		logger.Warn("Database unavailable, falling back to file storage", "kind", primary.Kind(), "error", err)
		_ = primary.Close()
	}
	if err := fallback.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	return fallback, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/alarms", s.getAlarms)
			r.Put("/alarms", s.putAlarms)
			r.Put("/stats", s.putStats)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, MessageResponse{Error: "Route not found"})
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "addr", addr, "storage", s.store.Kind())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Success:   true,
		Message:   "alarmist API is running",
		Timestamp: s.now().UTC(),
		Storage:   s.store.Kind(),
	})
}

func (s *Server) getAlarms(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	alarms, err := s.store.LoadAlarms(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to load alarms", "user", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Error: "Failed to load alarms"})
		return
	}
	if alarms == nil {
		alarms = []models.Alarm{}
	}
	writeJSON(w, http.StatusOK, AlarmsResponse{Success: true, Alarms: alarms})
}

func (s *Server) putAlarms(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	var req SaveAlarmsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Alarms == nil {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Error: "Alarms must be an array"})
		return
	}
	for i := range req.Alarms {
		if err := req.Alarms[i].Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, MessageResponse{Error: fmt.Sprintf("alarm %d: %v", i, err)})
			return
		}
	}

	if err := s.store.SaveAlarms(r.Context(), userID, req.Alarms); err != nil {
		logger.Error("Failed to save alarms", "user", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Error: "Failed to save alarms"})
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Alarms saved successfully"})
}

func (s *Server) putStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	var req StatsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Error: "Invalid stats payload"})
		return
	}
	if req.AlarmCount < 0 || req.TotalAlarms < 0 || req.AlarmCount > req.TotalAlarms {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Error: "Invalid stats payload"})
		return
	}
	stats := models.UserStats{AlarmCount: req.AlarmCount, TotalAlarms: req.TotalAlarms, UpdatedAt: s.now().UTC()}
	if err := s.store.SaveStats(r.Context(), userID, stats); err != nil {
		logger.Error("Failed to save stats", "user", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Error: "Failed to update stats"})
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Stats updated successfully"})
}

func userParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Error: apperrors.Validation("id", "user id is required").Error()})
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Failed to write response", "error", err)
	}
}
