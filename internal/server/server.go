package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"railvoice-backend/internal/config"
	"railvoice-backend/internal/db"
	"railvoice-backend/internal/dialogue"
	"railvoice-backend/internal/session"
	"railvoice-backend/internal/store"
	"railvoice-backend/internal/types"
)

type Server struct {
	router   *chi.Mux
	cfg      config.Config
	sessions *session.Store
	engine   *dialogue.Engine
	bookings store.Store
	database *db.DB
}

func NewServer(cfg config.Config) (*Server, error) {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Session-Id", "X-User-Id"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true, // Enable credentials for cookies
		MaxAge:           300,
	}))

	var database *db.DB
	var bookings store.Store
	if cfg.DatabaseURL != "" {
		var err error
		database, err = db.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Println("database connection established")

		if err := database.RunMigrations(cfg.MigrationsDir); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		bookings = store.NewPostgres(database)
	} else {
		log.Println("warning: DB_URL not provided, using in-memory catalog")
		mem := store.NewMemory()
		if cfg.SeedDemoData {
			mem.SeedDemo()
		}
		bookings = mem
	}

	s := &Server{
		router:   r,
		cfg:      cfg,
		sessions: session.NewStore(cfg.SessionTTL),
		engine:   dialogue.New(bookings),
		bookings: bookings,
		database: database,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/voice/process-command", s.handleProcessCommand)
	s.router.Get("/api/voice/stations", s.handleStations)
}

func (s *Server) Router() http.Handler { return s.router }

// Close releases the session janitor and the database pool.
func (s *Server) Close() {
	s.sessions.Close()
	if s.database != nil {
		s.database.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "storage": "memory"}
	if s.database != nil {
		status["storage"] = "postgres"
		if err := s.database.HealthCheck(); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

// handleProcessCommand runs one dialogue turn. Engine panics degrade to an
// apology reply; the transport still answers 200 with status "success".
func (s *Server) handleProcessCommand(w http.ResponseWriter, r *http.Request) {
	var req types.VoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sid := getOrCreateSessionID(r, w, req.SessionID)
	userID := getUserID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sess, release := s.sessions.Acquire(sid, userID)
	reply := s.runTurn(ctx, sess, req.Command)
	release()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(types.VoiceResponse{
		Status:    "success",
		SessionID: sid,
		Command:   req.Command,
		Response:  reply.Text,
		Speak:     reply.Speech,
		Action:    reply.Action,
		Data:      reply.Data,
	})
}

func (s *Server) runTurn(ctx context.Context, sess *session.Session, command string) (reply dialogue.Reply) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[server] recovered panic in dialogue turn: %v", rec)
			sess.Reset()
			reply = dialogue.Apology()
		}
	}()
	return s.engine.Handle(ctx, sess, command)
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	stations, err := s.bookings.FindStations(r.Context(), term)
	if err != nil {
		log.Printf("[server] station lookup failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "station lookup failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"stations": stations})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}

func newSessionID() string {
	return uuid.NewString()
}

// getSessionID retrieves the session ID from cookie, header, body or query.
func getSessionID(r *http.Request, fromBody string) string {
	// Try cookie first
	if cookie, err := GetSessionCookie(r); err == nil && cookie != "" {
		return cookie
	}
	// Fall back to header
	if sid := r.Header.Get("X-Session-Id"); sid != "" {
		return sid
	}
	// Fall back to the request body
	if fromBody != "" {
		return fromBody
	}
	// Fall back to query parameter
	if sid := r.URL.Query().Get("sessionId"); sid != "" {
		return sid
	}
	return ""
}

// getOrCreateSessionID gets existing session ID or creates a new one, setting the cookie
func getOrCreateSessionID(r *http.Request, w http.ResponseWriter, fromBody string) string {
	sid := getSessionID(r, fromBody)
	if sid == "" {
		sid = newSessionID()
		log.Printf("[session] creating new session: %s for endpoint: %s", sid, r.URL.Path)
	}
	SetSessionCookie(w, sid)
	return sid
}

// getUserID reads the authenticated user from the X-User-Id header. Identity
// is established upstream; an absent or malformed header maps to the demo user.
func getUserID(r *http.Request) int {
	if v := strings.TrimSpace(r.Header.Get("X-User-Id")); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			return id
		}
	}
	return 1
}
