package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/pinggolf/loadplan-toolbox/internal/auth"
	"github.com/pinggolf/loadplan-toolbox/internal/config"
	"github.com/pinggolf/loadplan-toolbox/internal/db"
	"github.com/pinggolf/loadplan-toolbox/internal/queue"
	"github.com/pinggolf/loadplan-toolbox/internal/services"
	"github.com/rs/cors"
)

const sessionName = "loadplan-session"

// Server represents the API server.
type Server struct {
	config          *config.Config
	db              *db.Queries
	router          *mux.Router
	sessionStore    sessions.Store
	authManager     *auth.Manager
	natsManager     *queue.Manager
	planningService *services.PlanningService
	exportService   *services.ExportService
	auditService    *services.AuditService
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, queries *db.Queries, natsManager *queue.Manager,
	planningService *services.PlanningService, exportService *services.ExportService,
	auditService *services.AuditService) *Server {

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}

	authManager := auth.NewManager(cfg, sessionStore)

	s := &Server{
		config:          cfg,
		db:              queries,
		router:          mux.NewRouter(),
		sessionStore:    sessionStore,
		authManager:     authManager,
		natsManager:     natsManager,
		planningService: planningService,
		exportService:   exportService,
		auditService:    auditService,
	}

	s.setupRoutes()
	return s
}

// Router returns the configured HTTP router with CORS.
func (s *Server) Router() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.config.CORSAllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: s.config.CORSAllowCredentials,
		MaxAge:           300,
	})

	return c.Handler(s.router)
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	authRouter := api.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/login", s.handleLogin).Methods("POST")
	authRouter.HandleFunc("/callback", s.handleAuthCallback).Methods("GET")
	authRouter.HandleFunc("/logout", s.handleLogout).Methods("POST")
	authRouter.HandleFunc("/status", s.handleAuthStatus).Methods("GET")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(s.authMiddleware)

	protected.HandleFunc("/plans/run", s.handleTriggerPlan).Methods("POST")
	protected.HandleFunc("/plans/{id}", s.handleGetPlan).Methods("GET")
	protected.HandleFunc("/plans/{id}/export.csv", s.handleExportPlanCSV).Methods("GET")
	protected.HandleFunc("/plans/{id}/progress", s.handlePlanProgressSSE).Methods("GET")

	protected.HandleFunc("/orders/import", s.handleImportOrders).Methods("POST")

	mastersRouter := protected.PathPrefix("/masters").Subrouter()
	mastersRouter.HandleFunc("/trucks", s.handleListTrucks).Methods("GET")
	mastersRouter.HandleFunc("/containers", s.handleListContainers).Methods("GET")
	mastersRouter.HandleFunc("/products", s.handleListProducts).Methods("GET")
	mastersRouter.HandleFunc("/holidays", s.handleListHolidays).Methods("GET")
	mastersRouter.HandleFunc("/holidays", s.handleAddHoliday).Methods("POST")
	mastersRouter.HandleFunc("/holidays/{date}", s.handleRemoveHoliday).Methods("DELETE")

	protected.HandleFunc("/audit", s.handleListAudit).Methods("GET")
}

// handleHealth reports liveness without touching auth or the database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
