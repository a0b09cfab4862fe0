// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dubbing-backend/internal/auth"
	"dubbing-backend/internal/config"
	"dubbing-backend/internal/handler"
	"dubbing-backend/internal/logging"
	"dubbing-backend/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load .env in dev only; production injects env vars through infra (K8s secrets, etc.)
	if os.Getenv("APP_ENV") != "production" {
		godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Configure(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	d, err := openDeps(context.Background(), cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}

	// ── Services & Handlers ───────────────────────────────────────────────────
	tokens := auth.NewTokens(cfg.AuthSecret, cfg.SessionTTL, cfg.DefaultTargetLang)

	var provider auth.Provider
	if cfg.OAuthEnabled() {
		provider = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)
	} else {
		slog.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set, sign-in disabled")
	}

	sessions := &service.SessionService{
		Users:       d.users,
		Tokens:      tokens,
		DefaultLang: cfg.DefaultTargetLang,
		Log:         logging.Component("sessions"),
	}
	preferences := &service.PreferenceService{
		Users:  d.users,
		Tokens: tokens,
		Log:    logging.Component("preferences"),
	}
	drafts := service.NewDraftService(d.drafts)
	dubs := &service.DubService{
		Drafts:  drafts,
		Client:  d.client,
		Tracker: d.tracker,
		Log:     logging.Component("dub"),
	}
	library := &service.LibraryService{
		Client:  d.client,
		Tracker: d.tracker,
		Log:     logging.Component("library"),
	}

	// After sign-in the browser goes back to the frontend
	afterSignIn := ""
	if len(cfg.AllowedOrigins) > 0 {
		afterSignIn = cfg.AllowedOrigins[0]
	}
	authHandler := &handler.AuthHandler{
		Provider:     provider,
		Sessions:     sessions,
		CookieSecure: cfg.CookieSecure,
		AfterSignIn:  afterSignIn,
		Log:          logging.Component("auth"),
	}
	homeHandler := &handler.HomeHandler{
		Preferences:  preferences,
		CookieSecure: cfg.CookieSecure,
		Log:          logging.Component("home"),
	}
	editorHandler := &handler.EditorHandler{
		Drafts:  drafts,
		Dubs:    dubs,
		Storage: d.storage,
		Log:     logging.Component("editor"),
	}
	libraryHandler := &handler.LibraryHandler{
		Library: library,
		Log:     logging.Component("library"),
	}

	// ── Router ────────────────────────────────────────────────────────────────
	r := mux.NewRouter()

	// Health check, required by load balancers and Kubernetes liveness probes
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		for name, check := range d.checks {
			if err := check(r.Context()); err != nil {
				slog.Warn("health check failed", "dependency", name, "error", err)
				http.Error(w, `{"status":"unhealthy"}`, http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	authRoutes := r.PathPrefix("/api/auth").Subrouter()
	authRoutes.HandleFunc("/signin", authHandler.SignIn).Methods("GET")
	authRoutes.HandleFunc("/callback", authHandler.Callback).Methods("GET")
	authRoutes.HandleFunc("/signout", authHandler.SignOut).Methods("POST")
	authRoutes.Handle("/session", tokens.RequireSession(http.HandlerFunc(authHandler.Session))).Methods("GET")

	// Public: the picker is shown before sign-in
	r.HandleFunc("/api/v1/languages", homeHandler.Languages).Methods("GET")

	// API routes: versioned, every route needs a session
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(tokens.RequireSession)
	api.HandleFunc("/home", homeHandler.Home).Methods("GET")
	api.HandleFunc("/preferences/language", homeHandler.SetLanguage).Methods("PUT")
	api.HandleFunc("/upload", editorHandler.UploadFile).Methods("POST")
	api.HandleFunc("/drafts", editorHandler.CreateDraft).Methods("POST")
	api.HandleFunc("/drafts/{id}", editorHandler.GetDraft).Methods("GET")
	api.HandleFunc("/drafts/{id}", editorHandler.DeleteDraft).Methods("DELETE")
	api.HandleFunc("/drafts/{id}/events", editorHandler.ApplyEvents).Methods("POST")
	api.HandleFunc("/drafts/{id}/dub", editorHandler.RequestDub).Methods("POST")
	api.HandleFunc("/library", libraryHandler.List).Methods("GET")
	api.HandleFunc("/library/{dubbingID}", libraryHandler.Get).Methods("GET")
	api.HandleFunc("/library/{dubbingID}/transcript", libraryHandler.Transcript).Methods("GET")

	// Serve local uploads. With S3 the presigned URL is used instead (this route unused)
	if cfg.StorageType != "s3" {
		r.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", handler.Uploads(cfg.UploadDir)),
		)
	}

	// ── CORS: read from env, not hardcoded ─────────────────────────────────────
	// Dev:        ALLOWED_ORIGINS=http://localhost:3000
	// Production: ALLOWED_ORIGINS=https://yourproduct.com
	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)

	// ── HTTP Server with timeouts ──────────────────────────────────────────────
	// Without timeouts, a slow client can hold a connection open forever.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      cors(r),
		ReadTimeout:  5 * time.Minute, // Uploads of up to 500MB
		WriteTimeout: cfg.UpstreamTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second, // Keep-alive connection timeout
	}

	// ── Graceful Shutdown ──────────────────────────────────────────────────────
	// On SIGTERM we finish in-flight requests and pending preference writes
	// before exiting.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("dubbing service running", "port", cfg.Port, "env", cfg.AppEnv, "dub_api", cfg.DubAPIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutdown signal received, draining requests")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	preferences.Wait()
	d.close(shutdownCtx)
	slog.Info("server stopped cleanly")
}
