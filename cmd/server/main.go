package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yarikttyui/pinkmessik/config"
	"github.com/Yarikttyui/pinkmessik/internal/auth"
	"github.com/Yarikttyui/pinkmessik/internal/db"
	"github.com/Yarikttyui/pinkmessik/internal/handlers"
	"github.com/Yarikttyui/pinkmessik/internal/hub"
	"github.com/Yarikttyui/pinkmessik/internal/middlewares"
	"github.com/Yarikttyui/pinkmessik/internal/repository"
	"github.com/Yarikttyui/pinkmessik/pkg/log"

	"github.com/google/uuid"
	muxHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.InitLogger()
	cfg := config.LoadConfig()
	db.InitDB(cfg)

	store := repository.NewChatStore(db.DB)
	h := hub.New(store, hub.Options{
		TypingTTL:    cfg.TypingTTL,
		WriteQueue:   cfg.WriteQueueSize,
		PingInterval: cfg.PingInterval,
	})

	// Router & CORS
	r := mux.NewRouter()
	cors := muxHandlers.CORS(
		muxHandlers.AllowedOrigins([]string{"http://localhost:5173"}),
		muxHandlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		muxHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", middlewares.InternalKeyHeader}),
	)
	r.Use(middlewares.PrometheusMetricsMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Socket endpoint: token via Authorization bearer or ?token= (browsers
	// cannot set headers on websocket upgrades).
	r.HandleFunc("/ws", hub.Handler(h, whoAmI(cfg.JWTSecret)))

	// Loopback ingest for the CRUD layer.
	internalR := r.PathPrefix("/internal").Subrouter()
	internalR.Use(middlewares.InternalKeyMiddleware(cfg.InternalAPIKey))
	handlers.RegisterInternalRoutes(internalR, h)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: cors(r),
	}

	go func() {
		log.Logger.Info().Msgf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Logger.Info().Msg("Shutting down")
	h.CloseAll()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Logger.Error().Err(err).Msg("shutdown failed")
	}
}

func whoAmI(secret string) func(*http.Request) (uuid.UUID, error) {
	return func(r *http.Request) (uuid.UUID, error) {
		token := r.URL.Query().Get("token")
		if token == "" {
			if ah := r.Header.Get("Authorization"); len(ah) > 7 && ah[:7] == "Bearer " {
				token = ah[7:]
			}
		}
		return auth.ParseUserToken(token, secret)
	}
}
