package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	handlers "github.com/de-tools/ledger-atlas/pkg/handlers/ledger"
	ledgeratlasmiddleware "github.com/de-tools/ledger-atlas/pkg/server/middleware"
	"github.com/de-tools/ledger-atlas/pkg/services/analysis"
	"github.com/de-tools/ledger-atlas/pkg/services/record"
	"github.com/de-tools/ledger-atlas/pkg/store/sqlite/history"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Engine   *analysis.Engine
	History  history.Store
	Recorder *record.Recorder

	// ExternalAnalyzer, when set, handles uploads instead of the in-process
	// engine. Used to mount a bridge to an external analyzer process.
	ExternalAnalyzer http.Handler
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	ledgerHandler := handlers.NewHandler(
		config.Dependencies.Engine,
		config.Dependencies.History,
		config.Dependencies.Recorder,
	)

	router := chi.NewRouter()

	router.Use(ledgeratlasmiddleware.Logger(&logger))
	router.Use(chimiddleware.Recoverer)
	if len(config.AllowedOrigins) > 0 {
		router.Use(ledgeratlasmiddleware.CORS(config.AllowedOrigins))
	}

	router.Get("/", Dashboard(&logger))
	if config.Dependencies.ExternalAnalyzer != nil {
		router.Method(http.MethodPost, "/upload-csv", config.Dependencies.ExternalAnalyzer)
	} else {
		router.Post("/upload-csv", ledgerHandler.UploadCSV)
	}
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/analyses", ledgerHandler.ListAnalyses)
		r.Get("/analyses/{id}", ledgerHandler.GetAnalysis)
	})

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: shutdownTimeout,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

// Router exposes the configured mux, mostly for tests.
func (w *WebAPI) Router() *chi.Mux {
	return w.router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
