package server

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/docqa/handlers"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"
)

type Config struct {
	Addr         string
	Domains      []string
	CertCacheDir string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	// WriteTimeout must outlast a model call.
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func SetupRoutes(h *handlers.QAHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Root).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")

	r.HandleFunc("/summarize", h.Summarize).Methods("POST")
	r.HandleFunc("/query", h.Query).Methods("POST")
	r.HandleFunc("/summarize-pdf", h.SummarizePDF).Methods("POST")
	r.HandleFunc("/query-pdf", h.QueryPDF).Methods("POST")

	return r
}

// SetupNegroni wraps the router with recovery, request ids, CORS and access logging.
func SetupNegroni(r http.Handler, logger *slog.Logger) *negroni.Negroni {
	n := negroni.New()

	recovery := negroni.NewRecovery()
	recovery.PrintStack = false
	recovery.Logger = slog.NewLogLogger(logger.Handler(), slog.LevelError)
	recovery.Formatter = &jsonPanicFormatter{}
	n.Use(recovery)
	n.Use(negroni.HandlerFunc(RequestID))
	n.Use(negroni.HandlerFunc(CORS))
	n.Use(NewAccessLogger(logger))

	n.UseHandler(r)
	return n
}

// ServeProduction serves TLS on :443 with certificates from Let's Encrypt and
// redirects plain HTTP on :80.
func ServeProduction(n http.Handler, cfg Config, logger *slog.Logger) error {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
		Cache:      autocert.DirCache(cfg.CertCacheDir),
	}

	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		if err := srv.ListenAndServe(); err != nil {
			logger.Error("HTTP challenge server stopped", slog.String("error", err.Error()))
		}
	}()

	tlsConfig := &tls.Config{
		GetCertificate:   autocertManager.GetCertificate,
		CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":443",
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Starting production server", slog.Any("domains", cfg.Domains))
	return srv.ListenAndServeTLS("", "")
}

// ServeDevelopment serves plain HTTP on cfg.Addr until ctx is cancelled, then drains
// in-flight requests.
func ServeDevelopment(ctx context.Context, n http.Handler, cfg Config, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      n,
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting development server", slog.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
