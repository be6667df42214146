// Package server assembles the catalog HTTP server.
package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/auth"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/config"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/handler"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/middleware"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/model"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/store"
)

// Server serves the catalog REST API, the change feed and metrics.
type Server struct {
	httpServer    *http.Server
	router        *mux.Router
	config        *config.Config
	logger        *zap.Logger
	authenticator auth.Authenticator
	wsHandler     *handler.WebSocketHandler
	initErr       error
}

// New creates a Server over bookStore. A nil authenticator disables
// authentication. TLS setup errors are reported by Start.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	bookStore store.Store,
	authenticator auth.Authenticator,
) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		config:        cfg,
		logger:        logger,
		authenticator: authenticator,
	}

	s.setupMiddleware()
	s.setupRoutes(bookStore)
	s.initErr = s.setupHTTPServer()

	return s
}

func (s *Server) setupMiddleware() {
	allowedMethods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowedHeaders := []string{
		"Content-Type",
		"Authorization",
		auth.APIKeyHeader,
		middleware.RequestIDHeader,
	}

	chain := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
	}
	if s.config.MetricsEnabled {
		chain = append(chain, middleware.Metrics())
	}
	chain = append(chain,
		middleware.Logging(s.logger),
		middleware.CORS([]string{"*"}, allowedMethods, allowedHeaders),
	)
	if s.authenticator != nil {
		chain = append(chain, middleware.Auth(s.authenticator, s.config.AuthPublicReads, s.logger))
	}

	for _, m := range chain {
		s.router.Use(mux.MiddlewareFunc(m))
	}
}

func (s *Server) setupRoutes(bookStore store.Store) {
	handler.NewRESTHandler(bookStore, s.logger).RegisterRoutes(s.router)

	s.wsHandler = handler.NewWebSocketHandler(s.logger)
	s.wsHandler.RegisterRoutes(s.router)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	// mux runs middleware only for matched routes; this lets CORS answer
	// preflights for every path. A MatcherFunc rather than Methods keeps
	// mux from turning unknown paths into 405.
	s.router.MatcherFunc(isPreflight).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func isPreflight(r *http.Request, _ *mux.RouteMatch) bool {
	return r.Method == http.MethodOptions
}

func (s *Server) setupHTTPServer() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	if !s.config.TLSEnabled {
		return nil
	}

	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return err
	}
	s.httpServer.TLSConfig = tlsConfig

	return nil
}

// buildTLSConfig loads the server key pair and, when configured, the CA
// pool used to verify client certificates.
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(s.config.TLSCertPath, s.config.TLSKeyPath)
	if err != nil {
		return nil, fmt.Errorf("loading TLS key pair: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		ClientAuth:   clientAuthType(s.config.TLSClientAuthOrDefault()),
	}

	if s.config.TLSCAPath != "" {
		pem, err := os.ReadFile(s.config.TLSCAPath)
		if err != nil {
			return nil, fmt.Errorf("reading TLS CA: %w", err)
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("TLS CA file contains no certificates")
		}
		tlsConfig.ClientCAs = pool
	}

	return tlsConfig, nil
}

// clientAuthType maps the configured mode. Presented certificates are
// always verified because the mTLS authenticator trusts the handshake.
func clientAuthType(mode string) tls.ClientAuthType {
	switch mode {
	case "require":
		return tls.RequireAndVerifyClientCert
	case "request":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.NoClientCert
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	if s.initErr != nil {
		return fmt.Errorf("server initialization: %w", s.initErr)
	}

	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("tls", s.config.TLSEnabled),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
		zap.Bool("auth_enabled", s.authenticator != nil),
	)

	var err error
	if s.config.TLSEnabled {
		err = s.httpServer.ListenAndServeTLS("", "")
	} else {
		err = s.httpServer.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Publish forwards a catalog event to the websocket feed.
func (s *Server) Publish(e model.CatalogEvent) {
	s.wsHandler.Publish(e)
}

// Shutdown closes feed connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	s.wsHandler.CloseAllConnections()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Router returns the server's router.
func (s *Server) Router() *mux.Router {
	return s.router
}
