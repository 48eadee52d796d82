// Package app assembles the simulator: configuration, logging, the order
// session, the HTTP(S) front end and the gRPC health endpoint.
package app

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"possim/pkg/httpapi"
	"possim/pkg/order"
	"possim/pkg/version"
)

// HealthService is the gRPC health service name reported alongside the
// overall server status.
const HealthService = "possim.OrderSession"

const shutdownTimeout = 5 * time.Second

// Run parses args (without the program name) and serves until ctx is done.
func Run(ctx context.Context, args []string) error {
	return newCommand(os.Stdout).Run(ctx, append([]string{"possim"}, args...))
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "possim",
		Usage:   "POS terminal simulator",
		Version: version.Version(),
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a TOML configuration file"},
			&cli.IntFlag{Name: "port", Usage: "HTTP port when not using --domain", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "domain", Usage: "serve HTTPS on :443 with an ephemeral certificate and redirect :80"},
			&cli.IntFlag{Name: "grpc-port", Usage: "port of the gRPC health endpoint, 0 disables it"},
			&cli.StringFlag{Name: "screen", Usage: `display size, "3.5" or "8"`},
			&cli.StringFlag{Name: "theme", Usage: `"dark" or "light"`},
			&cli.StringFlag{Name: "dataset", Usage: "demo dataset loaded at start and on reset"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "dev", Usage: "human-readable development logging"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFromCommand(cmd)
			if err != nil {
				return err
			}
			return serve(ctx, cfg)
		},
	}
}

// configFromCommand layers explicitly set flags over the loaded file.
func configFromCommand(cmd *cli.Command) (Config, error) {
	cfg, err := LoadConfig(cmd.String("config"))
	if err != nil {
		return Config{}, err
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("domain") {
		cfg.Server.Domain = cmd.String("domain")
	}
	if cmd.IsSet("grpc-port") {
		cfg.Server.GRPCPort = int(cmd.Int("grpc-port"))
	}
	if cmd.IsSet("screen") {
		cfg.Terminal.Screen = cmd.String("screen")
	}
	if cmd.IsSet("theme") {
		cfg.Terminal.Theme = cmd.String("theme")
	}
	if cmd.IsSet("dataset") {
		cfg.Terminal.Dataset = cmd.String("dataset")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("dev") {
		cfg.Log.Development = cmd.Bool("dev")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// serve binds the configured listeners and runs the App on them.
func serve(ctx context.Context, cfg Config) error {
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var grpcLis net.Listener
	if cfg.Server.GRPCPort != 0 {
		grpcLis, err = net.Listen("tcp", cfg.Server.grpcAddress())
		if err != nil {
			return fmt.Errorf("listen for gRPC health: %w", err)
		}
	}

	if cfg.Server.Domain != "" {
		return a.serveDomain(ctx, cfg.Server.Domain, grpcLis)
	}

	lis, err := net.Listen("tcp", cfg.Server.address())
	if err != nil {
		closeListener(grpcLis)
		return fmt.Errorf("listen for HTTP: %w", err)
	}
	logger.Info("terminal simulator is running",
		zap.String("addr", lis.Addr().String()),
		zap.String("version", version.Version()))
	return a.Serve(ctx, lis, grpcLis)
}

// App owns the order session and the servers exposing it.
type App struct {
	logger  *zap.Logger
	session *order.Session
	api     *httpapi.Server
	health  *health.Server
}

// New starts the order session and prepares the HTTP handler.
func New(cfg Config, logger *zap.Logger, opts ...order.Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sessionOpts := append([]order.Option{
		order.WithLogger(logger),
		order.WithDataset(cfg.Terminal.Dataset),
		order.WithJournalSize(cfg.Terminal.JournalSize),
	}, opts...)
	session, err := order.NewSession(sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("start order session: %w", err)
	}
	api, err := httpapi.New(session, cfg.settings(), logger)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("build http server: %w", err)
	}
	return &App{
		logger:  logger,
		session: session,
		api:     api,
		health:  health.NewServer(),
	}, nil
}

// Serve runs the HTTP server on lis and, when grpcLis is non-nil, the gRPC
// health server. It returns after ctx is done and both servers drained, or
// as soon as one of them fails.
func (a *App) Serve(ctx context.Context, lis, grpcLis net.Listener) error {
	server := &http.Server{
		Handler:      a.api.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errs := make(chan error, 2)
	go func() {
		if err := server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server stopped unexpectedly: %w", err)
		}
	}()

	var grpcServer *grpc.Server
	if grpcLis != nil {
		grpcServer = grpc.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, a.health)
		go func() {
			if err := grpcServer.Serve(grpcLis); err != nil {
				errs <- fmt.Errorf("grpc server stopped unexpectedly: %w", err)
			}
		}()
		a.logger.Info("grpc health server started", zap.String("addr", grpcLis.Addr().String()))
	}
	a.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	a.health.SetServingStatus(HealthService, grpc_health_v1.HealthCheckResponse_SERVING)

	var err error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case err = <-errs:
		a.logger.Error("server failed", zap.Error(err))
	}

	a.health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.logger.Warn("http shutdown incomplete", zap.Error(shutdownErr))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	return err
}

// serveDomain serves HTTPS on :443 with an ephemeral certificate for domain
// and redirects plain HTTP on :80.
func (a *App) serveDomain(ctx context.Context, domain string, grpcLis net.Listener) error {
	cert, err := generateCertificate(domain)
	if err != nil {
		closeListener(grpcLis)
		return fmt.Errorf("unable to generate certificate: %w", err)
	}
	lis, err := net.Listen("tcp", ":443")
	if err != nil {
		closeListener(grpcLis)
		return fmt.Errorf("listen for HTTPS: %w", err)
	}
	tlsLis := tls.NewListener(lis, &tls.Config{Certificates: []tls.Certificate{cert}})

	redirect := &http.Server{
		Addr:        ":80",
		Handler:     redirectHandler(domain),
		ReadTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("http redirect server listening", zap.String("addr", redirect.Addr))
		if err := redirect.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("redirect server stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		redirect.Shutdown(shutdownCtx)
	}()

	a.logger.Info("https server starting with an ephemeral certificate", zap.String("domain", domain))
	return a.Serve(ctx, tlsLis, grpcLis)
}

func closeListener(lis net.Listener) {
	if lis != nil {
		lis.Close()
	}
}

func redirectHandler(domain string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://"+domain+r.URL.RequestURI(), http.StatusPermanentRedirect)
	})
}

// Health exposes the health server, e.g. for embedding in another gRPC server.
func (a *App) Health() grpc_health_v1.HealthServer {
	return a.health
}

// Close stops the order session.
func (a *App) Close() {
	a.session.Close()
}
