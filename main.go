package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CrowderSoup/taskdesk/controller"
	"github.com/CrowderSoup/taskdesk/database"
	"github.com/CrowderSoup/taskdesk/handlers"
	"github.com/CrowderSoup/taskdesk/rpc"
	"github.com/CrowderSoup/taskdesk/services"
	"github.com/CrowderSoup/taskdesk/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
	"gopkg.in/yaml.v3"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var Version = "dev"

func main() {
	// Load environment variables from .env file
	if err := LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "taskdesk",
		Short:         "Task board served as server-driven pages over a note service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("env", envLocal, "environment: local, dev or prod")
	v.BindPFlag("env", rootCmd.PersistentFlags().Lookup("env"))

	load := func() (*Config, *logrus.Entry, func() error, error) {
		cfg, err := LoadConfig(v, configPath)
		if err != nil {
			return nil, nil, nil, err
		}
		log, closeLog, err := setupLogger(cfg.Env, cfg.LogFile)
		if err != nil {
			return nil, nil, nil, err
		}
		return cfg, log, closeLog, nil
	}

	rootCmd.AddCommand(serveCmd(v, load))
	rootCmd.AddCommand(backendCmd(v, load))
	rootCmd.AddCommand(configCmd(v, &configPath))
	return rootCmd
}

type loader func() (*Config, *logrus.Entry, func() error, error)

func serveCmd(v *viper.Viper, load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := load()
			if err != nil {
				return err
			}
			defer closeLog()
			return runServe(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().String("addr", ":3001", "HTTP listen address")
	cmd.Flags().String("rpc-addr", "localhost:50051", "note service address")
	cmd.Flags().String("db", "./taskdesk.db", "sqlite file for browser storage")
	v.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))
	v.BindPFlag("rpc.addr", cmd.Flags().Lookup("rpc-addr"))
	v.BindPFlag("storage.path", cmd.Flags().Lookup("db"))

	return cmd
}

func backendCmd(v *viper.Viper, load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Run an in-memory note service for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := load()
			if err != nil {
				return err
			}
			defer closeLog()
			return runBackend(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().String("addr", ":50051", "gRPC listen address")
	v.BindPFlag("backend.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func configCmd(v *viper.Viper, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(v, *configPath)
			if err != nil {
				return err
			}
			return writeConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

// writeConfig prints cfg as YAML with the storage secret masked.
func writeConfig(w io.Writer, cfg *Config) error {
	masked := *cfg
	if masked.Storage.Secret != "" {
		masked.Storage.Secret = "********"
	}
	data, err := yaml.Marshal(&masked)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func runServe(ctx context.Context, cfg *Config, log *logrus.Entry) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	log.WithField("config", cfg.HTTP).Info("application start")

	// Initialize database
	db, err := database.InitDB(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	api, err := rpc.Dial(cfg.RPC.Addr)
	if err != nil {
		return err
	}
	defer api.Close()

	// Initialize services
	storage := database.NewStorageService(db)
	keys := services.NewStorageKeys(cfg.Storage.Secret, cfg.Storage.TokenTTL)
	if cfg.Storage.Secret == "" {
		log.Warn("storage.secret is not set, using the built-in development secret")
	}

	// Initialize WebSocket hub
	hub := services.NewHub(log)
	go hub.Run(ctx)

	options := controller.Options{
		FeedbackDuration: cfg.UI.FeedbackDuration,
		RedirectDelay:    cfg.UI.RedirectDelay,
		CallTimeout:      cfg.RPC.CallTimeout,
	}
	router := handlers.NewRouter(handlers.Routes{
		Pages: handlers.NewPageHandler(log),
		Tabs: handlers.NewTabHandler(hub, api, func(partition string) session.Storage {
			return storage.Partition(partition)
		}, options, log),
		Storage:        handlers.NewStorageMiddleware(keys, cfg.Storage.TokenTTL, log),
		Health:         handlers.Health(hub),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTP.Addr).Info("server starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	log.Info("application stopped")
	return nil
}

func runBackend(ctx context.Context, cfg *Config, log *logrus.Entry) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	lis, err := net.Listen("tcp", cfg.Backend.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Backend.Addr, err)
	}

	s := grpc.NewServer(grpc.UnaryInterceptor(rpc.LoggingInterceptor(log)))
	rpc.Register(s, rpc.NewMemoryBackend())
	reflection.Register(s)

	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	log.WithField("addr", lis.Addr().String()).Info("note service listening")
	if err := s.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	log.Info("note service stopped")
	return nil
}

func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// setupLogger builds the logger for env. The returned func closes the log
// file, if one was opened.
func setupLogger(env, logFilePath string) (*logrus.Entry, func() error, error) {
	log := logrus.New()

	var out io.Writer = os.Stdout
	closeLog := func() error { return nil }
	if logFilePath != "" {
		logFile, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = logFile
		closeLog = logFile.Close
	}
	log.SetOutput(out)

	switch env {
	case envLocal:
		log.SetFormatter(&logrus.TextFormatter{
			ForceColors:   logFilePath == "",
			FullTimestamp: true,
		})
		log.SetLevel(logrus.DebugLevel)
	case envDev:
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
		log.SetLevel(logrus.InfoLevel)
	case envProd:
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.WarnLevel)
	default:
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
		log.SetLevel(logrus.WarnLevel)
	}

	return logrus.NewEntry(log), closeLog, nil
}
