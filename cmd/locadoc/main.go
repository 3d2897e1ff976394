package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/locadoc/locadoc/internal/config"
	"github.com/locadoc/locadoc/internal/document"
	"github.com/locadoc/locadoc/internal/notify"
	"github.com/locadoc/locadoc/internal/pdf/fill"
	"github.com/locadoc/locadoc/internal/server"
	"github.com/locadoc/locadoc/internal/storage"
	"github.com/locadoc/locadoc/internal/store"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func setupLogging(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}
	if cfg.IsDebug() {
		log.Debug().Str("config", cfg.String()).Msg("starting")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer records.Close()
	if err := records.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	blobs, err := storage.New(cfg.StorageDir, cfg.SignSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("open blob storage")
	}

	mailer := notify.NewMailer(notify.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, log)

	engine := fill.NewEngine(cfg.FillOrder, log)
	service := document.NewService(records, blobs, mailer, engine, cfg.MaxTemplateSize, log)
	srv := server.New(cfg.Address(), service, blobs, log)

	runServer(ctx, cancel, srv, log)
}

// runServer handles execution with signal handling for graceful shutdown
func runServer(ctx context.Context, cancel context.CancelFunc, srv *server.Server, log zerolog.Logger) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()
		if err := <-serverErrCh; err != nil {
			log.Error().Err(err).Msg("server shutdown with error")
			os.Exit(1)
		}
	case err := <-serverErrCh:
		if err != nil {
			log.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}

	log.Info().Msg("server stopped")
}

func printVersion() {
	fmt.Printf("locadoc %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
	fmt.Printf("  Go version: %s\n", runtime.Version())
	fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
