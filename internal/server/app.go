// Package server wires the account service together: configuration,
// logging, storage, mail notifications, tracing and the gRPC endpoint. It
// also handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/shopaccounts/internal/cryptox"
	"github.com/dmitrijs2005/shopaccounts/internal/logging"
	"github.com/dmitrijs2005/shopaccounts/internal/server/config"
	"github.com/dmitrijs2005/shopaccounts/internal/server/notify"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/mailtemplates"
	"github.com/dmitrijs2005/shopaccounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/shopaccounts/internal/server/services"
	"github.com/dmitrijs2005/shopaccounts/internal/telemetry"

	gs "github.com/dmitrijs2005/shopaccounts/internal/server/grpc"
)

const defaultShutdownTimeout = 5 * time.Second

// seams for tests
var (
	openDB         = repomanager.OpenDB
	setupTelemetry = telemetry.Setup
	newS3Client    = func(ctx context.Context, opts mailtemplates.S3Options) (mailtemplates.ObjectGetter, error) {
		return mailtemplates.NewS3Client(ctx, opts)
	}
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	accounts *services.AccountService
	shutdown telemetry.ShutdownFunc
}

// NewApp builds every component from c. The returned App owns the database
// handle and the tracer provider.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	hasher, err := cryptox.NewPasswordHasher(c.PasswordHashScheme)
	if err != nil {
		return nil, err
	}

	shutdown, err := setupTelemetry(ctx, c.ServiceName, c.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if c.RunMigrations {
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			_ = shutdown(ctx)
			return nil, fmt.Errorf("migrations error: %w", err)
		}
	}

	templates, err := templateSource(ctx, c, rm, db)
	if err != nil {
		_ = db.Close()
		_ = shutdown(ctx)
		return nil, err
	}

	sender, err := notify.NewSMTPSender(notify.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUsername,
		Password: c.SMTPPassword,
		From:     c.SMTPFrom,
		Timeout:  c.SMTPTimeout,
	})
	if err != nil {
		_ = db.Close()
		_ = shutdown(ctx)
		return nil, err
	}

	notifier := notify.NewNotifier(templates, notify.TextRenderer{}, sender, "")
	accounts := services.NewAccountService(db, rm, hasher, notifier, logger)

	return &App{config: c, logger: logger, db: db, accounts: accounts, shutdown: shutdown}, nil
}

func templateSource(ctx context.Context, c *config.Config, rm repomanager.RepositoryManager, db *sql.DB) (notify.TemplateSource, error) {
	switch c.MailTemplateSource {
	case "", config.TemplateSourceDB:
		return rm.MailTemplates(db), nil
	case config.TemplateSourceS3:
		client, err := newS3Client(ctx, mailtemplates.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
			Prefix:       c.S3Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		return mailtemplates.NewS3Repository(client, c.S3Bucket, c.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown mail template source %q", c.MailTemplateSource)
	}
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the database and flushes traces.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := app.initSignalHandler(ctx)
	defer cancel()

	app.logger.Info(ctx, "Starting app...")

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accounts, app.config.SecretKey)
	runErr := s.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", runErr)
	}

	app.close()
	return runErr
}

func (app *App) close() {
	timeout := app.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.shutdown(ctx); err != nil {
		app.logger.Warn(ctx, "telemetry shutdown", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
