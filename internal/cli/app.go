package cli

import (
	"context"
	"fmt"

	"storefront/config"
	"storefront/internal/clients"
	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/pkg/db"

	"github.com/sirupsen/logrus"
)

// App holds everything a command needs, built once per invocation.
type App struct {
	Config    *config.Config
	Log       *logrus.Logger
	State     domain.StateRepository
	Creds     *usecase.CredentialStore
	Navigator *notify.LogNavigator
	Notifier  notify.Notifier
	API       *clients.StorefrontAPI
	Session   *usecase.SessionStore
	Cart      *usecase.CartStore
	Guard     *usecase.Guard

	closers []func() error
}

func NewApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Log: logger}

	state, closer, err := newStateRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.State = state
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	app.Creds = usecase.NewCredentialStore(state, cfg.TokenTTL, logger)
	app.Navigator = notify.NewLogNavigator(logger)
	app.Notifier = notify.NewLogNotifier(logger)

	disposition := clients.NewDisposition(app.Creds, app.Notifier, app.Navigator, cfg.LoginPath, logger)
	client, err := clients.NewStandardClient(clients.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout,
	}, app.Creds, disposition, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	app.API = clients.NewStorefrontAPI(client, logger)

	app.Session = usecase.NewSessionStore(ctx, app.API, app.Creds, state, cfg.NameSplitMode(), logger)
	app.Cart = usecase.NewCartStore(ctx, app.API, app.Notifier, state, logger)
	app.Guard = usecase.NewGuard(app.Navigator, cfg.LoginPath)

	logger.Debugf("App initialized: API=%s, state backend=%s", cfg.APIURL, cfg.StateBackend)
	return app, nil
}

// LoginRequested reports whether any call sent the user to the login entry point.
func (a *App) LoginRequested() bool {
	return a.Navigator.Location() == a.Config.LoginPath
}

// Close waits for background calls, then releases the state backend.
func (a *App) Close() {
	if a.Session != nil {
		a.Session.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warnf("Error during shutdown: %v", err)
		}
	}
	a.closers = nil
}

func newStateRepository(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (domain.StateRepository, func() error, error) {
	switch cfg.StateBackend {
	case config.StateBackendMemory:
		return repository.NewMemoryStateRepository(), nil, nil

	case config.StateBackendFile:
		repo, err := repository.NewFileStateRepository(cfg.StateFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open state file: %w", err)
		}
		return repo, nil, nil

	case config.StateBackendPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo, err := repository.NewPostgresStateRepository(ctx, database, logger)
		if err != nil {
			_ = database.Close()
			return nil, nil, err
		}
		logger.Debug("Postgres state backend ready")
		return repo, database.Close, nil

	case config.StateBackendRedis:
		client, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Debug("Redis state backend ready")
		return repository.NewRedisStateRepository(client, logger), client.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
}
