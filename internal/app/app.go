package app

import (
	"context"
	"fmt"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	r "github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/andy/jobclock/internal/config"
	"github.com/andy/jobclock/internal/crypto"
	"github.com/andy/jobclock/internal/db"
	"github.com/andy/jobclock/internal/draft"
	"github.com/andy/jobclock/internal/logging"
	"github.com/andy/jobclock/internal/notify"
	"github.com/andy/jobclock/internal/repository"
	"github.com/andy/jobclock/internal/service"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	Log    *zap.Logger

	// Exactly one of DB and Pool is set
	DB    *db.DB
	Pool  *pgxpool.Pool
	Redis *r.Client

	JobRepo   repository.JobRepository
	EntryRepo repository.TimeEntryRepository
	Notifier  notify.Notifier

	JobService   service.JobService
	TimerService service.TimerService

	DraftStore *draft.Store
	Drafts     *draft.Timer
}

// New loads the default config and wires everything from it
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.UsePostgres() {
		a.Pool, err = db.OpenPostgres(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			return nil, err
		}
		pg := repository.NewPgJobRepo(a.Pool)
		a.JobRepo, a.EntryRepo = pg, pg
	} else {
		if err := a.openSQLite(); err != nil {
			return nil, err
		}
		a.JobRepo = repository.NewJobRepo(a.DB)
		a.EntryRepo = repository.NewEntryRepo(a.DB)
	}

	a.Notifier = notify.Nop{}
	if cfg.Redis.Addr != "" {
		a.Redis = r.NewClient(&r.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if pingErr := a.Redis.Ping(ctx).Err(); pingErr != nil {
			// Clients still converge by polling
			log.Warn("redis unavailable, change notifications disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(pingErr))
			a.Redis.Close()
			a.Redis = nil
		} else {
			a.Notifier = notify.NewRedis(a.Redis)
		}
	}

	a.JobService = service.NewJobService(a.JobRepo, log)
	a.TimerService = service.NewTimerService(a.JobRepo, a.EntryRepo, a.Notifier, log)

	a.DraftStore = draft.NewStore(cfg.Draft.Dir)
	a.Drafts = draft.NewTimer(a.DraftStore, &draftCommitter{timers: a.TimerService, ownerID: cfg.User.ID})

	return a, nil
}

func (a *App) openSQLite() error {
	password := ""
	if a.Config.Database.Encrypt {
		var err error
		password, err = databasePassword()
		if err != nil {
			return err
		}
	}

	database, err := db.Open(a.Config.Database.Path, password)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.DB = database

	if err := database.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// UserID is the identity the CLI and TUI act as
func (a *App) UserID() string {
	return a.Config.User.ID
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	var err error
	if a.Redis != nil {
		err = multierr.Append(err, a.Redis.Close())
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.DB != nil {
		err = multierr.Append(err, a.DB.Close())
	}
	if a.Log != nil {
		// Sync fails on terminals; nothing useful to report
		_ = a.Log.Sync()
	}
	return err
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

// draftCommitter commits local draft sessions as the configured user
type draftCommitter struct {
	timers  service.TimerService
	ownerID string
}

func (c *draftCommitter) CommitDraft(ctx context.Context, jobID, sessionID string, seconds int64) error {
	_, err := c.timers.CommitDraft(ctx, c.ownerID, jobID, sessionID, seconds)
	return err
}

func databasePassword() (string, error) {
	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err == nil {
		return password, nil
	}

	fmt.Println("Setting up database encryption for the first time...")
	password, err = promptForPassword()
	if err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}
	if err := keyring.SetKey(password); err != nil {
		return "", fmt.Errorf("failed to store encryption key: %w", err)
	}
	return password, nil
}

// promptForPassword asks for a new database password on first run
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your job timers will be stored in an encrypted database.")
	fmt.Println("The password is kept in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured")
	fmt.Println()

	return string(password), nil
}
