package cli

import (
	"fmt"
	"os"

	"github.com/kleincho/humint/internal/api"
	"github.com/kleincho/humint/internal/auth"
	"github.com/kleincho/humint/internal/chat"
	"github.com/kleincho/humint/internal/config"
	"github.com/kleincho/humint/internal/db"
	"github.com/kleincho/humint/internal/logging"
	"github.com/kleincho/humint/internal/persona"
	"github.com/kleincho/humint/internal/threads"
	"github.com/kleincho/humint/internal/tui"
)

// App holds the fully wired client. Everything hangs off the config and
// the sqlite database; Close releases what buildApp opened.
type App struct {
	Config     *config.Config
	DB         *db.DB
	API        *api.Client
	Personas   *persona.Store
	Auth       *auth.Store
	Threads    *threads.Client
	Controller *chat.Controller
	Relay      *tui.Relay

	logFile *os.File
}

func buildApp(configPath string) (*App, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to prepare directories: %w", err)
	}

	logFile, err := initLogging(cfg)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(db.Options{
		Path:          cfg.DatabasePath(),
		BusyTimeoutMs: cfg.Database.BusyTimeoutMs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	apiClient, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	kv := db.NewKVRepository(database)
	personas := persona.New(persona.NewKVAdapter(kv))
	authStore := auth.NewStore(kv)

	threadsClient := threads.NewClient(
		apiClient,
		db.NewThreadRepository(database),
		db.NewFeedbackRepository(database),
		authStore,
	)

	relay := tui.NewRelay()
	controller := chat.NewController(threadsClient, personas, relay, cfg.Chat.DefaultField)
	authStore.Subscribe(controller.HandleIdentityChange)

	return &App{
		Config:     cfg,
		DB:         database,
		API:        apiClient,
		Personas:   personas,
		Auth:       authStore,
		Threads:    threadsClient,
		Controller: controller,
		Relay:      relay,
		logFile:    logFile,
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.LoadDefault()
}

// initLogging points the global logger at the configured sink. The TUI
// owns the terminal, so logs default to the log file when one is set.
func initLogging(cfg *config.Config) (*os.File, error) {
	logCfg := logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		EnableCaller: cfg.Logging.EnableCaller,
	}

	var logFile *os.File
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logCfg.Output = f
		logFile = f
	}

	logging.Init(logCfg)
	return logFile, nil
}
