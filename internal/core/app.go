package core

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/suiren/x-bookmarker/internal/assets"
	"github.com/suiren/x-bookmarker/internal/config"
	"github.com/suiren/x-bookmarker/internal/db"
	"github.com/suiren/x-bookmarker/internal/jobs"
	"github.com/suiren/x-bookmarker/internal/websocket"
)

const Version = "1.0.0"

// App holds the core components of the application shared by the server,
// the job scheduler and the sync runner. It implements jobs.JobContext.
type App struct {
	cfg        *config.Config
	db         *sql.DB
	wsHub      *websocket.Hub
	jobManager *jobs.Manager
	version    string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New() (*App, error) {
	// Load configuration from config.yml
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize the database connection
	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		// We can't proceed without a valid database schema.
		// Close the DB connection before failing.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	app := NewApp(cfg, database, hub, Version)
	log.Println("Core application setup complete.")
	return app, nil
}

// NewApp assembles an App from already-initialized parts and registers the
// built-in maintenance jobs. Tests use it with an in-memory database.
func NewApp(cfg *config.Config, database *sql.DB, hub *websocket.Hub, version string) *App {
	app := &App{
		cfg:     cfg,
		db:      database,
		wsHub:   hub,
		version: version,
	}
	app.jobManager = jobs.NewManager(app)
	app.jobManager.Register("session-purge", "Session Purge", jobs.PurgeSessions)
	app.jobManager.Register("favicon-refresh", "Favicon Refresh", jobs.RefreshFavicons)
	return app
}

func (a *App) DB() *sql.DB               { return a.db }
func (a *App) Config() *config.Config    { return a.cfg }
func (a *App) WsHub() *websocket.Hub     { return a.wsHub }
func (a *App) JobManager() *jobs.Manager { return a.jobManager }
func (a *App) Version() string           { return a.version }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
