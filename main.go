package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suiren/x-bookmarker/internal/api"
	"github.com/suiren/x-bookmarker/internal/auth"
	"github.com/suiren/x-bookmarker/internal/backup"
	"github.com/suiren/x-bookmarker/internal/core"
	"github.com/suiren/x-bookmarker/internal/jobs"
	"github.com/suiren/x-bookmarker/internal/store"
	syncengine "github.com/suiren/x-bookmarker/internal/sync"
	"github.com/suiren/x-bookmarker/internal/sync/sources"
	"github.com/suiren/x-bookmarker/internal/sync/sources/jsonfeed"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New()
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	// --- First User Provisioning ---
	st := store.New(app.DB())
	userCount, err := st.CountUsers()
	if err != nil {
		log.Fatalf("Could not check user count: %v", err)
	}
	if userCount == 0 {
		log.Println("No users found. Creating default admin account.")
		password := generateRandomPassword(12)
		passwordHash, _ := auth.HashPassword(password)
		_, err := st.CreateUser("admin", passwordHash, "admin")
		if err != nil {
			log.Fatalf("Could not create default admin user: %v", err)
		}
		log.Println("==================================================")
		log.Println("Default admin user created.")
		log.Printf("Username: admin")
		log.Printf("Password: %s", password)
		log.Println("Please change this password immediately.")
		log.Println("==================================================")
	}

	// Register bookmark sources. The JSON feed source is only available
	// when an endpoint is configured.
	if feedURL := app.Config().Sync.FeedURL; feedURL != "" {
		sources.Register(jsonfeed.New(feedURL))
	}

	// The sync-all task runs one sync job per user against the configured
	// default source. It is registered here because it depends on the sync
	// runner, which the jobs package does not know about.
	app.JobManager().Register("sync-all", "Sync All Users", func(ctx jobs.JobContext) {
		sourceID := ctx.Config().Sync.Source
		source, ok := sources.Get(sourceID)
		if !ok {
			log.Printf("sync-all: no source registered under %q, skipping", sourceID)
			return
		}
		runner := syncengine.NewRunner(ctx.DB(), ctx.WsHub(), ctx.Config().Sync.PageSize)
		st := store.New(ctx.DB())

		users, err := st.ListUsers()
		if err != nil {
			log.Printf("sync-all: could not list users: %v", err)
			ctx.JobManager().Fail("sync-all", err.Error())
			return
		}
		for _, u := range users {
			active, err := st.HasActiveSyncJob(u.ID)
			if err != nil || active {
				continue
			}
			job, err := st.CreateSyncJob(u.ID)
			if err != nil {
				log.Printf("sync-all: could not create job for user %d: %v", u.ID, err)
				continue
			}
			runner.Run(context.Background(), job, source)
		}
	})

	// Start the background job scheduler
	jobs.StartJobs(app)

	// Watch the backup directory for dropped import files
	if app.Config().Backup.Watch {
		watcher := backup.NewWatcherService(app.DB(), app.Config().Backup.Path)
		if err := watcher.Start(); err != nil {
			log.Printf("Warning: backup watcher could not start: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	// Setup the API server
	server := api.NewServer(app)
	addr := fmt.Sprintf(":%d", app.Config().Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting web server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt a graceful shutdown.
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

func generateRandomPassword(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[seededRand.Intn(len(charset))]
	}
	return string(b)
}
