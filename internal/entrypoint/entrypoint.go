package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/snipsnap/internal/audit"
	"github.com/mrlokans/snipsnap/internal/auth"
	"github.com/mrlokans/snipsnap/internal/config"
	"github.com/mrlokans/snipsnap/internal/database"
	auditrepo "github.com/mrlokans/snipsnap/internal/database/audit"
	"github.com/mrlokans/snipsnap/internal/database/collections"
	"github.com/mrlokans/snipsnap/internal/database/contacts"
	"github.com/mrlokans/snipsnap/internal/database/snips"
	"github.com/mrlokans/snipsnap/internal/database/users"
	http_controllers "github.com/mrlokans/snipsnap/internal/http"
	"github.com/mrlokans/snipsnap/internal/scheduler"
	"github.com/mrlokans/snipsnap/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -2 is SIGINT, plain kill is SIGTERM. SIGKILL can't be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Stop background work after in-flight requests have drained
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// resolveTokenSecret returns the signing key for session tokens. A hex value
// is decoded; anything else is used as raw bytes. With no configured secret a
// random one is generated and generated is true. The value itself is never
// logged.
func resolveTokenSecret(configured string) (secret []byte, generated bool, err error) {
	if configured != "" {
		if decoded, err := hex.DecodeString(configured); err == nil && len(decoded) > 0 {
			return decoded, false, nil
		}
		return []byte(configured), false, nil
	}

	encoded, err := auth.GenerateTokenSecret()
	if err != nil {
		return nil, false, err
	}
	secret, err = hex.DecodeString(encoded)
	if err != nil {
		return nil, false, err
	}
	return secret, true, nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting SnipSnap v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	userRepo := users.NewRepository(db.DB)
	snipRepo := snips.NewRepository(db.DB)
	collectionRepo := collections.NewRepository(db.DB)
	contactRepo := contacts.NewRepository(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB))

	// Token signing
	secret, generated, err := resolveTokenSecret(cfg.Auth.TokenSecret)
	if err != nil {
		log.Fatalf("Failed to prepare token secret: %v", err)
	}
	if generated {
		log.Printf("WARNING: AUTH_TOKEN_SECRET is not set. Using an ephemeral secret; sessions will not survive a restart. Run 'generate-secret' to create one.")
	}
	tokens, err := auth.NewTokenManager(secret)
	if err != nil {
		log.Fatalf("Failed to initialize token manager: %v", err)
	}

	authService := auth.NewService(userRepo, auth.NewBcryptHasher(cfg.Auth.BcryptCost))
	authController := auth.NewAuthController(authService, tokens, cfg.Auth, auditService)

	if hasUsers, err := authService.HasUsers(); err == nil && !hasUsers {
		log.Printf("No users found. Register through POST /api/auth/register or the 'create-user' command.")
	}
	if !cfg.Auth.SecureCookies {
		log.Printf("WARNING: AUTH_SECURE_COOKIES is false. Session cookies will be sent over plain HTTP.")
	}

	// Background maintenance
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}, tasks.Cleaners{Audit: auditService, Shares: snipRepo})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		maintenance = scheduler.NewMaintenanceScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		if err := maintenance.Start(taskCtx); err != nil {
			log.Printf("WARNING: maintenance scheduler not started: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		Version:        version,
		AuthController: authController,
		Gate:           auth.NewGate(tokens),
		SecureCookies:  cfg.Auth.SecureCookies,
		Accounts:       authService,
		Snips:          snipRepo,
		Collections:    collectionRepo,
		Contacts:       contactRepo,
		Activity:       auditService,
		ActivityReader: auditService,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	onShutdown := func(ctx context.Context) {
		authController.Stop()
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Shutdown(ctx)
			taskCtxCancel()
		}
		auditService.Flush()
	}

	Serve(router, cfg, onShutdown)
}
