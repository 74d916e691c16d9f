package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"qrmenu/internal/config"
	"qrmenu/internal/database"
	"qrmenu/internal/handlers"
	"qrmenu/internal/middleware"
	"qrmenu/internal/router"
	"qrmenu/internal/session"
	"qrmenu/internal/store"
	"qrmenu/internal/valkey"
)

// shutdownTimeout is how long active requests get to finish on shutdown.
const shutdownTimeout = 30 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

Migrations are applied on start and the admin user is created from
ADMIN_USERNAME / ADMIN_PASSWORD when no user exists yet. In development
the sample menu is loaded into an empty catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Seed(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}
	if cfg.IsDev() {
		if err := database.SeedSampleMenu(db); err != nil {
			return err
		}
	}

	valkeyClient, err := valkey.Connect(ctx, valkey.Options{
		Host:     cfg.ValkeyHost,
		Port:     cfg.ValkeyPort,
		Password: cfg.ValkeyPassword,
	})
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	images, err := openImageStore(cfg)
	if err != nil {
		return err
	}

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	categoryStore := store.NewCategoryStore(db)
	productStore := store.NewProductStore(db)
	qrStore := store.NewQRCodeStore(db)
	userStore := store.NewUserStore(db)

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	defer loginLimiter.Stop()

	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Categories:    handlers.NewCategories(categoryStore),
		Products:      handlers.NewProducts(productStore),
		Upload:        handlers.NewUpload(images, cfg.MaxUploadBytes()),
		QRCodes:       handlers.NewQRCodes(qrStore, cfg.QRRenderURL),
		Auth:          handlers.NewAuth(sessionStore, userStore),
		Uploads:       images.Handler(),
		LoginLimiter:  loginLimiter,
		SecureCookies: secureCookies,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second, // uploads of up to MAX_UPLOAD_MB
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
