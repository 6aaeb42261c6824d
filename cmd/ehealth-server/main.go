package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehealth/ehealth/internal/config"
	"github.com/ehealth/ehealth/internal/domain/account"
	"github.com/ehealth/ehealth/internal/domain/appointment"
	"github.com/ehealth/ehealth/internal/domain/blog"
	"github.com/ehealth/ehealth/internal/domain/collaboration"
	"github.com/ehealth/ehealth/internal/domain/healthrecord"
	"github.com/ehealth/ehealth/internal/domain/medication"
	"github.com/ehealth/ehealth/internal/domain/organization"
	"github.com/ehealth/ehealth/internal/domain/purchase"
	"github.com/ehealth/ehealth/internal/platform/auth"
	"github.com/ehealth/ehealth/internal/platform/db"
	"github.com/ehealth/ehealth/internal/platform/middleware"
)

func main() {
	root := &cobra.Command{
		Use:   "ehealth-server",
		Short: "Clinic and pharmacy management backend",
	}

	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	logger := newLogger(cfg)
	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	revocations, err := auth.NewRevocationStore(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer revocations.Close()
	if cfg.RedisURL == "" {
		logger.Warn().Msg("REDIS_URL not set, token revocation disabled")
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = "dev-only-secret-do-not-use-in-production"
	}
	issuer := auth.NewTokenIssuer([]byte(secret), "ehealth",
		time.Duration(cfg.TokenTTLMinutes)*time.Minute)

	runner := db.NewRunner(pool)

	userRepo := account.NewUserRepo(pool)
	orgRepo := organization.NewRepo(pool)
	recordRepo := healthrecord.NewRepo(pool)
	blogRepo := blog.NewRepo(pool)
	apptRepo := appointment.NewRepo(pool)
	medRepo := medication.NewRepo(pool)
	purchaseRepo := purchase.NewRepo(pool)

	recordSvc := healthrecord.NewService(recordRepo)
	accountSvc := account.NewService(userRepo, recordSvc, issuer)
	orgSvc := organization.NewService(orgRepo)
	collabSvc := collaboration.NewService(runner, userRepo, orgRepo, blogRepo, recordSvc)
	blogSvc := blog.NewService(blogRepo)
	apptSvc := appointment.NewService(runner, apptRepo)
	medSvc := medication.NewService(medRepo)
	purchaseSvc := purchase.NewService(purchaseRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	rateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})

	api := e.Group("/api/v1")
	api.Use(rateLimit)

	authed := e.Group("/api/v1")
	authed.Use(rateLimit, auth.Middleware(issuer, revocations))

	account.NewHandler(accountSvc, revocations).RegisterRoutes(api, authed)
	collaboration.NewHandler(collabSvc).RegisterRoutes(api, authed)
	organization.NewHandler(orgSvc).RegisterRoutes(authed)
	healthrecord.NewHandler(recordSvc).RegisterRoutes(authed)
	blog.NewHandler(blogSvc).RegisterRoutes(authed)
	appointment.NewHandler(apptSvc).RegisterRoutes(authed)
	medication.NewHandler(medSvc).RegisterRoutes(authed)
	purchase.NewHandler(purchaseSvc).RegisterRoutes(authed)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *db.Migrator, logger zerolog.Logger) error {
				n, err := m.Up(ctx)
				if err != nil {
					return err
				}
				logger.Info().Int("applied", n).Msg("migrations up to date")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *db.Migrator, logger zerolog.Logger) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return err
				}
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Printf("%3d  %-40s %s\n", s.Version, s.Name, state)
				}
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(fn func(ctx context.Context, m *db.Migrator, logger zerolog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, db.NewMigrator(pool, cfg.MigrationsDir), logger)
}

func seedCmd() *cobra.Command {
	var (
		name     string
		email    string
		icno     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the first platform operator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			ctx := context.Background()

			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			userRepo := account.NewUserRepo(pool)
			recordSvc := healthrecord.NewService(healthrecord.NewRepo(pool))
			accountSvc := account.NewService(userRepo, recordSvc, nil)

			u, err := accountSvc.RegisterAdmin(ctx, &account.RegisterInput{
				Name:     name,
				Email:    email,
				ICNo:     icno,
				Password: password,
			})
			if err != nil {
				return fmt.Errorf("seed platform operator: %w", err)
			}
			logger.Info().Int64("user_id", u.ID).Str("email", u.Email).Msg("platform operator created")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Platform Admin", "operator name")
	cmd.Flags().StringVar(&email, "email", "", "operator email (required)")
	cmd.Flags().StringVar(&icno, "icno", "", "operator identity number (required)")
	cmd.Flags().StringVar(&password, "password", "", "operator password (required)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("icno")
	cmd.MarkFlagRequired("password")

	return cmd
}
