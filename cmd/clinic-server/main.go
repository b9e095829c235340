package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Eudes-Dev/medical-app/internal/config"
	"github.com/Eudes-Dev/medical-app/internal/domain/appointment"
	"github.com/Eudes-Dev/medical-app/internal/domain/calendar"
	"github.com/Eudes-Dev/medical-app/internal/domain/patient"
	"github.com/Eudes-Dev/medical-app/internal/platform/auth"
	"github.com/Eudes-Dev/medical-app/internal/platform/db"
	"github.com/Eudes-Dev/medical-app/internal/platform/middleware"
	"github.com/Eudes-Dev/medical-app/internal/platform/prefs"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Single-practitioner appointment scheduling server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scheduling API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Write a new forward migration to undo a schema change.")
			return nil
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fake patients and a week of appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("patients")
			return runSeed(count)
		},
	}
	cmd.Flags().Int("patients", 25, "Number of fake patients to create")
	return cmd
}

func newLogger() zerolog.Logger {
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Preference store: Redis when configured, process-local otherwise.
	var store prefs.Store
	if cfg.RedisURL != "" {
		client, err := prefs.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		store = prefs.NewRedis(client)
		logger.Info().Msg("connected to redis")
	} else {
		store = prefs.NewMemory()
		logger.Info().Msg("REDIS_URL not set, calendar preferences are process-local")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))

	// Health checks stay outside the authenticated group.
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	switch cfg.ResolvedAuthMode() {
	case "dev":
		apiV1.Use(auth.DevAuthMiddleware())
	default:
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{Secret: []byte(cfg.JWTSecret)}))
	}

	// Domain wiring: patients first, the scheduler labels conflicts with
	// patient names; the calendar view is the scheduler's invalidation hook.
	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	apptSvc := appointment.NewService(appointment.NewRepoPG(pool), patientSvc, logger)
	appointment.NewHandler(apptSvc).RegisterRoutes(apiV1)

	view := calendar.NewView(ctx, store, logger)
	apptSvc.SetInvalidator(view)
	grid := calendar.NewGrid(cfg.DayStartHour, cfg.DayEndHour)
	calendar.NewHandler(view, grid, apptSvc).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("auth_mode", cfg.ResolvedAuthMode()).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// runSeed fills the database with fake patients and books a working week of
// appointments through the scheduling service, so conflict checks and
// validation run exactly as they would for live traffic.
func runSeed(patientCount int) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	apptSvc := appointment.NewService(appointment.NewRepoPG(pool), patientSvc, logger)

	// Service calls require a caller identity.
	ctx = auth.WithUser(ctx, auth.User{ID: "seed-cli", Name: "Seed"})

	logger.Info().Int("count", patientCount).Msg("seeding patients")
	patients := make([]*patient.Patient, 0, patientCount)
	for i := 0; i < patientCount; i++ {
		dob := gofakeit.DateRange(
			time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2010, 12, 31, 0, 0, 0, 0, time.UTC),
		)
		phone := gofakeit.Phone()
		email := gofakeit.Email()
		p := &patient.Patient{
			FirstName:   gofakeit.FirstName(),
			LastName:    gofakeit.LastName(),
			DateOfBirth: &dob,
			Phone:       &phone,
			Email:       &email,
		}
		if err := patientSvc.CreatePatient(ctx, p); err != nil {
			return fmt.Errorf("seed patient: %w", err)
		}
		patients = append(patients, p)
	}

	booked, err := seedWeek(ctx, apptSvc, patients, cfg.DayStartHour, cfg.DayEndHour)
	if err != nil {
		return err
	}

	logger.Info().Int("patients", len(patients)).Int("appointments", booked).Msg("seed complete")
	return nil
}

// seedWeek books sequential appointments with small gaps across Monday to
// Friday of the current week. Slots never overlap, so every booking passes
// the conflict check.
func seedWeek(ctx context.Context, svc *appointment.Service, patients []*patient.Patient, startHour, endHour int) (int, error) {
	if len(patients) == 0 {
		return 0, nil
	}

	types := []string{"consultation", "follow-up", "checkup", "procedure", "telehealth"}
	durations := []int{30, 45, 60}
	gaps := []int{0, 15, 15, 30}

	now := time.Now()
	monday := now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))

	booked := 0
	for dayOffset := 0; dayOffset < 5; dayOffset++ {
		day := monday.AddDate(0, 0, dayOffset)
		cursor := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, time.Local)
		dayEnd := time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, time.Local)

		for {
			duration := durations[gofakeit.Number(0, len(durations)-1)]
			if cursor.Add(time.Duration(duration) * time.Minute).After(dayEnd) {
				break
			}

			p := patients[gofakeit.Number(0, len(patients)-1)]
			_, err := svc.Create(ctx, appointment.CreateInput{
				PatientID:       p.ID,
				StartTime:       cursor,
				DurationMinutes: duration,
				Type:            types[gofakeit.Number(0, len(types)-1)],
			})
			if err != nil {
				return booked, fmt.Errorf("seed appointment at %s: %w", cursor.Format(time.RFC3339), err)
			}
			booked++

			gap := gaps[gofakeit.Number(0, len(gaps)-1)]
			cursor = cursor.Add(time.Duration(duration+gap) * time.Minute)
		}
	}

	return booked, nil
}
