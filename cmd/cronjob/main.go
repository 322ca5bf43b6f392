package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"rentwear-backend/internal/config"
	"rentwear-backend/internal/jobs"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository/postgres"
	"rentwear-backend/internal/scheduler"
	"rentwear-backend/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "cronjob",
		Short:        "RentWear reminder job runner",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.dev.yaml", "Path to configuration file")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		runCmd(&configPath),
		listCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run jobs on their cron schedules until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobRunner, closeDB, err := setup(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer closeDB()

			cronScheduler, err := scheduler.NewScheduler(jobRunner)
			if err != nil {
				return err
			}
			cronScheduler.Start()
			logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			logger.Info("Shutting down cronjob scheduler...")
			cronScheduler.Stop()
			logger.Info("Cronjob scheduler stopped")
			return nil
		},
	}
}

func runCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run <job|all>",
		Short: "Run one job, or all daily jobs, once and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobRunner, closeDB, err := setup(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer closeDB()

			name := args[0]
			logger.Info("Running job once", "job", name)
			if name == "all" {
				err = jobRunner.RunAllDailyJobs()
			} else {
				err = jobRunner.RunJob(name)
			}
			if err != nil {
				return err
			}
			logger.Info("Job execution completed", "job", name)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available job names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			// Listing needs no database.
			for _, name := range jobs.NewJobRunner(nil, nil, nil, nil).JobNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all")
		},
	}
}

// setup loads configuration and builds a job runner backed by PostgreSQL.
func setup(ctx context.Context, configPath string) (*jobs.JobRunner, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentWear Cronjob Runner...", "log_level", cfg.Log.Level)

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	var emailSvc service.EmailService
	if cfg.SendGrid.Enabled {
		emailSvc = service.NewSendGridEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	}

	jobServices := &jobs.Services{
		Notification: service.NewNotificationService(store.NotificationRepository, store.UserRepository, emailSvc),
	}
	jobRunner := jobs.NewJobRunner(store.RentalRepository, store.ReturnRepository, jobServices, cfg)

	return jobRunner, func() { db.Close() }, nil
}
