package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"achievement-wordle/apperrors"
	"achievement-wordle/config"
	"achievement-wordle/database"
	"achievement-wordle/handlers"
	"achievement-wordle/logger"
	"achievement-wordle/services"
	"achievement-wordle/utils"
	"achievement-wordle/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const serviceName = "achievement-wordle"

var rootCmd = &cobra.Command{
	Use:           "achievement-wordle",
	Short:         "Daily Wordle achievement event service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, scheduler and prize notifier",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the event tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("✅ migrations applied")
		return nil
	},
}

var wordCmd = &cobra.Command{
	Use:   "word",
	Short: "Inspect or override the daily word",
}

var wordGetCmd = &cobra.Command{
	Use:   "get [date]",
	Short: "Show the word for a day (default today, UTC)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		words := newWordService(cfg, db, log)
		word, err := words.Lookup(cmd.Context(), dateArg(args))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", word.Date, word.Word, word.Source)
		return nil
	},
}

var wordSetCmd = &cobra.Command{
	Use:   "set <word>",
	Short: "Override today's word (UTC)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		words := newWordService(cfg, db, log)
		word, err := words.OverrideWord(cmd.Context(), words.Today(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", word.Date, word.Word, word.Source)
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive [date]",
	Short: "Upload one day's word and submissions to R2 (default yesterday, UTC)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		if !cfg.Archive.Enabled() {
			return errors.New("archive is not configured (set the WORDLE_R2_* variables)")
		}
		archiver, err := newArchiver(cmd.Context(), cfg, db, newWordService(cfg, db, log), log)
		if err != nil {
			return err
		}

		date := ""
		if len(args) == 1 {
			date = args[0]
		} else if date, err = services.PreviousDayKey(services.TodayKey(time.Now())); err != nil {
			return err
		}
		key, err := archiver.ArchiveDay(cmd.Context(), date)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

func init() {
	wordCmd.AddCommand(wordGetCmd, wordSetCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, wordCmd, archiveCmd)
}

func dateArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return services.TodayKey(time.Now())
}

func bootstrap() (*config.Config, *logger.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: serviceName,
	})

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func newWordService(cfg *config.Config, db *gorm.DB, log *logger.Logger) *services.DailyWordService {
	source := services.NewWordleAPIClient(cfg.WordAPI.URL, cfg.WordAPI.Timeout, log)
	return services.NewDailyWordService(db, source, log)
}

func newArchiver(ctx context.Context, cfg *config.Config, db *gorm.DB, words *services.DailyWordService, log *logger.Logger) (*services.DailyArchiver, error) {
	store, err := utils.NewR2Store(ctx, cfg.Archive)
	if err != nil {
		return nil, err
	}
	return services.NewDailyArchiver(words, services.NewSubmissionService(db, log), store, cfg.EventName, log), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := cfg.RequireServer(); err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	platform := services.NewRAClient(cfg.RA.BaseURL, cfg.RA.Username, cfg.RA.WebAPIKey, cfg.RA.Timeout)
	words := newWordService(cfg, db, log)
	accounts := services.NewAccountService(db, platform, log)
	validator := services.NewSubmissionValidator(platform, log)
	submissions := services.NewSubmissionService(db, log)
	progress := services.NewProgressService(db, log)
	events := services.NewEventService(words, accounts, validator, submissions, progress, log)

	var archiver *services.DailyArchiver
	if cfg.Archive.Enabled() {
		if archiver, err = newArchiver(ctx, cfg, db, words, log); err != nil {
			return err
		}
	} else {
		log.Warn("⚠️ R2 archive not configured, daily archiving disabled")
	}

	if cfg.Server.RunScheduler {
		sched, err := services.StartEventScheduler(words, archiver, log)
		if err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				log.Warn("scheduler shutdown failed", "error", err)
			}
		}()
	} else {
		log.Info("daily jobs disabled on this instance", "env", config.EnvPrefix+"_RUN_SCHEDULER")
	}

	if cfg.Prize.WebhookURL != "" {
		notifier := workers.NewPrizeNotifier(progress, cfg.Prize.WebhookURL, cfg.Prize.PollInterval, log)
		notifier.BatchSize = cfg.Prize.BatchSize
		notifier.Start(ctx)
	} else {
		log.Warn("⚠️ PRIZE_WEBHOOK_URL not set, prize notifications disabled")
	}

	app := newApp(handlers.NewEventHandler(events, log), cfg.Server.ServiceToken)

	go func() {
		if err := app.Listen(cfg.Server.Addr); err != nil {
			log.Error("server error", "error", err)
			stop()
		}
	}()
	log.Info("✅ server running", "addr", cfg.Server.Addr, "event", cfg.EventName)

	<-ctx.Done()
	log.Info("shutting down server...")
	return app.ShutdownWithTimeout(10 * time.Second)
}

func newApp(h *handlers.EventHandler, serviceToken string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(fiber.Map{"error": "HTTP_ERROR", "message": fe.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   string(apperrors.CodeInternal),
				"message": apperrors.RetryLaterMessage,
			})
		},
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	handlers.SetupEventRoutes(app, h, serviceToken)
	return app
}
