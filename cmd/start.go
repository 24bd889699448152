package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"datarecon/core/config"
	"datarecon/core/loader"
	"datarecon/core/logger"
	"datarecon/core/middleware/auth"
	"datarecon/core/middleware/rayid"
	"datarecon/core/recon"
	"datarecon/core/report"
	"datarecon/core/source"
	"datarecon/core/staging"
	"datarecon/core/storage"

	"datarecon/feature/runs"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciliation server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 4. Initialize Storage (only when a dataset or the archive needs it)
		var store storage.Client
		if cfg.Source.Kind == "object" || cfg.Target.Kind == "object" || cfg.Recon.ArchiveReports {
			store, err = storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
		}
		deps := source.Deps{Storage: store, Bucket: cfg.Storage.Bucket}

		// 5. Initialize Feature Loader
		mgr := loader.NewManager()

		// Register Features
		newStore := func() (staging.Store, error) {
			return staging.New(cfg.Staging)
		}
		buildSources := func() (source.Source, source.Source, error) {
			src, err := source.New("source", cfg.Source, cfg.Recon.IDField, deps)
			if err != nil {
				return nil, nil, err
			}
			tgt, err := source.New("target", cfg.Target, cfg.Recon.IDField, deps)
			if err != nil {
				src.Close()
				return nil, nil, err
			}
			return src, tgt, nil
		}
		runsFeature := runs.NewFeature(logg, cfg.Recon.Options(), newStore, buildSources)
		if cfg.Recon.ArchiveReports {
			runsFeature.SetArchiver(func(ctx context.Context, rep *recon.Report) (string, error) {
				return report.Archive(ctx, store, cfg.Storage.Bucket, rep)
			})
		}
		mgr.Register(runsFeature)

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			// Log error if happened
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 4. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 5. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
