package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"inventory-reconciler/core/loader"
	"inventory-reconciler/core/logger"
	"inventory-reconciler/core/middleware/auth"
	"inventory-reconciler/core/middleware/rayid"
	"inventory-reconciler/feature/inventory"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciliation server",
	Long:  `Starts the HTTP server exposing on-demand reconciliation and Prometheus metrics.`,
	RunE:  runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, logg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	spec, err := buildSpec(cfg, logg, "", 0)
	if err != nil {
		return err
	}

	// Report sinks are optional: a failure only disables them
	var opts []inventory.Option
	if cfg.Database.Enabled() {
		if history, err := openHistory(cfg); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			opts = append(opts, inventory.WithHistory(history))
			logg.Info("Connected to report database", zap.String("driver", cfg.Database.Driver))
		}
	}
	if cfg.Storage.Enabled() {
		if store, err := openReports(cfg, logg); err != nil {
			logg.Warn("Optional storage client failed", zap.Error(err))
		} else {
			opts = append(opts, inventory.WithReports(store))
		}
	}

	svc, err := inventory.NewService(spec, logg, opts...)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true, // We log our own startup message
	})

	// RayID first so every log line can be traced
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/metrics"}}))
	if !cfg.Server.AuthEnabled() {
		logg.Warn("SERVER_API_KEY is empty, the API is not protected")
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	mgr := loader.NewManager(logg)
	mgr.Register(inventory.NewFeature(svc, logg, cfg.Server.RequestTimeout()))
	if err := mgr.LoadAll(app); err != nil {
		return fmt.Errorf("failed to load features: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("port", cfg.Server.Port))
		errCh <- app.Listen(cfg.Server.Address())
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-sig:
		logg.Info("Shutting down server...")
		return app.Shutdown()
	}
}
