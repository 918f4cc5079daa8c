package cmd

import (
	"listing-mirror/core/loader"
	"listing-mirror/core/logger"
	"listing-mirror/core/middleware/auth"
	"listing-mirror/core/middleware/rayid"
	"listing-mirror/core/source"

	"listing-mirror/feature/feed"
	"listing-mirror/feature/history"
	"listing-mirror/feature/integrity"
	"listing-mirror/feature/mirror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "listing-mirror/docs/swagger"
)

// @title Listing Mirror API
// @version 1.0
// @description Mirrors a remote directory listing into an object store bucket.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the mirror server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		logg := s.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		src, err := source.NewClient(s.cfg.Source)
		if err != nil {
			return err
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()

		mirrorFeature := mirror.NewFeature(s.store, s.cfg.Storage.Bucket, src, s.cfg.Mirror, s.cfg.Server.RequestTimeout(), logg)
		if s.history != nil {
			mirrorFeature.Service().SetRecorder(s.history)
		}
		mgr.Register(mirrorFeature)
		mgr.Register(feed.NewFeature(s.feedService(cmd.Context())))
		mgr.Register(history.NewFeature(s.history, logg))
		mgr.Register(integrity.NewFeature(s.store, s.cfg.Storage.Bucket, s.integrityTargets(), logg))

		// RayID first so every later log line carries it.
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

		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: s.cfg.Server.ApiKey, Skip: []string{"/swagger"}}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}
		for _, f := range mgr.Features() {
			logg.Info("Feature registered", zap.String("feature", f.Name()), zap.Bool("enabled", f.IsEnabled()))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", s.cfg.Server.Port))
			if err := app.Listen(s.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// The root context is cancelled on SIGINT/SIGTERM.
		<-cmd.Context().Done()
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
