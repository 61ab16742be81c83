package cmd

import (
	"time"

	"go.uber.org/zap"

	"nautilus/internal/config"
	"nautilus/internal/facer"
	"nautilus/internal/gallery"
	"nautilus/internal/logging"
	"nautilus/internal/scans"
	"nautilus/internal/users"
	"nautilus/internal/web"
)

// app bundles the wired components every command operates on.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	stores web.Stores
}

// newApp loads configuration and constructs the stores. The --data-dir flag
// rebases the default file locations.
func newApp() *app {
	cfg := config.Load().WithDataDir(dataDir)
	logger := logging.New(cfg.Log.Level)

	return &app{
		cfg:    cfg,
		logger: logger,
		stores: web.Stores{
			Registry: users.NewRegistry(cfg.Storage.UsersFile, cfg.Storage.SeedUsername, cfg.Storage.SeedPassword, logger),
			History:  scans.NewHistory(cfg.Storage.ScansFile, logger),
			Images:   gallery.NewStore(&cfg.Storage, logger),
		},
	}
}

// provider picks the face engine implementation: the HTTP sidecar when
// configured, otherwise the noop engine.
func (a *app) provider() facer.Provider {
	if a.cfg.Facer.URL != "" {
		return facer.NewHTTPProvider(a.cfg.Facer.URL, time.Duration(a.cfg.Facer.Timeout)*time.Second)
	}
	return facer.NewNoopProvider()
}

func (a *app) close() {
	_ = a.logger.Sync()
}
