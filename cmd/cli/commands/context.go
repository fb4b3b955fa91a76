package commands

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jakechorley/rodizio/internal/config"
	"github.com/jakechorley/rodizio/pkg/db"
	"github.com/jakechorley/rodizio/pkg/metrics"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database *db.DB
	Lister   db.TableLister
	Recorder metrics.Recorder
	Registry *prometheus.Registry
	Logger   *zap.Logger
	Ctx      context.Context
	Now      func() time.Time
}

func (app *AppContext) now() time.Time {
	if app.Now == nil {
		return time.Now()
	}
	return app.Now()
}
