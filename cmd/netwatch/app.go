package main

import (
	"io"

	"go.uber.org/zap"

	"github.com/hamed0406/netwatch/internal/config"
	"github.com/hamed0406/netwatch/internal/link"
	"github.com/hamed0406/netwatch/internal/logging"
	"github.com/hamed0406/netwatch/internal/monitor"
	"github.com/hamed0406/netwatch/internal/probe"
	"github.com/hamed0406/netwatch/internal/publisher"
	"github.com/hamed0406/netwatch/internal/repo/memory"
)

// app is the wiring shared by serve, check and watch.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	store   *memory.Store
	source  *link.InterfaceSource
	prober  *probe.HealthProbe
	monitor *monitor.Monitor
}

func newApp(cfg config.Config, tee io.Writer) (*app, error) {
	logger, err := logging.NewLogger(logging.Options{Dir: cfg.LogDir, Level: cfg.LogLevel, Tee: tee})
	if err != nil {
		return nil, err
	}

	var internet link.InternetProber
	if cfg.InternetCheckHost != "" {
		internet = probe.NewInternetChecker(cfg.InternetCheckHost)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  memory.New(cfg.HistorySize),
		source: link.NewInterfaceSource(logger, cfg.LinkPoll(), internet),
		prober: probe.NewHealthProbe(logger, cfg.BaseURL, probe.DefaultHealthPath, cfg.ProbeTimeout()),
	}
	a.monitor = monitor.New(logger, a.source, a.prober, publisher.New(logger), monitor.Config{
		Interval:    cfg.ProbeInterval(),
		Transitions: a.store,
	})
	return a, nil
}

func (a *app) close() {
	a.monitor.Cleanup()
	a.source.Stop()
	_ = a.logger.Sync()
}
