package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrsobakin/seabattle/internal/config"
	"github.com/mrsobakin/seabattle/internal/lobby"
	"github.com/mrsobakin/seabattle/internal/telemetry"
)

func setupTracing(ctx context.Context, logger *log.Logger) (trace.Tracer, func()) {
	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		logger.Warn("telemetry setup failed, running without traces", "err", err)
		return telemetry.NoopTracer(), func() {}
	}

	return telemetry.Tracer("lobby"), func() {
		if err := shutdown(ctx); err != nil {
			logger.Error("telemetry shutdown failed", "err", err)
		}
	}
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "seabattle",
	})

	conf, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", "err", err)
	}

	logger.SetLevel(conf.LogLevel)

	if len(os.Args) >= 2 {
		conf.Addr = os.Args[1]
	}

	ctx := context.Background()

	tracer := telemetry.NoopTracer()
	if conf.Telemetry {
		var shutdown func()
		tracer, shutdown = setupTracing(ctx, logger)
		defer shutdown()
	}

	l := lobby.New(lobby.Options{
		Width:          conf.GridWidth,
		Height:         conf.GridHeight,
		AdversaryDelay: conf.AdversaryDelay,
		MaxMatches:     conf.MaxMatches,
		Logger:         logger,
		Tracer:         tracer,
	})
	defer l.Close()

	router := gin.Default()

	s := NewServer(l, logger)
	s.RegisterEndpoints(router)

	logger.Info("listening", "addr", conf.Addr, "grid", [2]int64{conf.GridWidth, conf.GridHeight}, "max_matches", conf.MaxMatches)

	if err := router.Run(conf.Addr); err != nil {
		logger.Error("server stopped", "err", err)
	}
}
