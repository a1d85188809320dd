package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prediction-engine/config"
	"prediction-engine/database"
	"prediction-engine/engine"
	"prediction-engine/handlers"
)

func main() {
	configPath := flag.String("config", "prediction-engine.yaml", "path to the configuration file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("service", "prediction-engine")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}

	if err := database.Init(cfg.Database.Path); err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	eng := engine.New(database.GetDB(), cfg, log)

	// Background cache reaper; signals older than the longest window
	// are never useful to any predictor.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reaper := engine.NewReaper(eng.Cache(), cfg.Retention, log)
	go reaper.Run(ctx)

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	h := handlers.New(eng, log)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		orgs := api.Group("/organizations/:org_id")
		{
			orgs.POST("/signals", h.IngestSignals)
			orgs.GET("/signals", h.GetSignals)
			orgs.GET("/forecasts", h.GetForecasts)
			orgs.POST("/forecasts/generate", h.GenerateForecast)
			orgs.GET("/rules", h.GetRules)
			orgs.POST("/rules", h.CreateRule)
			orgs.GET("/stats", h.GetStats)
			orgs.POST("/cache/purge", h.PurgeCache)
		}
		api.PATCH("/rules/:rule_id", h.UpdateRule)
		api.DELETE("/rules/:rule_id", h.DeleteRule)
	}

	log.Info("starting prediction engine", "addr", cfg.Server.Addr)
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
