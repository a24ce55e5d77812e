package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hako/durafmt"
	"github.com/joho/godotenv"

	"tilbudsavis/internal/bootstrap"
	"tilbudsavis/internal/logger"
	"tilbudsavis/internal/offers"
	"tilbudsavis/internal/render"
)

func main() {
	var (
		configPath = flag.String("config", "./config/config.yaml", "path to config.yaml")
		favorites  = flag.String("favorites", "", "comma separated dealer keys to store as favorites (optional)")
		refresh    = flag.Bool("refresh", false, "ignore the offer cache")
		limit      = flag.Int("limit", 0, "print at most n offers (0 = all)")
		dealer     = flag.String("dealer", "", "only print offers of these dealers, comma separated keys or names")
		format     = flag.String("format", render.FormatTable, "output format: table|lines|json")
		metricsOut = flag.String("metrics-out", "", "write prometheus metrics to this textfile (optional)")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("load .env failed", "err", err)
	}

	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		slog.Error("load config failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	slog.SetDefault(log)

	app, err := bootstrap.Build(cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("shutdown", "err", err)
		}
	}()

	changed := *refresh
	if *favorites != "" {
		c, err := app.UserData.SetFavorites(splitList(*favorites))
		if err != nil {
			log.Error("set favorites failed", "err", err)
			os.Exit(1)
		}
		changed = changed || c
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	list := app.Offers(ctx, changed)

	var names []string
	for _, n := range splitList(*dealer) {
		if d, ok := app.Registry.Lookup(n); ok {
			n = d.Name
		}
		names = append(names, n)
	}
	list = offers.Filter(list, names...)
	if *limit > 0 && len(list) > *limit {
		list = list[:*limit]
	}

	if err := render.Write(os.Stdout, list, *format); err != nil {
		log.Error("render failed", "err", err)
		os.Exit(1)
	}

	if next := app.UserData.NextRefresh(); !next.IsZero() {
		left := time.Until(next).Round(time.Minute)
		if left < 0 {
			left = 0
		}
		log.Info("next refresh", "at", next.Format(time.DateTime), "in", durafmt.Parse(left).LimitFirstN(2).String())
	}

	if *metricsOut != "" {
		if err := app.Monitor.WriteTextfile(*metricsOut); err != nil {
			log.Error("write metrics failed", "err", err, "path", *metricsOut)
			os.Exit(1)
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
