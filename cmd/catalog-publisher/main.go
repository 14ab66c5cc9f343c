// Command catalog-publisher validates a catalog YAML file and publishes it
// as the next snapshot on the catalog topic.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	catalogapp "github.com/dwikikusuma/foodstore/internal/catalog/app"
	catalogfile "github.com/dwikikusuma/foodstore/internal/catalog/infra/file"
	catalogkafka "github.com/dwikikusuma/foodstore/internal/catalog/infra/kafka"
	"github.com/dwikikusuma/foodstore/pkg/config"
	"github.com/dwikikusuma/foodstore/pkg/logger"
	"github.com/dwikikusuma/foodstore/pkg/shutdown"
)

func main() {
	path := flag.String("file", "catalog.yaml", "catalog snapshot to publish")
	dryRun := flag.Bool("dry-run", false, "validate only")
	timeout := flag.Duration("timeout", 30*time.Second, "publish timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Service: "catalog-publisher",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	snap, err := catalogfile.Load(*path)
	if err != nil {
		log.Error("read catalog", slog.String("file", *path), slog.Any("err", err))
		os.Exit(1)
	}
	if err := catalogapp.NewService(nil).Validate(snap); err != nil {
		log.Error("catalog rejected", slog.String("file", *path), slog.Any("err", err))
		os.Exit(1)
	}

	attrs := []any{
		slog.Int("categories", len(snap.Categories)),
		slog.Int("foods", len(snap.Foods)),
	}
	if *dryRun {
		log.Info("catalog valid", attrs...)
		return
	}
	if len(cfg.Kafka.Brokers) == 0 {
		log.Error("no kafka brokers configured, set KAFKA_BROKERS")
		os.Exit(1)
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	pub := catalogkafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.CatalogTopic)
	defer pub.Close()

	if err := pub.Publish(ctx, snap); err != nil {
		log.Error("publish catalog", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("catalog published", append(attrs, slog.String("topic", cfg.Kafka.CatalogTopic))...)
}
