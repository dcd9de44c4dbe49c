package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ymakhloufi/deposit-slabs/internal/app/crawler"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/config"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/store"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on system env vars")
	}

	cfg, err := config.Load()
	noErr(err)

	logger, err := cfg.Logger()
	noErr(err)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	noErr(err)
	defer pool.Close()

	pgStore := store.NewPostgres(pool, logger.Named("PG Store"))
	noErr(pgStore.Migrate(ctx))

	crawlers := make([]crawler.SiteCrawler, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		crawlers = append(crawlers, crawler.NewDepositTableCrawler(
			model.Bank(src.Bank), src.URL, cfg.Currency, logger.Named(src.Bank+"Crawler"),
		))
	}
	if len(crawlers) == 0 {
		logger.Warn("no CHART_SOURCES configured, nothing to crawl")
	}

	svc := crawler.NewService(pgStore, crawlers, logger.Named("Crawler Svc"))
	res := svc.Crawl(ctx)
	logger.Info("crawl finished",
		zap.Int("stored", res.Stored),
		zap.Int("rejected", res.Rejected),
		zap.Int("failed", res.Failed),
	)
}

func noErr(err error) {
	if err != nil {
		panic("failed to initialize something important: " + err.Error())
	}
}
