package crawler

import (
	"context"
	"sync"

	"github.com/ymakhloufi/deposit-slabs/internal/app/chart"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/validation"
	"go.uber.org/zap"
)

type Store interface {
	UpsertChart(ctx context.Context, c model.RateChart) error
}

type SiteCrawler interface {
	Crawl(chan<- model.RateChart)
}

// Result counts what happened to the charts of one crawl run.
type Result struct {
	Stored   int
	Rejected int
	Failed   int
}

type Service struct {
	store    Store
	crawlers []SiteCrawler
	logger   *zap.Logger
}

func NewService(store Store, crawlers []SiteCrawler, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		crawlers: crawlers,
		logger:   logger,
	}
}

// Crawl runs all crawlers concurrently and stores every chart that passes
// validation. It returns once all charts have been handled.
func (s Service) Crawl(ctx context.Context) Result {
	var wg sync.WaitGroup
	objChan := make(chan model.RateChart)

	for _, c := range s.crawlers {
		wg.Add(1)
		go func(c SiteCrawler) {
			defer wg.Done()
			c.Crawl(objChan)
		}(c)
	}

	done := make(chan Result)
	go func() {
		done <- s.recv(ctx, objChan)
	}()

	wg.Wait()
	s.logger.Info("all crawlers finished, closing channels")
	close(objChan)

	return <-done
}

func (s Service) recv(ctx context.Context, c <-chan model.RateChart) Result {
	s.logger.Info("starting crawler receiver")

	var res Result
	for rc := range c {
		log := s.logger.With(
			zap.String("bank", string(rc.Bank)),
			zap.String("currency", rc.Currency),
			zap.String("tier", rc.Tier),
		)

		v := validation.NewCollector()
		chart.Validate(rc, v)
		if v.HasErrors() {
			log.Warn("rejected rate chart", zap.Error(v.Err()))
			res.Rejected++
			continue
		}

		if err := s.store.UpsertChart(ctx, rc); err != nil {
			log.Error("failed to upsert rate chart", zap.Error(err))
			res.Failed++
			continue
		}

		log.Info("successfully upserted rate chart", zap.Int("slabs", len(rc.Slabs)))
		res.Stored++
	}
	return res
}
