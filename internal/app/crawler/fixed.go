package crawler

import (
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
	"go.uber.org/zap"
)

var _ SiteCrawler = &FixedCrawler{}

// FixedCrawler emits charts it was built with, for local runs without a
// reachable bank website.
type FixedCrawler struct {
	charts []model.RateChart
	logger *zap.Logger
}

func NewFixedCrawler(logger *zap.Logger, charts ...model.RateChart) *FixedCrawler {
	return &FixedCrawler{charts: charts, logger: logger}
}

func (f FixedCrawler) Crawl(charts chan<- model.RateChart) {
	for _, c := range f.charts {
		f.logger.Info("fixed crawler emitting chart", zap.String("bank", string(c.Bank)))
		charts <- c
	}
}
