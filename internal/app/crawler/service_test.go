package crawler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
	"go.uber.org/zap"
)

type chartKey struct {
	bank model.Bank
	tier string
}

type memStore struct {
	mu     sync.Mutex
	charts map[chartKey]model.RateChart
	fail   model.Bank
}

func (m *memStore) UpsertChart(_ context.Context, c model.RateChart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Bank == m.fail {
		return errors.New("database is down")
	}
	if m.charts == nil {
		m.charts = map[chartKey]model.RateChart{}
	}
	m.charts[chartKey{c.Bank, c.Tier}] = c
	return nil
}

func chartOf(bank model.Bank, ranges ...[2]*int) model.RateChart {
	c := model.RateChart{Bank: bank, Currency: "SEK"}
	for _, r := range ranges {
		from := 0
		if r[0] != nil {
			from = *r[0]
		}
		c.Slabs = append(c.Slabs, model.NewSlab(model.SlabFields{
			PeriodUnit:   model.PeriodMonths,
			FromPeriod:   from,
			ToPeriod:     r[1],
			BaseRate:     decimal.RequireFromString("2.0"),
			CurrencyCode: "SEK",
		}))
	}
	return c
}

func TestServiceCrawl(t *testing.T) {
	good := chartOf("Goda banken", [2]*int{intPtr(0), intPtr(11)}, [2]*int{intPtr(12), nil})
	overlapping := chartOf("Glappa banken", [2]*int{intPtr(0), intPtr(12)}, [2]*int{intPtr(12), nil})
	unstorable := chartOf("Nere banken", [2]*int{intPtr(0), nil})

	store := &memStore{fail: "Nere banken"}
	svc := NewService(store, []SiteCrawler{
		NewFixedCrawler(zap.NewNop(), good, overlapping),
		NewFixedCrawler(zap.NewNop(), unstorable),
	}, zap.NewNop())

	res := svc.Crawl(context.Background())

	assert.Equal(t, Result{Stored: 1, Rejected: 1, Failed: 1}, res)
	assert.Len(t, store.charts, 1)
	assert.Contains(t, store.charts, chartKey{bank: "Goda banken"})
}

func TestServiceCrawlStoresEveryAmountTier(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, []SiteCrawler{pageCrawler(t, depositPage)}, zap.NewNop())

	res := svc.Crawl(context.Background())

	assert.Equal(t, Result{Stored: 2}, res)
	require.Len(t, store.charts, 2)

	small := store.charts[chartKey{"Testbanken", "0-99999"}]
	require.Len(t, small.Slabs, 3)
	decEq(t, "1.25", ptr(small.Slabs[0].BaseRate()))
	decEq(t, "99999", small.Slabs[0].AmountRangeTo())

	large := store.charts[chartKey{"Testbanken", "100000-"}]
	require.Len(t, large.Slabs, 3)
	decEq(t, "1.40", ptr(large.Slabs[0].BaseRate()))
	decEq(t, "1.60", large.Slabs[0].SeniorRate())
	decEq(t, "2.50", ptr(large.Slabs[2].BaseRate()))
	assert.Nil(t, large.Slabs[2].ToPeriod())
}

func TestServiceCrawlWithoutCrawlers(t *testing.T) {
	res := NewService(&memStore{}, nil, zap.NewNop()).Crawl(context.Background())
	assert.Equal(t, Result{}, res)
}
