package model

import (
	"time"

	"cloud.google.com/go/civil"
)

type Bank string

// RateChart is a bank's deposit rate chart for one currency. A bank that prices
// the same term differently by deposit size publishes one chart per amount
// tier; Tier names it and is empty for an untiered chart.
type RateChart struct {
	Bank          Bank
	Currency      string
	Tier          string
	Slabs         []*Slab
	EffectiveFrom civil.Date
	LastCrawledAt time.Time
}
