package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
	"go.uber.org/zap"
)

var ErrChartNotFound = errors.New("store: rate chart not found")

const schema = `
CREATE TABLE IF NOT EXISTS deposit_rate_chart_slab (
	bank                             TEXT        NOT NULL,
	currency_code                    TEXT        NOT NULL,
	tier                             TEXT        NOT NULL DEFAULT '',
	position                         INT         NOT NULL,
	description                      TEXT        NULL,
	period_type_enum                 SMALLINT    NOT NULL,
	from_period                      INT         NOT NULL,
	to_period                        INT         NULL,
	amount_range_from                NUMERIC(19,6) NULL,
	amount_range_to                  NUMERIC(19,6) NULL,
	annual_interest_rate             NUMERIC(19,6) NOT NULL,
	interest_rate_for_female         NUMERIC(19,6) NULL,
	interest_rate_for_children       NUMERIC(19,6) NULL,
	interest_rate_for_senior_citizen NUMERIC(19,6) NULL,
	effective_from                   DATE        NOT NULL,
	last_crawled_at                  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (bank, currency_code, tier, position)
)`

type Postgres struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(db *pgxpool.Pool, logger *zap.Logger) *Postgres {
	return &Postgres{db: db, logger: logger}
}

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return pool, nil
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create slab table: %w", err)
	}
	return nil
}

// UpsertChart replaces all stored slabs of the chart's bank, currency and tier
// in a single transaction.
// TODO: drop tiers of the bank that a later crawl no longer reports.
func (p *Postgres) UpsertChart(ctx context.Context, c model.RateChart) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM deposit_rate_chart_slab WHERE bank = $1 AND currency_code = $2 AND tier = $3`,
		string(c.Bank), c.Currency, c.Tier,
	); err != nil {
		return fmt.Errorf("failed to delete old slabs: %w", err)
	}

	batch := &pgx.Batch{}
	for i, s := range c.Slabs {
		f := s.Fields()
		batch.Queue(`
			INSERT INTO deposit_rate_chart_slab (
				bank, currency_code, tier, position, description, period_type_enum,
				from_period, to_period, amount_range_from, amount_range_to,
				annual_interest_rate, interest_rate_for_female, interest_rate_for_children,
				interest_rate_for_senior_citizen, effective_from, last_crawled_at
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::numeric,$10::numeric,$11::numeric,$12::numeric,$13::numeric,$14::numeric,$15,$16)`,
			string(c.Bank),
			c.Currency,
			c.Tier,
			i,
			f.Description,
			f.PeriodUnit.Code(),
			f.FromPeriod,
			f.ToPeriod,
			decimalText(f.AmountRangeFrom),
			decimalText(f.AmountRangeTo),
			f.BaseRate.String(),
			decimalText(f.FemaleRate),
			decimalText(f.ChildRate),
			decimalText(f.SeniorRate),
			dateValue(c.EffectiveFrom),
			c.LastCrawledAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range c.Slabs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert slab %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit slabs: %w", err)
	}
	p.logger.Debug("replaced chart slabs",
		zap.String("bank", string(c.Bank)),
		zap.String("currency", c.Currency),
		zap.String("tier", c.Tier),
		zap.Int("slabs", len(c.Slabs)),
	)
	return nil
}

// GetCharts reads back every amount tier chart of a bank and currency, ordered
// by tier, with slabs in stored order.
func (p *Postgres) GetCharts(ctx context.Context, bank model.Bank, currency string) ([]model.RateChart, error) {
	rows, err := p.db.Query(ctx, `
		SELECT tier, description, period_type_enum, from_period, to_period,
			amount_range_from::text, amount_range_to::text, annual_interest_rate::text,
			interest_rate_for_female::text, interest_rate_for_children::text,
			interest_rate_for_senior_citizen::text, effective_from, last_crawled_at
		FROM deposit_rate_chart_slab
		WHERE bank = $1 AND currency_code = $2
		ORDER BY tier, position`,
		string(bank), currency,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query slabs: %w", err)
	}
	defer rows.Close()

	var charts []model.RateChart
	for rows.Next() {
		var r slabRow
		var effectiveFrom, lastCrawledAt time.Time
		if err := rows.Scan(
			&r.tier,
			&r.description,
			&r.periodType,
			&r.fromPeriod,
			&r.toPeriod,
			&r.amountRangeFrom,
			&r.amountRangeTo,
			&r.baseRate,
			&r.femaleRate,
			&r.childRate,
			&r.seniorRate,
			&effectiveFrom,
			&lastCrawledAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan slab: %w", err)
		}

		slab, err := r.toSlab(currency)
		if err != nil {
			return nil, err
		}
		charts = appendSlab(charts, bank, currency, r.tier, slab)
		last := &charts[len(charts)-1]
		last.EffectiveFrom = civil.DateOf(effectiveFrom)
		last.LastCrawledAt = lastCrawledAt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read slabs: %w", err)
	}
	if len(charts) == 0 {
		return nil, ErrChartNotFound
	}
	return charts, nil
}

// appendSlab adds slab to the last chart when it belongs to the same tier and
// starts a new chart otherwise. Rows must arrive grouped by tier.
func appendSlab(charts []model.RateChart, bank model.Bank, currency, tier string, slab *model.Slab) []model.RateChart {
	if n := len(charts); n > 0 && charts[n-1].Tier == tier {
		charts[n-1].Slabs = append(charts[n-1].Slabs, slab)
		return charts
	}
	return append(charts, model.RateChart{
		Bank:     bank,
		Currency: currency,
		Tier:     tier,
		Slabs:    []*model.Slab{slab},
	})
}

type slabRow struct {
	tier            string
	description     *string
	periodType      int
	fromPeriod      int
	toPeriod        *int
	amountRangeFrom *string
	amountRangeTo   *string
	baseRate        string
	femaleRate      *string
	childRate       *string
	seniorRate      *string
}

func (r slabRow) toSlab(currency string) (*model.Slab, error) {
	unit, err := model.ParsePeriodUnit(r.periodType)
	if err != nil {
		return nil, fmt.Errorf("stored slab has bad period type: %w", err)
	}
	base, err := decimal.NewFromString(r.baseRate)
	if err != nil {
		return nil, fmt.Errorf("stored slab has bad annual interest rate: %w", err)
	}

	f := model.SlabFields{
		PeriodUnit:   unit,
		FromPeriod:   r.fromPeriod,
		ToPeriod:     r.toPeriod,
		BaseRate:     base,
		CurrencyCode: currency,
	}
	if r.description != nil {
		f.Description = *r.description
	}
	for _, d := range []struct {
		text *string
		dst  **decimal.Decimal
	}{
		{r.amountRangeFrom, &f.AmountRangeFrom},
		{r.amountRangeTo, &f.AmountRangeTo},
		{r.femaleRate, &f.FemaleRate},
		{r.childRate, &f.ChildRate},
		{r.seniorRate, &f.SeniorRate},
	} {
		if *d.dst, err = parseDecimalText(d.text); err != nil {
			return nil, err
		}
	}
	return model.NewSlab(f), nil
}

func decimalText(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseDecimalText(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored decimal '%s': %w", *s, err)
	}
	return &d, nil
}

func dateValue(d civil.Date) time.Time {
	return d.In(time.UTC)
}
