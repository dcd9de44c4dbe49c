package crawler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/antchfx/htmlquery"
	"github.com/shopspring/decimal"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const termHeader = "Bindningstid"

var (
	_ SiteCrawler = &DepositTableCrawler{}

	whitespace = regexp.MustCompile(`\s+`)
	termRange  = regexp.MustCompile(`^(\d+)(-)?(\d+)?([a-zåäö]+)(-)?$`)
	amountSpan = regexp.MustCompile(`^(\d+(?:\.\d+)?)?-(\d+(?:\.\d+)?)?$`)
)

// DepositTableCrawler reads a bank's published deposit rate table. The table is
// found by its "Bindningstid" header cell and has one slab per row:
// term range, amount range, base rate and an optional senior citizen rate.
// Rows sharing a term but not an amount range are split into one chart per
// amount tier; rows without an amount range belong to every tier.
type DepositTableCrawler struct {
	bank     model.Bank
	url      string
	currency string
	load     func(url string) (*html.Node, error)
	logger   *zap.Logger
}

func NewDepositTableCrawler(bank model.Bank, url, currency string, logger *zap.Logger) *DepositTableCrawler {
	return &DepositTableCrawler{
		bank:     bank,
		url:      url,
		currency: currency,
		load:     htmlquery.LoadURL,
		logger:   logger,
	}
}

func (d DepositTableCrawler) Crawl(channel chan<- model.RateChart) {
	crawlTime := time.Now()
	doc, err := d.load(d.url)
	if err != nil {
		d.logger.Error("failed reading bank website", zap.String("url", d.url), zap.Error(err))
		return
	}
	d.logger.Debug("parsed root nodes")

	charts, err := d.parseDocument(doc, crawlTime)
	if err != nil {
		d.logger.Error("failed to parse deposit rate table", zap.String("url", d.url), zap.Error(err))
		return
	}

	for _, chart := range charts {
		d.logger.Debug("parsed rate chart", zap.String("tier", chart.Tier), zap.Int("slabs", len(chart.Slabs)))
		channel <- chart
	}
}

func (d DepositTableCrawler) parseDocument(doc *html.Node, crawlTime time.Time) ([]model.RateChart, error) {
	tables, err := htmlquery.QueryAll(doc, "//table[.//td[contains(., '"+termHeader+"')]]")
	if err != nil {
		return nil, fmt.Errorf("failed to xpath table with deposit rates: %w", err)
	}
	if len(tables) != 1 {
		return nil, fmt.Errorf("expected one deposit rate table, found %d", len(tables))
	}

	slabs, err := d.parseTable(tables[0])
	if err != nil {
		return nil, err
	}

	tiers := splitTiers(slabs)
	charts := make([]model.RateChart, 0, len(tiers))
	for _, t := range tiers {
		charts = append(charts, model.RateChart{
			Bank:          d.bank,
			Currency:      d.currency,
			Tier:          t.label,
			Slabs:         t.slabs,
			EffectiveFrom: civil.DateOf(crawlTime),
			LastCrawledAt: crawlTime,
		})
	}
	return charts, nil
}

type amountTier struct {
	label string
	slabs []*model.Slab
}

// splitTiers groups slabs by amount range in table order. Slabs without an
// amount range are copied into every tier. Without any amount range the table
// is a single untiered chart.
func splitTiers(slabs []*model.Slab) []amountTier {
	var tiers []amountTier
	index := make(map[string]int)
	for _, s := range slabs {
		if s.AmountRangeFrom() == nil && s.AmountRangeTo() == nil {
			continue
		}
		label := tierLabel(s)
		if _, ok := index[label]; !ok {
			index[label] = len(tiers)
			tiers = append(tiers, amountTier{label: label})
		}
	}
	if len(tiers) == 0 {
		return []amountTier{{slabs: slabs}}
	}

	for _, s := range slabs {
		if s.AmountRangeFrom() == nil && s.AmountRangeTo() == nil {
			for i := range tiers {
				tiers[i].slabs = append(tiers[i].slabs, model.NewSlab(s.Fields()))
			}
			continue
		}
		i := index[tierLabel(s)]
		tiers[i].slabs = append(tiers[i].slabs, s)
	}
	return tiers
}

// tierLabel renders an amount range as "0-99999", "100000-" or "-49999".
func tierLabel(s *model.Slab) string {
	label := ""
	if from := s.AmountRangeFrom(); from != nil {
		label = from.String()
	}
	label += "-"
	if to := s.AmountRangeTo(); to != nil {
		label += to.String()
	}
	return label
}

func (d DepositTableCrawler) parseTable(table *html.Node) ([]*model.Slab, error) {
	rowNodes, err := htmlquery.QueryAll(table, ".//tr")
	if err != nil {
		return nil, fmt.Errorf("failed to xpath rows: %w", err)
	}

	rows, err := parseRows(rowNodes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rows: %w", err)
	}
	if len(rows) == 0 || !strings.Contains(rows[0].title, termHeader) {
		return nil, fmt.Errorf("source table structure seems to have changed... fix parser?")
	}

	slabs := make([]*model.Slab, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row.fields) < 2 {
			return nil, fmt.Errorf("row %v has %d fields, want at least 2", row, len(row.fields))
		}

		unit, from, to, err := parseTermRange(row.title)
		if err != nil {
			return nil, fmt.Errorf("failed to parse term for row %v: %w", row, err)
		}
		amountFrom, amountTo, err := parseAmountRange(row.fields[0])
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount range for row %v: %w", row, err)
		}
		rate, err := parseRate(row.fields[1])
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate for row %v: %w", row, err)
		}
		if rate == nil {
			return nil, fmt.Errorf("row %v has no base rate", row)
		}

		var seniorRate *decimal.Decimal
		if len(row.fields) > 2 {
			if seniorRate, err = parseRate(row.fields[2]); err != nil {
				return nil, fmt.Errorf("failed to parse senior rate for row %v: %w", row, err)
			}
		}

		slabs = append(slabs, model.NewSlab(model.SlabFields{
			Description:     row.title,
			PeriodUnit:      unit,
			FromPeriod:      from,
			ToPeriod:        to,
			AmountRangeFrom: amountFrom,
			AmountRangeTo:   amountTo,
			BaseRate:        *rate,
			SeniorRate:      seniorRate,
			CurrencyCode:    d.currency,
		}))
	}

	return slabs, nil
}

// parseTermRange understands "3-5 mån", "6 mån", "12 mån-" and "12- mån".
// A trailing or dangling dash leaves the range open ended.
func parseTermRange(title string) (model.PeriodUnit, int, *int, error) {
	cleaned := strings.ToLower(whitespace.ReplaceAllString(title, "")) // remove spaces
	m := termRange.FindStringSubmatch(cleaned)
	if m == nil {
		return model.PeriodInvalid, 0, nil, fmt.Errorf("failed to parse term range from string '%s' (sanitized: '%s')", title, cleaned)
	}

	unit, err := parseUnit(m[4])
	if err != nil {
		return model.PeriodInvalid, 0, nil, err
	}

	from, _ := strconv.Atoi(m[1])
	switch {
	case m[3] != "":
		to, _ := strconv.Atoi(m[3])
		return unit, from, &to, nil
	case m[2] != "" || m[5] != "":
		return unit, from, nil, nil
	default:
		to := from
		return unit, from, &to, nil
	}
}

func parseUnit(s string) (model.PeriodUnit, error) {
	switch s {
	case "dag", "dagar":
		return model.PeriodDays, nil
	case "vecka", "veckor":
		return model.PeriodWeeks, nil
	case "mån", "månad", "månader":
		return model.PeriodMonths, nil
	case "år":
		return model.PeriodYears, nil
	default:
		return model.PeriodInvalid, fmt.Errorf("failed to parse period unit from string '%s'", s)
	}
}

// parseAmountRange understands "0 - 99 999", "100 000 -", "- 49 999 kr" and an
// empty cell for no bounds.
func parseAmountRange(cell string) (*decimal.Decimal, *decimal.Decimal, error) {
	cleaned := whitespace.ReplaceAllString(cell, "")
	cleaned = strings.TrimSuffix(cleaned, "kr")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" || cleaned == "-" {
		return nil, nil, nil
	}

	m := amountSpan.FindStringSubmatch(cleaned)
	if m == nil {
		return nil, nil, fmt.Errorf("failed to parse amount range from string '%s' (sanitized: '%s')", cell, cleaned)
	}

	var from, to *decimal.Decimal
	if m[1] != "" {
		v := decimal.RequireFromString(m[1])
		from = &v
	}
	if m[2] != "" {
		v := decimal.RequireFromString(m[2])
		to = &v
	}
	return from, to, nil
}

// parseRate reads "1,25 %" style cells. "-" and empty cells mean no rate.
func parseRate(cell string) (*decimal.Decimal, error) {
	sanitized := whitespace.ReplaceAllString(cell, "")
	sanitized = strings.ReplaceAll(sanitized, "%", "")
	sanitized = strings.ReplaceAll(sanitized, "*", "")
	if sanitized == "" || sanitized == "-" {
		return nil, nil
	}

	rate, err := decimal.NewFromString(strings.Replace(sanitized, ",", ".", -1))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate for string '%s' (sanitized: '%s'): %w", cell, sanitized, err)
	}
	return &rate, nil
}

func parseRows(rows []*html.Node) ([]rowStruct, error) {
	rowStructs := make([]rowStruct, 0, len(rows))
	for _, rowNode := range rows {
		cells, err := htmlquery.QueryAll(rowNode, ".//td")
		if err != nil {
			return nil, fmt.Errorf("failed to xpath cells: %w", err)
		}
		if len(cells) == 0 { // header rows made of <th>
			continue
		}

		titleCellText := getAllTextFromNode(cells[0])
		fieldTexts := make([]string, 0, len(cells)-1)
		for _, cell := range cells[1:] {
			fieldTexts = append(fieldTexts, getAllTextFromNode(cell))
		}

		rowStructs = append(rowStructs, rowStruct{
			title:  titleCellText,
			fields: fieldTexts,
		})
	}

	return rowStructs, nil
}

func getAllTextFromNode(node *html.Node) string {
	out := ""
	if node != nil {
		if node.Type == html.TextNode {
			out += " " + node.Data
		}

		// iterate over children
		nextNode := node.FirstChild
		for nextNode != nil {
			out += " " + getAllTextFromNode(nextNode)
			nextNode = nextNode.NextSibling
		}
	}

	out = strings.ReplaceAll(out, "\u00a0", " ") // non-breaking spaces in amounts
	out = whitespace.ReplaceAllString(out, " ")  // merge multi-spaces
	out = strings.Trim(out, " ")                 // trim spaces left and right
	return out
}

type rowStruct struct {
	title  string
	fields []string
}
