package fmp

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bighogz/sentiment-features/internal/calendar"
	"github.com/bighogz/sentiment-features/internal/models"
	"github.com/bighogz/sentiment-features/internal/trend"
)

// earningsLookback is how far before the range start announcements are
// requested so the first days of the range have a value to carry forward.
const earningsLookbackMonths = 6

// earningsLimitBuffer covers the announced-but-not-reported quarters FMP
// returns ahead of the range.
const earningsLimitBuffer = 4

type marketCapItem struct {
	Symbol    string              `json:"symbol"`
	Date      string              `json:"date"`
	MarketCap decimal.NullDecimal `json:"marketCap"`
}

type priceItem struct {
	Symbol   string   `json:"symbol"`
	Date     string   `json:"date"`
	AdjClose *float64 `json:"adjClose"`
}

type earningsItem struct {
	Symbol        string              `json:"symbol"`
	Date          string              `json:"date"`
	EPSActual     *float64            `json:"epsActual"`
	RevenueActual decimal.NullDecimal `json:"revenueActual"`
}

func rangeParams(ticker string, start, end time.Time) url.Values {
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("from", calendar.Format(start))
	params.Set("to", calendar.Format(end))
	return params
}

// GetMarketCap returns daily market capitalization for [start, end], sorted by date.
func (c *Client) GetMarketCap(ctx context.Context, ticker string, start, end time.Time) ([]models.MarketCapRecord, error) {
	var items []marketCapItem
	if err := c.get(ctx, "/historical-market-capitalization", rangeParams(ticker, start, end), &items); err != nil {
		return nil, fmt.Errorf("market cap %s: %w", ticker, err)
	}
	out := make([]models.MarketCapRecord, 0, len(items))
	for _, it := range items {
		d, err := calendar.Parse(it.Date)
		if err != nil || !it.MarketCap.Valid {
			continue
		}
		out = append(out, models.MarketCapRecord{Date: d, MarketCap: it.MarketCap.Decimal.IntPart()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// GetPrices returns dividend-adjusted closes for [start, end] sorted by date,
// with StockReturn filled. An empty array is ErrMalformedPayload.
func (c *Client) GetPrices(ctx context.Context, ticker string, start, end time.Time) ([]models.PriceRecord, error) {
	var items []priceItem
	if err := c.get(ctx, "/historical-price-eod/dividend-adjusted", rangeParams(ticker, start, end), &items); err != nil {
		return nil, fmt.Errorf("stock price %s: %w", ticker, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("stock price %s: %w", ticker, ErrMalformedPayload)
	}
	prices := make([]models.PriceRecord, 0, len(items))
	for _, it := range items {
		d, err := calendar.Parse(it.Date)
		if err != nil || it.AdjClose == nil || *it.AdjClose <= 0 {
			continue
		}
		prices = append(prices, models.PriceRecord{Date: d, StockPrice: *it.AdjClose})
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("stock price %s: no usable rows: %w", ticker, ErrMalformedPayload)
	}
	return trend.Returns(prices), nil
}

// GetEarnings returns reported announcements (EPS and revenue both present),
// oldest first, from six months before start through end.
func (c *Client) GetEarnings(ctx context.Context, ticker string, start, end time.Time) ([]models.EarningsRecord, error) {
	limit := calendar.Quarters(start, end) + earningsLimitBuffer
	params := rangeParams(ticker, start.AddDate(0, -earningsLookbackMonths, 0), end)
	params.Set("limit", strconv.Itoa(limit))

	var items []earningsItem
	if err := c.get(ctx, "/earnings", params, &items); err != nil {
		return nil, fmt.Errorf("earnings %s: %w", ticker, err)
	}
	out := make([]models.EarningsRecord, 0, len(items))
	for _, it := range items {
		if it.EPSActual == nil || !it.RevenueActual.Valid {
			continue
		}
		d, err := calendar.Parse(it.Date)
		if err != nil {
			continue
		}
		eps := *it.EPSActual
		rev := it.RevenueActual.Decimal.IntPart()
		out = append(out, models.EarningsRecord{Date: d, EPS: &eps, Revenue: &rev})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// GetDailyEarnings fetches announcements and forward-fills them onto [start, end].
func (c *Client) GetDailyEarnings(ctx context.Context, ticker string, start, end time.Time) ([]models.EarningsRecord, error) {
	ann, err := c.GetEarnings(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	return DailyEarnings(ann, start, end), nil
}

// DailyEarnings spreads announcements over every day in [start, end]: each day
// carries the latest announcement dated in [start, day]. Announcements before
// start are ignored, so days before the first in-range announcement carry nil
// values. No announcements yields an empty series.
func DailyEarnings(announcements []models.EarningsRecord, start, end time.Time) []models.EarningsRecord {
	if len(announcements) == 0 {
		return nil
	}
	ann := make([]models.EarningsRecord, len(announcements))
	copy(ann, announcements)
	sort.SliceStable(ann, func(i, j int) bool { return ann[i].Date.Before(ann[j].Date) })

	days := calendar.Range(start, end)
	out := make([]models.EarningsRecord, 0, len(days))
	next := 0
	for next < len(ann) && calendar.Day(ann[next].Date).Before(calendar.Day(start)) {
		next++
	}
	var last *models.EarningsRecord
	for _, d := range days {
		for next < len(ann) && !calendar.Day(ann[next].Date).After(d) {
			last = &ann[next]
			next++
		}
		row := models.EarningsRecord{Date: d}
		if last != nil {
			row.EPS = last.EPS
			row.Revenue = last.Revenue
		}
		out = append(out, row)
	}
	return out
}
