// Package yahoo fetches adjusted daily closes from Yahoo Finance through
// go-yfinance. It is the alternate price source (PRICE_SOURCE=yahoo).
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	yfclient "github.com/wnjoon/go-yfinance/pkg/client"
	yfmodels "github.com/wnjoon/go-yfinance/pkg/models"
	yfticker "github.com/wnjoon/go-yfinance/pkg/ticker"

	"github.com/bighogz/sentiment-features/internal/calendar"
	"github.com/bighogz/sentiment-features/internal/logger"
	"github.com/bighogz/sentiment-features/internal/models"
	"github.com/bighogz/sentiment-features/internal/trend"
)

// ErrMalformedPayload is returned when the history has no usable closes.
var ErrMalformedPayload = errors.New("yahoo: unexpected or empty chart response")

// Session holds the bars of one history request and the exchange UTC offset
// in seconds.
type Session struct {
	Bars      []yfmodels.Bar
	GMTOffset int
}

// HistoryFunc fetches daily bars for symbol in [start, end).
type HistoryFunc func(symbol string, start, end time.Time) (Session, error)

type Client struct {
	history HistoryFunc
	timeout time.Duration
	yf      *yfclient.Client
	log     *logger.Logger
}

type Option func(*Client)

// WithTimeout bounds each history request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHistory replaces the go-yfinance history call.
func WithHistory(f HistoryFunc) Option {
	return func(c *Client) { c.history = f }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(opts ...Option) (*Client, error) {
	c := &Client{timeout: 30 * time.Second, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.history != nil {
		return c, nil
	}
	secs := int(c.timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	yf, err := yfclient.New(yfclient.WithTimeout(secs))
	if err != nil {
		return nil, fmt.Errorf("yahoo: create client: %w", err)
	}
	c.yf = yf
	c.history = c.yfHistory
	return c, nil
}

// Close releases the go-yfinance client.
func (c *Client) Close() error {
	if c.yf != nil {
		c.yf.Close()
	}
	return nil
}

func (c *Client) yfHistory(symbol string, start, end time.Time) (Session, error) {
	t, err := yfticker.New(symbol, yfticker.WithClient(c.yf))
	if err != nil {
		return Session{}, err
	}
	bars, err := t.HistoryRange(start, end, "1d")
	if err != nil {
		return Session{}, err
	}
	s := Session{Bars: bars}
	if meta := t.GetHistoryMetadata(); meta != nil {
		s.GMTOffset = meta.GMTOffset
	}
	return s, nil
}

// ToYahooSymbol converts share-class symbols to Yahoo format: BRK.B -> BRK-B.
func ToYahooSymbol(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ".", "-")
}

type historyResult struct {
	s   Session
	err error
}

// GetPrices returns adjusted daily closes for [start, end] sorted by date with
// StockReturn filled. go-yfinance has no context support, so cancellation
// abandons the in-flight request.
func (c *Client) GetPrices(ctx context.Context, ticker string, start, end time.Time) ([]models.PriceRecord, error) {
	sym := ToYahooSymbol(ticker)
	from, to := calendar.Day(start), calendar.Day(end)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan historyResult, 1)
	go func() {
		s, err := c.history(sym, from, to.AddDate(0, 0, 1))
		done <- historyResult{s, err}
	}()
	var res historyResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}
	if res.err != nil {
		if yfclient.IsNotFoundError(res.err) || yfclient.IsNoDataError(res.err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, sym, res.err)
		}
		return nil, fmt.Errorf("yahoo history %s: %w", sym, res.err)
	}

	offset := time.Duration(res.s.GMTOffset) * time.Second
	prices := make([]models.PriceRecord, 0, len(res.s.Bars))
	for _, b := range res.s.Bars {
		// Exchange-local date of the session.
		d := calendar.Day(b.Date.UTC().Add(offset))
		if d.Before(from) || d.After(to) {
			continue
		}
		v := b.AdjClose
		if v <= 0 {
			v = b.Close
		}
		if v <= 0 {
			continue
		}
		prices = append(prices, models.PriceRecord{Date: d, StockPrice: v})
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: %s: no closes in range", ErrMalformedPayload, sym)
	}
	c.log.Debugw("yahoo history fetched", "symbol", sym, "rows", len(prices))
	return trend.Returns(prices), nil
}
