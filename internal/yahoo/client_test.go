package yahoo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yfclient "github.com/wnjoon/go-yfinance/pkg/client"
	yfmodels "github.com/wnjoon/go-yfinance/pkg/models"
)

var (
	may8  = time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC)
	may12 = time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
)

// open returns the 13:30 UTC NYSE open of day.
func open(day time.Time) time.Time {
	return day.Add(13*time.Hour + 30*time.Minute)
}

func TestGetPrices(t *testing.T) {
	var gotSym string
	var gotStart, gotEnd time.Time
	c, err := New(WithHistory(func(sym string, start, end time.Time) (Session, error) {
		gotSym, gotStart, gotEnd = sym, start, end
		return Session{GMTOffset: -14400, Bars: []yfmodels.Bar{
			{Date: open(may8), Close: 200, AdjClose: 100},
			{Date: open(may8.AddDate(0, 0, 1)), Close: 220},
			{Date: open(may12), Close: 0, AdjClose: 99},
			{Date: open(may12.AddDate(0, 0, 1)), Close: 300, AdjClose: 300},
		}}, nil
	}))
	require.NoError(t, err)

	prices, err := c.GetPrices(context.Background(), "BRK.B", may8, may12)
	require.NoError(t, err)

	assert.Equal(t, "BRK-B", gotSym)
	assert.Equal(t, may8, gotStart)
	assert.Equal(t, may12.AddDate(0, 0, 1), gotEnd, "end is exclusive upstream")

	require.Len(t, prices, 3, "bars after end are dropped")
	assert.Equal(t, may8, prices[0].Date)
	assert.Equal(t, 100.0, prices[0].StockPrice)
	assert.Equal(t, 220.0, prices[1].StockPrice, "falls back to close")
	assert.Equal(t, may12, prices[2].Date)
	assert.Nil(t, prices[0].StockReturn)
	require.NotNil(t, prices[2].StockReturn)
	assert.InDelta(t, 99.0/220-1, *prices[2].StockReturn, 1e-9)
}

func TestGetPricesEmptyHistory(t *testing.T) {
	c, err := New(WithHistory(func(string, time.Time, time.Time) (Session, error) {
		return Session{}, nil
	}))
	require.NoError(t, err)
	_, err = c.GetPrices(context.Background(), "AAPL", may8, may12)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestGetPricesNotFound(t *testing.T) {
	c, err := New(WithHistory(func(sym string, _, _ time.Time) (Session, error) {
		return Session{}, yfclient.WrapNotFoundError(sym)
	}))
	require.NoError(t, err)
	_, err = c.GetPrices(context.Background(), "ZZZZ", may8, may12)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestGetPricesTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	c, err := New(WithHistory(func(string, time.Time, time.Time) (Session, error) {
		return Session{}, boom
	}))
	require.NoError(t, err)
	_, err = c.GetPrices(context.Background(), "AAPL", may8, may12)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMalformedPayload)
}

func TestGetPricesCancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c, err := New(WithHistory(func(string, time.Time, time.Time) (Session, error) {
		<-release
		return Session{}, nil
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.GetPrices(ctx, "AAPL", may8, may12)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
