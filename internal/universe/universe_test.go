package universe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const constituents = `Symbol,Security,GICS Sector,GICS Sub-Industry,Headquarters Location
AAPL,Apple Inc.,Information Technology,"Technology Hardware, Storage & Peripherals","Cupertino, California"
BRK.B,Berkshire Hathaway,Financials,Multi-Sector Holdings,"Omaha, Nebraska"
GOOGL,Alphabet Inc. (Class A),Communication Services,Interactive Media & Services,"Mountain View, California"
AAPL,Apple Duplicate,,,
`

func TestLoadAndLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, constituents)
	}))
	defer srv.Close()

	companies, err := Load(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	require.Len(t, companies, 3)

	c, ok := Lookup(companies, "aapl")
	require.True(t, ok)
	assert.Equal(t, "Apple Inc.", c.Name)
	assert.Equal(t, "Information Technology", c.Sector)

	c, ok = Lookup(companies, "BRK-B")
	require.True(t, ok)
	assert.Equal(t, "Berkshire Hathaway", c.Name)

	_, ok = Lookup(companies, "ZZZZ")
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "Ticker,Name\nAAPL,Apple\n")
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.Client(), srv.URL+"/missing")
	assert.Error(t, err)
	_, err = Load(context.Background(), srv.Client(), srv.URL)
	assert.Error(t, err, "no Symbol column")
}

func TestShortName(t *testing.T) {
	tests := map[string]string{
		"Apple Inc.":                 "Apple",
		"Alphabet Inc. (Class A)":    "Alphabet",
		"Microsoft Corporation":      "Microsoft",
		"Berkshire Hathaway":         "Berkshire Hathaway",
		"Coca-Cola Company (The)":    "Coca-Cola",
		"Amcor plc":                  "Amcor",
		"Goldman Sachs Group, Inc.":  "Goldman Sachs",
	}
	for in, want := range tests {
		assert.Equal(t, want, ShortName(in), in)
	}
}
