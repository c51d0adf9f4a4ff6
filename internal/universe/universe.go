// Package universe resolves ticker symbols to company names from the S&P 500
// constituents list. The social search uses the name as its keyword.
package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"github.com/bighogz/sentiment-features/internal/httpclient"
)

const DefaultCSVURL = "https://raw.githubusercontent.com/datasets/s-and-p-500-companies/master/data/constituents.csv"

type Company struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	SubIndustry string `json:"sub_industry,omitempty"`
}

// Load fetches and parses the constituents CSV.
func Load(ctx context.Context, h *http.Client, csvURL string) ([]Company, error) {
	if h == nil {
		h = httpclient.Default
	}
	if csvURL == "" {
		csvURL = DefaultCSVURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch constituents: status %d", resp.StatusCode)
	}

	rows, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse constituents: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("parse constituents: no rows")
	}
	symIdx, nameIdx, sectorIdx, subIdx := -1, -1, -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "symbol":
			symIdx = i
		case "security", "name":
			nameIdx = i
		case "gics sector", "sector":
			sectorIdx = i
		case "gics sub-industry":
			subIdx = i
		}
	}
	if symIdx < 0 {
		return nil, fmt.Errorf("parse constituents: no Symbol column")
	}

	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	seen := make(map[string]bool)
	out := make([]Company, 0, len(rows)-1)
	for _, row := range rows[1:] {
		sym := cell(row, symIdx)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		c := Company{Symbol: sym, Name: cell(row, nameIdx), Sector: cell(row, sectorIdx), SubIndustry: cell(row, subIdx)}
		if c.Sector == "" {
			c.Sector = "Unknown"
		}
		out = append(out, c)
	}
	return out, nil
}

// Lookup finds symbol (case-insensitive, BRK-B matches BRK.B).
func Lookup(companies []Company, symbol string) (Company, bool) {
	want := normalize(symbol)
	for _, c := range companies {
		if normalize(c.Symbol) == want {
			return c, true
		}
	}
	return Company{}, false
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", ".")
}

var corporateSuffixes = []string{
	" inc.", " inc", " corporation", " corp.", " corp", " company", " co.",
	" plc", " ltd.", " ltd", " holdings", " group", " n.v.", " s.a.",
}

// ShortName trims share-class notes and corporate suffixes:
// "Apple Inc." -> "Apple", "Alphabet Inc. (Class A)" -> "Alphabet".
func ShortName(name string) string {
	if i := strings.Index(name, "("); i > 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), ","))
	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(name)
		for _, s := range corporateSuffixes {
			if strings.HasSuffix(lower, s) && len(name) > len(s) {
				name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name[:len(name)-len(s)]), ","))
				changed = true
				break
			}
		}
	}
	return name
}
