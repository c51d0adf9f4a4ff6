// Package regression fits an ordinary least squares model of the daily stock
// return on the sentiment and market features of the final table.
package regression

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/bighogz/sentiment-features/internal/calendar"
	"github.com/bighogz/sentiment-features/internal/export"
)

const (
	Target = "stock_return"
	// ColTime is the day index since the first row of the table.
	ColTime = "time"

	DefaultTestFraction = 0.2
	DefaultSeed         = 42
)

// Features is the default regressor set.
var Features = []string{
	"news_sentiment",
	"num_articles",
	"reddit_sentiment",
	"reddit_post_volume",
	"market_cap",
	ColTime,
}

type Sample struct {
	Date time.Time
	X    []float64
	Y    float64
}

// FromTable extracts complete samples. Rows missing any feature or the target
// are dropped; the time feature is computed from the date column.
func FromTable(t export.Table, features []string) ([]Sample, error) {
	dateCol := t.Col("date")
	if dateCol < 0 {
		return nil, fmt.Errorf("table %s: no date column", t.Name)
	}
	targetCol := t.Col(Target)
	if targetCol < 0 {
		return nil, fmt.Errorf("table %s: no %s column", t.Name, Target)
	}
	cols := make([]int, len(features))
	for i, f := range features {
		if f == ColTime {
			cols[i] = -1
			continue
		}
		if cols[i] = t.Col(f); cols[i] < 0 {
			return nil, fmt.Errorf("table %s: no %s column", t.Name, f)
		}
	}

	dates := make([]time.Time, len(t.Rows))
	var first time.Time
	for i, row := range t.Rows {
		d, err := calendar.Parse(export.String(row[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if first.IsZero() || d.Before(first) {
			first = d
		}
		dates[i] = d
	}

	var samples []Sample
	for r, row := range t.Rows {
		y, ok := export.Float(row[targetCol])
		if !ok {
			continue
		}
		x := make([]float64, len(features))
		complete := true
		for i, c := range cols {
			if c < 0 {
				x[i] = math.Round(dates[r].Sub(first).Hours() / 24)
				continue
			}
			if x[i], ok = export.Float(row[c]); !ok {
				complete = false
				break
			}
		}
		if complete {
			samples = append(samples, Sample{Date: dates[r], X: x, Y: y})
		}
	}
	return samples, nil
}

// Split shuffles with a fixed seed and holds out ceil(n*testFraction) samples.
func Split(samples []Sample, testFraction float64, seed int64) (train, test []Sample) {
	nTest := int(math.Ceil(float64(len(samples)) * testFraction))
	if nTest >= len(samples) {
		nTest = 0
	}
	perm := rand.New(rand.NewSource(seed)).Perm(len(samples))
	for i, p := range perm {
		if i < nTest {
			test = append(test, samples[p])
		} else {
			train = append(train, samples[p])
		}
	}
	return train, test
}

// Model holds the intercept and one coefficient per feature.
type Model struct {
	Features     []string
	Intercept    float64
	Coefficients []float64
	// Condition is set when the design matrix was near-singular.
	Condition float64
}

// Fit solves the least squares problem with an intercept column.
func Fit(train []Sample, features []string) (*Model, error) {
	n, p := len(train), len(features)
	if n < p+1 {
		return nil, fmt.Errorf("need at least %d complete rows to fit %d features, have %d", p+1, p, n)
	}
	x := mat.NewDense(n, p+1, nil)
	y := mat.NewVecDense(n, nil)
	for i, s := range train {
		x.Set(i, 0, 1)
		for j, v := range s.X {
			x.Set(i, j+1, v)
		}
		y.SetVec(i, s.Y)
	}

	var beta mat.VecDense
	m := &Model{Features: features}
	if err := beta.SolveVec(x, y); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("solve least squares: %w", err)
		}
		m.Condition = float64(cond)
	}
	m.Intercept = beta.AtVec(0)
	m.Coefficients = make([]float64, p)
	for j := range m.Coefficients {
		m.Coefficients[j] = beta.AtVec(j + 1)
	}
	return m, nil
}

func (m *Model) Predict(x []float64) float64 {
	out := m.Intercept
	for i, c := range m.Coefficients {
		out += c * x[i]
	}
	return out
}

type Prediction struct {
	Date      time.Time
	Actual    float64
	Predicted float64
}

type Report struct {
	Model       *Model
	R2          float64
	RMSE        float64
	NTrain      int
	NTest       int
	Predictions []Prediction
}

// Evaluate scores the model on held-out samples. R2 is NaN with fewer than two.
func Evaluate(m *Model, test []Sample) *Report {
	r := &Report{Model: m, NTest: len(test), R2: math.NaN(), RMSE: math.NaN()}
	if len(test) == 0 {
		return r
	}
	est := make([]float64, len(test))
	vals := make([]float64, len(test))
	var sse float64
	for i, s := range test {
		est[i] = m.Predict(s.X)
		vals[i] = s.Y
		sse += (est[i] - vals[i]) * (est[i] - vals[i])
		r.Predictions = append(r.Predictions, Prediction{Date: s.Date, Actual: s.Y, Predicted: est[i]})
	}
	r.RMSE = math.Sqrt(sse / float64(len(test)))
	if len(test) > 1 {
		r.R2 = stat.RSquaredFrom(est, vals, nil)
	}
	return r
}

// Train runs the split, fit and evaluation on a final feature table.
func Train(t export.Table, features []string, testFraction float64, seed int64) (*Report, error) {
	samples, err := FromTable(t, features)
	if err != nil {
		return nil, err
	}
	train, test := Split(samples, testFraction, seed)
	m, err := Fit(train, features)
	if err != nil {
		return nil, err
	}
	r := Evaluate(m, test)
	r.NTrain = len(train)
	return r, nil
}

// PredictionsTable renders held-out predictions in date order.
func (r *Report) PredictionsTable() export.Table {
	t := export.Table{Name: "predictions", Header: []string{"date", "actual_return", "predicted_return"}}
	preds := append([]Prediction(nil), r.Predictions...)
	sort.Slice(preds, func(i, j int) bool { return preds[i].Date.Before(preds[j].Date) })
	for _, p := range preds {
		t.Rows = append(t.Rows, []interface{}{calendar.Format(p.Date), p.Actual, p.Predicted})
	}
	return t
}
