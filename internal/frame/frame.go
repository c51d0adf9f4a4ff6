// Package frame implements a small date-indexed table of nullable float columns
// and the outer join used to align per-source daily series.
package frame

import (
	"fmt"
	"sort"
	"time"

	"github.com/bighogz/sentiment-features/internal/calendar"
)

// Frame is a table keyed by calendar day. Cells are nil when absent. Cells are
// float64, so integer columns such as market cap or revenue stay exact only up
// to 2^53.
type Frame struct {
	Source  string
	Columns []string

	rows map[time.Time][]*float64
}

func New(source string, columns ...string) *Frame {
	return &Frame{
		Source:  source,
		Columns: append([]string(nil), columns...),
		rows:    make(map[time.Time][]*float64),
	}
}

func (f *Frame) colIndex(col string) int {
	for i, c := range f.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Set stores v in (day, col). It creates the row if needed; v may be nil.
func (f *Frame) Set(day time.Time, col string, v *float64) error {
	idx := f.colIndex(col)
	if idx < 0 {
		return fmt.Errorf("frame %s: unknown column %q", f.Source, col)
	}
	d := calendar.Day(day)
	row, ok := f.rows[d]
	if !ok {
		row = make([]*float64, len(f.Columns))
		f.rows[d] = row
	}
	if v != nil {
		x := *v
		v = &x
	}
	row[idx] = v
	return nil
}

// SetFloat is Set for a present value.
func (f *Frame) SetFloat(day time.Time, col string, v float64) error {
	return f.Set(day, col, &v)
}

// Value returns the cell at (day, col); nil when the row or value is absent.
func (f *Frame) Value(day time.Time, col string) *float64 {
	idx := f.colIndex(col)
	if idx < 0 {
		return nil
	}
	row, ok := f.rows[calendar.Day(day)]
	if !ok {
		return nil
	}
	return row[idx]
}

// Has reports whether a row exists for day.
func (f *Frame) Has(day time.Time) bool {
	_, ok := f.rows[calendar.Day(day)]
	return ok
}

// Days returns the row keys in ascending order.
func (f *Frame) Days() []time.Time {
	days := make([]time.Time, 0, len(f.rows))
	for d := range f.rows {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func (f *Frame) Len() int { return len(f.rows) }

// Rename changes column names in place. Unknown names are ignored.
func (f *Frame) Rename(names map[string]string) {
	for i, c := range f.Columns {
		if n, ok := names[c]; ok {
			f.Columns[i] = n
		}
	}
}

// Reindex returns a frame holding exactly the given days: rows outside are
// dropped, missing days get an all-nil row.
func (f *Frame) Reindex(days []time.Time) *Frame {
	out := New(f.Source, f.Columns...)
	for _, d := range days {
		d = calendar.Day(d)
		row := make([]*float64, len(f.Columns))
		if src, ok := f.rows[d]; ok {
			copy(row, src)
		}
		out.rows[d] = row
	}
	return out
}

// OuterJoin merges frames on date, keeping every day present in any input.
// A column name used by more than one frame becomes "<column>_<source>" in each
// of them, which makes the result independent of argument order apart from
// column ordering.
func OuterJoin(source string, frames ...*Frame) (*Frame, error) {
	seen := make(map[string]int)
	for _, f := range frames {
		for _, c := range f.Columns {
			seen[c]++
		}
	}

	var columns []string
	offsets := make([]int, len(frames))
	for i, f := range frames {
		offsets[i] = len(columns)
		for _, c := range f.Columns {
			if seen[c] > 1 {
				c = c + "_" + f.Source
			}
			columns = append(columns, c)
		}
	}

	dup := make(map[string]bool, len(columns))
	for _, c := range columns {
		if dup[c] {
			return nil, fmt.Errorf("outer join: column %q is ambiguous; give frames distinct sources", c)
		}
		dup[c] = true
	}

	out := New(source, columns...)
	for i, f := range frames {
		for d, src := range f.rows {
			row, ok := out.rows[d]
			if !ok {
				row = make([]*float64, len(columns))
				out.rows[d] = row
			}
			copy(row[offsets[i]:offsets[i]+len(src)], src)
		}
	}
	return out, nil
}
