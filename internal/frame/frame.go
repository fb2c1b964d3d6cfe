// Package frame holds the tabular result model shared by all variable
// calculators: ordered columns keyed by a region code, outer merge on the
// key, and the reshape helpers for PostGIS composite outputs.
package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// StatLabels is the column order of a PostGIS ST_SummaryStats composite.
var StatLabels = []string{"count", "sum", "mean", "std", "min", "max"}

// Frame is an ordered table keyed by a region code column. The key column
// is always first in Columns.
type Frame struct {
	Key     string
	Columns []string

	rows  []map[string]any
	index map[string]int
}

// New creates an empty frame. The key column is prepended to cols if absent.
func New(key string, cols ...string) *Frame {
	columns := make([]string, 0, len(cols)+1)
	columns = append(columns, key)
	for _, c := range cols {
		if c != key {
			columns = append(columns, c)
		}
	}
	return &Frame{
		Key:     key,
		Columns: columns,
		index:   make(map[string]int),
	}
}

// Append adds a row. The row must carry a non-nil key value; a duplicate
// key overwrites the previous row's cells.
func (f *Frame) Append(row map[string]any) error {
	kv, ok := row[f.Key]
	if !ok || kv == nil {
		return eris.Errorf("frame: row missing key column %q", f.Key)
	}
	k := keyString(kv)
	if i, exists := f.index[k]; exists {
		for c, v := range row {
			f.rows[i][c] = v
		}
		return nil
	}
	r := make(map[string]any, len(row))
	for c, v := range row {
		r[c] = v
	}
	f.index[k] = len(f.rows)
	f.rows = append(f.rows, r)
	return nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// Row returns the i-th row. The returned map is live; callers that mutate
// it mutate the frame.
func (f *Frame) Row(i int) map[string]any { return f.rows[i] }

// Value returns the cell for a key value and column, or nil.
func (f *Frame) Value(key, column string) any {
	i, ok := f.index[key]
	if !ok {
		return nil
	}
	return f.rows[i][column]
}

// Keys returns the key values in row order.
func (f *Frame) Keys() []string {
	keys := make([]string, len(f.rows))
	for i, r := range f.rows {
		keys[i] = keyString(r[f.Key])
	}
	return keys
}

// AddColumn registers a column name without populating any cells.
func (f *Frame) AddColumn(name string) {
	for _, c := range f.Columns {
		if c == name {
			return
		}
	}
	f.Columns = append(f.Columns, name)
}

// Merge outer-joins two frames on their shared key column. Row order is the
// left frame's keys followed by right-only keys; columns are the left
// columns followed by right-only columns. Cells present on both sides keep
// the left value.
func (f *Frame) Merge(other *Frame) (*Frame, error) {
	if other == nil {
		return f, nil
	}
	if f.Key != other.Key {
		return nil, eris.Errorf("frame: merge key mismatch: %q vs %q", f.Key, other.Key)
	}

	merged := New(f.Key)
	for _, c := range f.Columns[1:] {
		merged.AddColumn(c)
	}
	for _, c := range other.Columns[1:] {
		merged.AddColumn(c)
	}

	for _, r := range f.rows {
		if err := merged.Append(r); err != nil {
			return nil, err
		}
	}
	for _, r := range other.rows {
		k := keyString(r[other.Key])
		if i, ok := merged.index[k]; ok {
			row := merged.rows[i]
			for c, v := range r {
				if _, exists := row[c]; !exists {
					row[c] = v
				}
			}
			continue
		}
		if err := merged.Append(r); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// MergeAll outer-joins a list of frames left to right.
func MergeAll(frames []*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return nil, eris.New("frame: no frames to merge")
	}
	merged := frames[0]
	var err error
	for _, fr := range frames[1:] {
		merged, err = merged.Merge(fr)
		if err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// FromRows drains a pgx row set into a frame keyed by key. Column names and
// order come from the result set's field descriptions; the key column must
// be among them.
func FromRows(key string, rows pgx.Rows) (*Frame, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	hasKey := false
	for i, fd := range fields {
		cols[i] = string(fd.Name)
		if cols[i] == key {
			hasKey = true
		}
	}
	if !hasKey {
		return nil, eris.Errorf("frame: result set has no key column %q", key)
	}

	f := New(key, cols...)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "frame: read row values")
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		if err := f.Append(row); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "frame: iterate rows")
	}
	return f, nil
}

// Records returns the rows in JSON records orientation.
func (f *Frame) Records() []map[string]any {
	records := make([]map[string]any, len(f.rows))
	for i, r := range f.rows {
		rec := make(map[string]any, len(f.Columns))
		for _, c := range f.Columns {
			rec[c] = r[c]
		}
		records[i] = rec
	}
	return records
}

// WriteCSV writes the frame with a header row. Missing cells are empty.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns); err != nil {
		return eris.Wrap(err, "frame: write csv header")
	}
	record := make([]string, len(f.Columns))
	for _, r := range f.rows {
		for i, c := range f.Columns {
			record[i] = cellString(r[c])
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "frame: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "frame: flush csv")
}

// SplitStats splits a PostGIS ST_SummaryStats composite literal like
// "(1234,56.7,0.046,0.01,-0.2,0.9)" into its six components. NULL
// components come back as empty strings.
func SplitStats(s string) ([]string, error) {
	trimmed := strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	parts := strings.Split(trimmed, ",")
	if len(parts) != len(StatLabels) {
		return nil, eris.Errorf("frame: expected %d summary stats, got %d in %q", len(StatLabels), len(parts), s)
	}
	return parts, nil
}

// StatValue parses one summary stat component. Empty components map to nil.
func StatValue(s string) any {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return v
}

func keyString(v any) string {
	switch k := v.(type) {
	case string:
		return k
	case []byte:
		return string(k)
	default:
		return fmt.Sprintf("%v", k)
	}
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(c), 'g', -1, 32)
	default:
		return fmt.Sprintf("%v", c)
	}
}
