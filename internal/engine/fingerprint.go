package engine

import (
	"fmt"
	"strings"
	"time"

	"dbf-pump/internal/dbf"
	"dbf-pump/internal/schema"

	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02T15:04:05.000"
)

// DefaultKeyFields identify one visit: patient, date, time.
var DefaultKeyFields = []string{"wz__pat", "wz__dat", "wz_time"}

// Fingerprint is the canonical text of a record's natural key.
type Fingerprint string

// NaturalKey knows where the key fields sit in a source record and how
// their values are canonicalized.
type NaturalKey struct {
	cols []*schema.Column
	pos  []int
}

// NewNaturalKey resolves field names (case-insensitive) against the
// foreign columns of tbl.
func NewNaturalKey(tbl *schema.Table, fields []string) (*NaturalKey, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no key fields configured", ErrKeyField)
	}
	foreign := tbl.ForeignColumns()
	k := &NaturalKey{}
	for _, name := range fields {
		found := -1
		for i, c := range foreign {
			if strings.EqualFold(c.Name, name) {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("%w: %s has no field %q", ErrKeyField, tbl.Name, name)
		}
		k.cols = append(k.cols, foreign[found])
		k.pos = append(k.pos, found)
	}
	return k, nil
}

// Columns returns the store column names of the key fields.
func (k *NaturalKey) Columns() []string {
	names := make([]string, len(k.cols))
	for i, c := range k.cols {
		names[i] = c.Name
	}
	return names
}

// Of computes the fingerprint of a source record.
func (k *NaturalKey) Of(rec dbf.Record) Fingerprint {
	vals := make([]any, len(k.pos))
	for i, p := range k.pos {
		vals[i] = rec[p]
	}
	return k.fromValues(vals)
}

// fromValues computes the fingerprint of key values in Columns order, as
// read back from the store.
func (k *NaturalKey) fromValues(vals []any) Fingerprint {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = canonical(v, k.cols[i].DataType)
	}
	return Fingerprint(strings.Join(parts, "\x1f"))
}

// canonical renders a key component so that a value parsed from a DBF file
// and the same value read back from any store produce the same text. NULL
// and empty text are the same.
func canonical(v any, t schema.ColumnType) string {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if v == nil {
		return ""
	}

	switch t {
	case schema.TypeDate:
		switch x := v.(type) {
		case time.Time:
			return x.Format(dateLayout)
		case string:
			if len(x) >= len(dateLayout) {
				if d, err := time.Parse(dateLayout, x[:len(dateLayout)]); err == nil {
					return d.Format(dateLayout)
				}
			}
			return x
		}

	case schema.TypeDateTime:
		switch x := v.(type) {
		case time.Time:
			return x.Format(datetimeLayout)
		case string:
			for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999"} {
				if d, err := time.Parse(layout, x); err == nil {
					return d.Format(datetimeLayout)
				}
			}
			return x
		}

	case schema.TypeBoolean:
		switch x := v.(type) {
		case bool:
			return fmt.Sprint(x)
		case int64:
			return fmt.Sprint(x != 0)
		case string:
			switch strings.ToLower(x) {
			case "1", "t", "true":
				return "true"
			case "0", "f", "false":
				return "false"
			}
			return x
		}

	case schema.TypeInteger, schema.TypeReal, schema.TypeFloat:
		switch x := v.(type) {
		case int64:
			return decimal.NewFromInt(x).String()
		case int:
			return decimal.NewFromInt(int64(x)).String()
		case float64:
			return decimal.NewFromFloat(x).String()
		case string:
			if d, err := decimal.NewFromString(strings.TrimSpace(x)); err == nil {
				return d.String()
			}
			return x
		}
	}

	if tm, ok := v.(time.Time); ok {
		return tm.Format(datetimeLayout)
	}
	return fmt.Sprint(v)
}

// bindValue converts a source value into the form inserted into the store.
// Dates travel as ISO text so that every driver and the SQL dump agree.
func bindValue(c *schema.Column, v any) any {
	tm, ok := v.(time.Time)
	if !ok {
		return v
	}
	if c.DataType == schema.TypeDate {
		return tm.Format(dateLayout)
	}
	return tm.Format(datetimeLayout)
}
