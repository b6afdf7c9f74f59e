package engine

import (
	"testing"
	"time"

	"dbf-pump/internal/dbf"
	"dbf-pump/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical_StoreAndSourceAgree(t *testing.T) {
	d := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	ts := time.Date(2024, time.January, 1, 10, 42, 5, 250e6, time.UTC)

	cases := []struct {
		name   string
		typ    schema.ColumnType
		source any
		stored any
	}{
		{"date as time", schema.TypeDate, d, d},
		{"date as text", schema.TypeDate, d, "2024-01-01"},
		{"date as bytes", schema.TypeDate, d, []byte("2024-01-01")},
		{"date with time part", schema.TypeDate, d, "2024-01-01T00:00:00Z"},
		{"datetime as text", schema.TypeDateTime, ts, "2024-01-01T10:42:05.250"},
		{"datetime as time", schema.TypeDateTime, ts, ts},
		{"numeric int as real", schema.TypeReal, int64(3), 3.0},
		{"numeric as text", schema.TypeReal, 12.5, "12.50"},
		{"integer", schema.TypeInteger, int64(-42), int64(-42)},
		{"boolean as int", schema.TypeBoolean, true, int64(1)},
		{"boolean as bool", schema.TypeBoolean, false, false},
		{"text", schema.TypeText, "7", "7"},
		{"text as bytes", schema.TypeText, "10:00", []byte("10:00")},
		{"null and empty", schema.TypeText, nil, ""},
		{"null date", schema.TypeDate, nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, canonical(tc.source, tc.typ), canonical(tc.stored, tc.typ))
		})
	}
}

func TestCanonical_DistinctValues(t *testing.T) {
	assert.NotEqual(t, canonical("7", schema.TypeText), canonical("07", schema.TypeText))
	assert.NotEqual(t,
		canonical(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), schema.TypeDate),
		canonical(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), schema.TypeDate))
	assert.Equal(t, "2024-01-01", canonical(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), schema.TypeDate))
}

func TestNaturalKey(t *testing.T) {
	tbl, err := schema.FromDBF(&dbf.Table{Name: "el_pwz", Fields: []dbf.Field{
		{Name: "wz_name", Type: dbf.TypeCharacter, Length: 10},
		{Name: "wz__pat", Type: dbf.TypeCharacter, Length: 8},
		{Name: "wz__dat", Type: dbf.TypeDate, Length: 8},
		{Name: "wz_time", Type: dbf.TypeCharacter, Length: 5},
	}})
	require.NoError(t, err)

	key, err := NewNaturalKey(tbl, []string{"WZ__PAT", "wz__dat", "wz_time"})
	require.NoError(t, err)
	assert.Equal(t, []string{"wz__pat", "wz__dat", "wz_time"}, key.Columns())

	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := key.Of(dbf.Record{"Anna", "7", d, "10:00"})
	b := key.Of(dbf.Record{"Ben", "7", d, "10:00"})
	c := key.Of(dbf.Record{"Anna", "7", d, "10:05"})
	assert.Equal(t, a, b, "non-key fields do not matter")
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, key.fromValues([]any{"7", "2024-01-01", "10:00"}))

	_, err = NewNaturalKey(tbl, []string{"wz_nope"})
	assert.ErrorIs(t, err, ErrKeyField)
}

func TestBindValue(t *testing.T) {
	date := &schema.Column{DataType: schema.TypeDate}
	stamp := &schema.Column{DataType: schema.TypeDateTime}
	ts := time.Date(2024, 1, 1, 10, 42, 5, 0, time.UTC)

	assert.Equal(t, "2024-01-01", bindValue(date, ts))
	assert.Equal(t, "2024-01-01T10:42:05.000", bindValue(stamp, ts))
	assert.Equal(t, "x", bindValue(date, "x"))
	assert.Nil(t, bindValue(date, nil))
}
