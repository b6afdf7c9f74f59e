package schema_test

import (
	"testing"

	"dbf-pump/internal/dbf"
	"dbf-pump/internal/schema"

	"github.com/stretchr/testify/assert"
)

func TestMapFieldType(t *testing.T) {
	cases := map[dbf.FieldType]schema.ColumnType{
		dbf.TypeFloat:     schema.TypeFloat,
		dbf.TypeLogical:   schema.TypeBoolean,
		dbf.TypeInteger:   schema.TypeInteger,
		dbf.TypeCharacter: schema.TypeText,
		dbf.TypeNumeric:   schema.TypeReal,
		dbf.TypeMemo:      schema.TypeText,
		dbf.TypeDate:      schema.TypeDate,
		dbf.TypeDateTime:  schema.TypeDateTime,
		dbf.TypeNullFlags: schema.TypeInteger,
	}
	for in, want := range cases {
		assert.Equal(t, want, schema.MapFieldType(in), "type %s", in)
	}
}

func TestMapFieldType_UnknownIsText(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, schema.TypeText, schema.MapFieldType(dbf.FieldType('X')))
		assert.Equal(t, schema.TypeText, schema.MapFieldType(0))
	})
}
