package schema

import "dbf-pump/internal/dbf"

// ColumnType is a dialect-neutral column type; dialect.Dialect.ColumnType
// turns it into the native name.
type ColumnType string

const (
	TypeText     ColumnType = "TEXT"
	TypeInteger  ColumnType = "INTEGER"
	TypeReal     ColumnType = "REAL"
	TypeFloat    ColumnType = "FLOAT"
	TypeBoolean  ColumnType = "BOOLEAN"
	TypeDate     ColumnType = "DATE"
	TypeDateTime ColumnType = "DATETIME"
)

// MapFieldType maps a DBF field type to a column type. Vendor specific or
// unknown tags become TEXT.
func MapFieldType(t dbf.FieldType) ColumnType {
	switch t {
	case dbf.TypeFloat:
		return TypeFloat
	case dbf.TypeLogical:
		return TypeBoolean
	case dbf.TypeInteger, dbf.TypeAutoInc, dbf.TypeNullFlags:
		return TypeInteger
	case dbf.TypeNumeric:
		// N holds integers and decimals alike
		return TypeReal
	case dbf.TypeDouble, dbf.TypeCurrency:
		return TypeReal
	case dbf.TypeCharacter, dbf.TypeMemo:
		return TypeText
	case dbf.TypeDate:
		return TypeDate
	case dbf.TypeDateTime:
		return TypeDateTime
	default:
		return TypeText
	}
}
