package dbf

import "fmt"

// FieldType is the one-byte type tag of a DBF field descriptor.
type FieldType byte

const (
	TypeFloat     FieldType = 'F'
	TypeLogical   FieldType = 'L'
	TypeInteger   FieldType = 'I'
	TypeCharacter FieldType = 'C'
	TypeNumeric   FieldType = 'N' // integer or float, decided per value
	TypeMemo      FieldType = 'M'
	TypeDate      FieldType = 'D'
	TypeDateTime  FieldType = 'T'
	TypeNullFlags FieldType = '0' // VFP _NullFlags, read as an integer
	TypeDouble    FieldType = 'O'
	TypeCurrency  FieldType = 'Y'
	TypeAutoInc   FieldType = '+'
)

func (t FieldType) String() string {
	return string(rune(t))
}

// Field describes one column of a DBF table.
type Field struct {
	Name     string
	Type     FieldType
	Length   int
	Decimals int
}

func (f Field) String() string {
	return fmt.Sprintf("%s %s(%d,%d)", f.Name, f.Type, f.Length, f.Decimals)
}
