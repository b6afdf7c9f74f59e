// Package dbf reads and writes dBase / FoxPro table files.
//
// Tables are loaded completely on Open so that decoding problems surface
// before the caller writes anything derived from the file.
package dbf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	headerSize      = 32
	descriptorSize  = 32
	fieldTerminator = 0x0D
	eofMarker       = 0x1A
	deletedFlag     = '*'

	// julianUnixEpoch is the Julian day number of 1970-01-01.
	julianUnixEpoch = 2440588
)

// Options control how a table is decoded.
type Options struct {
	// Encoding overrides the code page named by the language driver byte.
	Encoding string
	// DecodeErrors is the policy for undecodable text; empty means Strict.
	DecodeErrors ErrorMode
	// LowerNames lower-cases field names.
	LowerNames bool
	// IgnoreMissingMemo yields nil memo values instead of ErrMissingMemo.
	IgnoreMissingMemo bool
}

// Record holds one row's values in field declaration order.
type Record []any

// Table is a fully loaded DBF table.
type Table struct {
	Name       string
	Path       string
	Version    byte
	LastUpdate time.Time
	Encoding   string
	Fields     []Field
	Records    []Record
	Deleted    int
}

// FieldNames returns the field names in declaration order.
func (t *Table) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldIndex returns the position of the named field or -1.
func (t *Table) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Len returns the number of live (non-deleted) records.
func (t *Table) Len() int {
	return len(t.Records)
}

// TableName derives the table name from a file path: the lower-cased stem.
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Open reads the table at path.
func Open(path string, opts Options) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dbf: %w", err)
	}
	return decodeTable(path, data, opts)
}

type reader struct {
	path  string
	codec *codec
	opts  Options
	memo  *memoFile
}

func decodeTable(path string, data []byte, opts Options) (*Table, error) {
	if len(data) < headerSize+1 {
		return nil, fmt.Errorf("%s: file too short for a dbf header", path)
	}

	t := &Table{
		Name:    TableName(path),
		Path:    path,
		Version: data[0],
	}
	if m, d := int(data[2]), int(data[3]); m >= 1 && m <= 12 && d >= 1 && d <= 31 {
		t.LastUpdate = time.Date(1900+int(data[1]), time.Month(m), d, 0, 0, 0, 0, time.UTC)
	}
	numRecords := int(binary.LittleEndian.Uint32(data[4:8]))
	headerLen := int(binary.LittleEndian.Uint16(data[8:10]))
	recordLen := int(binary.LittleEndian.Uint16(data[10:12]))

	encName := opts.Encoding
	if encName == "" {
		guessed, err := GuessEncoding(data[29])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		encName = guessed
	}
	mode := opts.DecodeErrors
	if mode == "" {
		mode = Strict
	}
	c, err := newCodec(encName, mode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Encoding = c.name

	r := &reader{path: path, codec: c, opts: opts}

	limit := min(headerLen, len(data))
	for pos := headerSize; pos+descriptorSize <= limit && data[pos] != fieldTerminator; pos += descriptorSize {
		f, err := r.parseDescriptor(data[pos : pos+descriptorSize])
		if err != nil {
			return nil, err
		}
		t.Fields = append(t.Fields, f)
	}
	if len(t.Fields) == 0 {
		return nil, fmt.Errorf("%s: no field descriptors", path)
	}

	width := 1
	for _, f := range t.Fields {
		width += f.Length
		if f.Type == TypeMemo && r.memo == nil {
			if err := r.openMemo(t.Version); err != nil {
				return nil, err
			}
		}
	}
	if recordLen < width {
		recordLen = width
	}

	off := headerLen
	for i := 0; i < numRecords; i++ {
		if off >= len(data) || data[off] == eofMarker || off+recordLen > len(data) {
			break
		}
		raw := data[off : off+recordLen]
		off += recordLen
		if raw[0] == deletedFlag {
			t.Deleted++
			continue
		}
		rec, err := r.parseRecord(t.Fields, raw[1:], i+1)
		if err != nil {
			return nil, err
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func (r *reader) openMemo(version byte) error {
	path, ok := findMemoFile(r.path)
	if !ok {
		if r.opts.IgnoreMissingMemo {
			return nil
		}
		return fmt.Errorf("%s: %w", r.path, ErrMissingMemo)
	}
	m, err := openMemo(path, version)
	if err != nil {
		return err
	}
	r.memo = m
	return nil
}

func (r *reader) parseDescriptor(desc []byte) (Field, error) {
	rawName := desc[:11]
	if i := bytes.IndexByte(rawName, 0); i >= 0 {
		rawName = rawName[:i]
	}
	name, pos, ok := r.codec.decode(bytes.TrimSpace(rawName))
	if !ok {
		return Field{}, r.decodeError(0, "", rawName, pos)
	}
	if r.opts.LowerNames {
		name = strings.ToLower(name)
	}
	return Field{
		Name:     name,
		Type:     FieldType(desc[11]),
		Length:   int(desc[16]),
		Decimals: int(desc[17]),
	}, nil
}

func (r *reader) parseRecord(fields []Field, raw []byte, recNo int) (Record, error) {
	rec := make(Record, len(fields))
	pos := 0
	for i, f := range fields {
		v, err := r.parseValue(f, raw[pos:pos+f.Length], recNo)
		if err != nil {
			return nil, err
		}
		rec[i] = v
		pos += f.Length
	}
	return rec, nil
}

func (r *reader) decodeError(recNo int, field string, raw []byte, pos int) error {
	e := &DecodeError{
		Path:     r.path,
		Encoding: r.codec.name,
		Record:   recNo,
		Field:    field,
		Position: pos,
	}
	if pos >= 0 && pos < len(raw) {
		e.Byte = raw[pos]
	}
	return e
}

func (r *reader) invalid(recNo int, f Field, raw []byte) error {
	return fmt.Errorf("%s: record %d, field %s: invalid %s value %q", r.path, recNo, f.Name, f.Type, raw)
}

func (r *reader) text(recNo int, f Field, raw []byte) (any, error) {
	s, pos, ok := r.codec.decode(raw)
	if !ok {
		return nil, r.decodeError(recNo, f.Name, raw, pos)
	}
	return s, nil
}

func (r *reader) parseValue(f Field, raw []byte, recNo int) (any, error) {
	switch f.Type {
	case TypeCharacter:
		return r.text(recNo, f, bytes.TrimRight(raw, " \x00"))

	case TypeDate:
		s := strings.TrimSpace(string(bytes.Trim(raw, "\x00")))
		if strings.Trim(s, "0 ") == "" {
			return nil, nil
		}
		d, err := time.Parse("20060102", s)
		if err != nil {
			return nil, r.invalid(recNo, f, raw)
		}
		return d, nil

	case TypeDateTime:
		if len(raw) != 8 {
			return nil, r.invalid(recNo, f, raw)
		}
		day := int64(binary.LittleEndian.Uint32(raw[:4]))
		ms := int64(binary.LittleEndian.Uint32(raw[4:]))
		if day == 0 {
			return nil, nil
		}
		return time.Unix((day-julianUnixEpoch)*86400, 0).UTC().Add(time.Duration(ms) * time.Millisecond), nil

	case TypeNumeric, TypeFloat:
		s := strings.Trim(strings.TrimSpace(string(bytes.Trim(raw, "\x00"))), "*")
		if s == "" {
			return nil, nil
		}
		if f.Type == TypeNumeric {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, nil
			}
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
		if err != nil {
			return nil, r.invalid(recNo, f, raw)
		}
		v, _ := d.Float64()
		return v, nil

	case TypeInteger, TypeAutoInc:
		if len(raw) != 4 {
			return nil, r.invalid(recNo, f, raw)
		}
		return int64(int32(binary.LittleEndian.Uint32(raw))), nil

	case TypeDouble:
		if len(raw) != 8 {
			return nil, r.invalid(recNo, f, raw)
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(raw)), nil

	case TypeCurrency:
		if len(raw) != 8 {
			return nil, r.invalid(recNo, f, raw)
		}
		v, _ := decimal.New(int64(binary.LittleEndian.Uint64(raw)), -4).Float64()
		return v, nil

	case TypeLogical:
		if len(raw) == 0 {
			return nil, nil
		}
		switch raw[0] {
		case 'T', 't', 'Y', 'y':
			return true, nil
		case 'F', 'f', 'N', 'n':
			return false, nil
		default:
			return nil, nil
		}

	case TypeMemo:
		return r.memoValue(f, raw, recNo)

	case TypeNullFlags:
		var n uint64
		for i := min(len(raw), 8) - 1; i >= 0; i-- {
			n = n<<8 | uint64(raw[i])
		}
		return int64(n), nil

	default:
		return r.text(recNo, f, bytes.TrimRight(raw, " \x00"))
	}
}

func (r *reader) memoValue(f Field, raw []byte, recNo int) (any, error) {
	var index int
	if len(raw) == 4 {
		index = int(binary.LittleEndian.Uint32(raw))
	} else {
		s := strings.TrimSpace(string(bytes.Trim(raw, "\x00")))
		if s == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, r.invalid(recNo, f, raw)
		}
		index = n
	}
	if index == 0 || r.memo == nil {
		return nil, nil
	}
	data, err := r.memo.read(index)
	if err != nil {
		return nil, err
	}
	return r.text(recNo, f, data)
}

// IsDecodeError reports whether err was caused by undecodable text.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
