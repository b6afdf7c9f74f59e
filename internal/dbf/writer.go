package dbf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Writer produces dBase III tables. Records are buffered until Close
// because the header carries the record count.
type Writer struct {
	w       io.Writer
	fields  []Field
	codec   *codec
	driver  byte
	updated time.Time
	body    bytes.Buffer
	count   int
}

// NewWriter validates the field list and returns a Writer for w.
func NewWriter(w io.Writer, fields []Field, encoding string) (*Writer, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("dbf writer: no fields")
	}
	if encoding == "" {
		encoding = "cp1252"
	}
	c, err := newCodec(encoding, Replace)
	if err != nil {
		return nil, err
	}
	norm := make([]Field, len(fields))
	for i, f := range fields {
		switch f.Type {
		case TypeDate, TypeDateTime, TypeDouble:
			f.Length = 8
		case TypeLogical:
			f.Length = 1
		case TypeInteger:
			f.Length = 4
		case TypeMemo:
			f.Length = 10
		case TypeCharacter, TypeNumeric, TypeFloat:
			if f.Length <= 0 || f.Length > 254 {
				return nil, fmt.Errorf("dbf writer: field %s: invalid length %d", f.Name, f.Length)
			}
		default:
			return nil, fmt.Errorf("dbf writer: field %s: unsupported type %s", f.Name, f.Type)
		}
		if len(f.Name) == 0 || len(f.Name) > 10 {
			return nil, fmt.Errorf("dbf writer: invalid field name %q", f.Name)
		}
		norm[i] = f
	}
	return &Writer{
		w:       w,
		fields:  norm,
		codec:   c,
		driver:  LanguageDriver(encoding),
		updated: time.Now(),
	}, nil
}

// Write appends a live record.
func (w *Writer) Write(rec Record) error {
	return w.write(' ', rec)
}

// WriteDeleted appends a record carrying the deletion flag.
func (w *Writer) WriteDeleted(rec Record) error {
	return w.write(deletedFlag, rec)
}

func (w *Writer) write(flag byte, rec Record) error {
	if len(rec) != len(w.fields) {
		return fmt.Errorf("dbf writer: record has %d values, table has %d fields", len(rec), len(w.fields))
	}
	w.body.WriteByte(flag)
	for i, f := range w.fields {
		b, err := w.format(f, rec[i])
		if err != nil {
			return fmt.Errorf("dbf writer: record %d, field %s: %w", w.count+1, f.Name, err)
		}
		w.body.Write(b)
	}
	w.count++
	return nil
}

// Close writes the header, the buffered records and the EOF marker.
func (w *Writer) Close() error {
	recordLen := 1
	for _, f := range w.fields {
		recordLen += f.Length
	}
	headerLen := headerSize + descriptorSize*len(w.fields) + 1

	hdr := make([]byte, headerSize)
	hdr[0] = 0x03
	hdr[1] = byte(w.updated.Year() - 1900)
	hdr[2] = byte(w.updated.Month())
	hdr[3] = byte(w.updated.Day())
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(w.count))
	binary.LittleEndian.PutUint16(hdr[8:10], uint16(headerLen))
	binary.LittleEndian.PutUint16(hdr[10:12], uint16(recordLen))
	hdr[29] = w.driver

	var out bytes.Buffer
	out.Write(hdr)
	for _, f := range w.fields {
		desc := make([]byte, descriptorSize)
		copy(desc[:11], f.Name)
		desc[11] = byte(f.Type)
		desc[16] = byte(f.Length)
		desc[17] = byte(f.Decimals)
		out.Write(desc)
	}
	out.WriteByte(fieldTerminator)
	out.Write(w.body.Bytes())
	out.WriteByte(eofMarker)

	_, err := w.w.Write(out.Bytes())
	return err
}

func (w *Writer) format(f Field, v any) ([]byte, error) {
	switch f.Type {
	case TypeCharacter:
		s := ""
		if v != nil {
			s = fmt.Sprint(v)
		}
		return padRight(w.codec.encode(s), f.Length), nil

	case TypeNumeric, TypeFloat:
		if v == nil {
			return bytes.Repeat([]byte{' '}, f.Length), nil
		}
		var s string
		switch n := v.(type) {
		case int:
			s = strconv.Itoa(n)
		case int64:
			s = strconv.FormatInt(n, 10)
		case float64:
			s = strconv.FormatFloat(n, 'f', f.Decimals, 64)
		default:
			return nil, fmt.Errorf("unsupported numeric value %T", v)
		}
		if len(s) > f.Length {
			return bytes.Repeat([]byte{'*'}, f.Length), nil
		}
		return []byte(strings.Repeat(" ", f.Length-len(s)) + s), nil

	case TypeDate:
		d, ok, err := asDate(v)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []byte("        "), nil
		}
		return []byte(d.Format("20060102")), nil

	case TypeDateTime:
		b := make([]byte, 8)
		d, ok, err := asDate(v)
		if err != nil {
			return nil, err
		}
		if ok {
			secs := d.Unix()
			day := secs/86400 + julianUnixEpoch
			ms := (secs%86400)*1000 + int64(d.Nanosecond()/1e6)
			binary.LittleEndian.PutUint32(b[:4], uint32(day))
			binary.LittleEndian.PutUint32(b[4:], uint32(ms))
		}
		return b, nil

	case TypeLogical:
		switch x := v.(type) {
		case nil:
			return []byte{'?'}, nil
		case bool:
			if x {
				return []byte{'T'}, nil
			}
			return []byte{'F'}, nil
		default:
			return nil, fmt.Errorf("unsupported logical value %T", v)
		}

	case TypeInteger:
		b := make([]byte, 4)
		switch n := v.(type) {
		case nil:
		case int:
			binary.LittleEndian.PutUint32(b, uint32(int32(n)))
		case int64:
			binary.LittleEndian.PutUint32(b, uint32(int32(n)))
		default:
			return nil, fmt.Errorf("unsupported integer value %T", v)
		}
		return b, nil

	case TypeMemo:
		// The value is the memo block index; the memo file is written separately.
		switch n := v.(type) {
		case nil:
			return bytes.Repeat([]byte{' '}, f.Length), nil
		case int:
			return []byte(fmt.Sprintf("%*d", f.Length, n)), nil
		default:
			return nil, fmt.Errorf("unsupported memo block %T", v)
		}

	case TypeDouble:
		b := make([]byte, 8)
		switch n := v.(type) {
		case nil:
		case float64:
			binary.LittleEndian.PutUint64(b, math.Float64bits(n))
		default:
			return nil, fmt.Errorf("unsupported double value %T", v)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported type %s", f.Type)
}

func asDate(v any) (time.Time, bool, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		if d.IsZero() {
			return time.Time{}, false, nil
		}
		return d.UTC(), true, nil
	case string:
		if d == "" {
			return time.Time{}, false, nil
		}
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid date %q", d)
		}
		return t, true, nil
	default:
		return time.Time{}, false, fmt.Errorf("unsupported date value %T", v)
	}
}

func padRight(b []byte, n int) []byte {
	if len(b) >= n {
		return b[:n]
	}
	return append(b, bytes.Repeat([]byte{' '}, n-len(b))...)
}

// WriteFile writes a complete table to path.
func WriteFile(path string, fields []Field, records []Record, encoding string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dbf: %w", err)
	}
	w, err := NewWriter(f, fields, encoding)
	if err != nil {
		f.Close()
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
