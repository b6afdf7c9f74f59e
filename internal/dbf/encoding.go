package dbf

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// ErrorMode selects what happens to bytes the source encoding cannot decode.
type ErrorMode string

const (
	Strict  ErrorMode = "strict"
	Replace ErrorMode = "replace"
	Ignore  ErrorMode = "ignore"
)

// ParseErrorMode accepts the decode-error policy names used on the command line.
// An empty string means Strict.
func ParseErrorMode(s string) (ErrorMode, error) {
	switch m := ErrorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Strict, nil
	case Strict, Replace, Ignore:
		return m, nil
	default:
		return "", fmt.Errorf("unknown decode error mode %q (want strict, replace or ignore)", s)
	}
}

// DecodeError reports bytes that could not be decoded with the table's
// character encoding while the error mode is Strict.
type DecodeError struct {
	Path     string
	Encoding string
	Record   int // 1-based; 0 means the header
	Field    string
	Position int // byte offset inside the value, -1 when unknown
	Byte     byte
}

func (e *DecodeError) Error() string {
	where := "header"
	if e.Record > 0 {
		where = fmt.Sprintf("record %d", e.Record)
	}
	if e.Field != "" {
		where += ", field " + e.Field
	}
	if e.Position < 0 {
		return fmt.Sprintf("%s: %q codec can't decode value (%s)", e.Path, e.Encoding, where)
	}
	return fmt.Sprintf("%s: %q codec can't decode byte 0x%02x in position %d (%s)",
		e.Path, e.Encoding, e.Byte, e.Position, where)
}

var codePages = map[string]encoding.Encoding{
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"cp852":        charmap.CodePage852,
	"cp855":        charmap.CodePage855,
	"cp858":        charmap.CodePage858,
	"cp860":        charmap.CodePage860,
	"cp862":        charmap.CodePage862,
	"cp863":        charmap.CodePage863,
	"cp865":        charmap.CodePage865,
	"cp866":        charmap.CodePage866,
	"cp874":        charmap.Windows874,
	"cp1250":       charmap.Windows1250,
	"cp1251":       charmap.Windows1251,
	"cp1252":       charmap.Windows1252,
	"cp1253":       charmap.Windows1253,
	"cp1254":       charmap.Windows1254,
	"cp1255":       charmap.Windows1255,
	"cp1256":       charmap.Windows1256,
	"cp1257":       charmap.Windows1257,
	"cp1258":       charmap.Windows1258,
	"latin1":       charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"mac-roman":    charmap.Macintosh,
	"mac-cyrillic": charmap.MacintoshCyrillic,
	"koi8-r":       charmap.KOI8R,
	"utf-8":        unicode.UTF8,
	"utf8":         unicode.UTF8,
}

// Multi-byte code pages are resolved through their WHATWG labels.
var codePageAliases = map[string]string{
	"cp932": "shift_jis",
	"cp936": "gbk",
	"cp949": "euc-kr",
	"cp950": "big5",
}

// languageDrivers maps the header's language driver byte to a code page name.
var languageDrivers = map[byte]string{
	0x00: "ascii",
	0x01: "cp437",
	0x02: "cp850",
	0x03: "cp1252",
	0x04: "mac-roman",
	0x08: "cp865",
	0x09: "cp437",
	0x0A: "cp850",
	0x0B: "cp437",
	0x0D: "cp437",
	0x0E: "cp850",
	0x0F: "cp437",
	0x10: "cp850",
	0x11: "cp437",
	0x12: "cp850",
	0x13: "cp932",
	0x14: "cp850",
	0x15: "cp437",
	0x16: "cp850",
	0x17: "cp865",
	0x18: "cp437",
	0x19: "cp437",
	0x1A: "cp850",
	0x1B: "cp437",
	0x1C: "cp863",
	0x1D: "cp850",
	0x1F: "cp852",
	0x22: "cp852",
	0x23: "cp852",
	0x24: "cp860",
	0x25: "cp850",
	0x26: "cp866",
	0x37: "cp850",
	0x40: "cp852",
	0x4D: "cp936",
	0x4E: "cp949",
	0x4F: "cp950",
	0x50: "cp874",
	0x57: "cp1252",
	0x58: "cp1252",
	0x59: "cp1252",
	0x64: "cp852",
	0x65: "cp866",
	0x66: "cp865",
	0x78: "cp950",
	0x79: "cp949",
	0x7A: "cp936",
	0x7B: "cp932",
	0x7C: "cp874",
	0x7D: "cp1255",
	0x7E: "cp1256",
	0x96: "mac-cyrillic",
	0xC8: "cp1250",
	0xC9: "cp1251",
	0xCA: "cp1254",
	0xCB: "cp1253",
	0xCC: "cp1257",
}

// LanguageDriver returns the language driver byte written for a code page
// name, used by the Writer.
func LanguageDriver(name string) byte {
	name = normalizeEncodingName(name)
	switch name {
	case "cp1252", "":
		return 0x03
	case "ascii":
		return 0x00
	}
	best, found := byte(0), false
	for b, cp := range languageDrivers {
		if cp == name && (!found || b < best) {
			best, found = b, true
		}
	}
	return best
}

// GuessEncoding returns the code page name for a language driver byte.
func GuessEncoding(driver byte) (string, error) {
	name, ok := languageDrivers[driver]
	if !ok {
		return "", fmt.Errorf("unsupported code page 0x%02x in language driver, set the encoding explicitly", driver)
	}
	return name, nil
}

func normalizeEncodingName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// codec decodes and encodes text fields for one table.
type codec struct {
	name  string
	enc   encoding.Encoding // nil means 7-bit ASCII
	mode  ErrorMode
	isUTF bool
}

func newCodec(name string, mode ErrorMode) (*codec, error) {
	n := normalizeEncodingName(name)
	if n == "ascii" || n == "us-ascii" {
		return &codec{name: "ascii", mode: mode}, nil
	}
	if enc, ok := codePages[n]; ok {
		return &codec{name: n, enc: enc, mode: mode, isUTF: enc == unicode.UTF8}, nil
	}
	label := n
	if alias, ok := codePageAliases[n]; ok {
		label = alias
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return &codec{name: n, enc: enc, mode: mode, isUTF: enc == unicode.UTF8}, nil
}

// decode returns the text for b. In Strict mode a failure returns the byte
// offset of the first bad byte (or -1) and ok=false.
func (c *codec) decode(b []byte) (s string, pos int, ok bool) {
	switch {
	case c.enc == nil:
		return c.decodeASCII(b)
	case c.isUTF:
		return c.decodeUTF8(b)
	}

	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		if c.mode == Strict {
			return "", c.badSingleByte(b), false
		}
		return c.decodeBytewise(b), 0, true
	}
	s = string(out)
	if !strings.ContainsRune(s, utf8.RuneError) {
		return s, 0, true
	}
	switch c.mode {
	case Replace:
		return s, 0, true
	case Ignore:
		return strings.ReplaceAll(s, string(utf8.RuneError), ""), 0, true
	}
	return "", c.badSingleByte(b), false
}

// badSingleByte finds the first byte that decodes to U+FFFD on its own.
func (c *codec) badSingleByte(b []byte) int {
	dec := c.enc.NewDecoder()
	for i := range b {
		out, err := dec.Bytes(b[i : i+1])
		if err != nil || strings.ContainsRune(string(out), utf8.RuneError) {
			return i
		}
	}
	return -1
}

// decodeBytewise decodes b one byte at a time, replacing or dropping the
// bytes that fail on their own.
func (c *codec) decodeBytewise(b []byte) string {
	dec := c.enc.NewDecoder()
	var sb strings.Builder
	for i := range b {
		out, err := dec.Bytes(b[i : i+1])
		if err != nil || strings.ContainsRune(string(out), utf8.RuneError) {
			if c.mode == Replace {
				sb.WriteRune(utf8.RuneError)
			}
			continue
		}
		sb.Write(out)
	}
	return sb.String()
}

func (c *codec) decodeASCII(b []byte) (string, int, bool) {
	var sb strings.Builder
	sb.Grow(len(b))
	for i, x := range b {
		if x < 0x80 {
			sb.WriteByte(x)
			continue
		}
		switch c.mode {
		case Replace:
			sb.WriteRune(utf8.RuneError)
		case Ignore:
		default:
			return "", i, false
		}
	}
	return sb.String(), 0, true
}

func (c *codec) decodeUTF8(b []byte) (string, int, bool) {
	if utf8.Valid(b) {
		return string(b), 0, true
	}
	switch c.mode {
	case Replace:
		return strings.ToValidUTF8(string(b), string(utf8.RuneError)), 0, true
	case Ignore:
		return strings.ToValidUTF8(string(b), ""), 0, true
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return "", i, false
		}
		i += size
	}
	return "", -1, false
}

// encode converts s for writing; unrepresentable runes become '?'.
func (c *codec) encode(s string) []byte {
	if c.enc == nil {
		out := make([]byte, 0, len(s))
		for _, r := range s {
			if r < 0x80 {
				out = append(out, byte(r))
			} else {
				out = append(out, '?')
			}
		}
		return out
	}
	if c.isUTF {
		return []byte(s)
	}
	out, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}
