package dbf_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dbf-pump/internal/dbf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var visitFields = []dbf.Field{
	{Name: "WZ__PAT", Type: dbf.TypeCharacter, Length: 10},
	{Name: "WZ_NAME", Type: dbf.TypeCharacter, Length: 30},
	{Name: "WZ__DAT", Type: dbf.TypeDate},
	{Name: "WZ_TIME", Type: dbf.TypeCharacter, Length: 5},
	{Name: "WZ__VPK", Type: dbf.TypeNumeric, Length: 5},
	{Name: "WZ__HVM", Type: dbf.TypeNumeric, Length: 8, Decimals: 2},
	{Name: "WZ___BG", Type: dbf.TypeLogical},
	{Name: "WZ_CNT", Type: dbf.TypeInteger},
	{Name: "WZ_GONE", Type: dbf.TypeDateTime},
}

func writeTable(t *testing.T, dir, name string, fields []dbf.Field, records []dbf.Record, encoding string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, dbf.WriteFile(path, fields, records, encoding))
	return path
}

func TestOpen_DecodesTypedValues(t *testing.T) {
	gone := time.Date(2024, time.January, 1, 10, 42, 5, 0, time.UTC)
	path := writeTable(t, t.TempDir(), "EL_PWZ.DBF", visitFields, []dbf.Record{
		{"7", "Müller", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "10:00", int64(3), 12.5, true, int64(-42), gone},
		{"8", "", nil, "", nil, nil, nil, int64(0), nil},
	}, "cp1252")

	tbl, err := dbf.Open(path, dbf.Options{LowerNames: true})
	require.NoError(t, err)

	assert.Equal(t, "el_pwz", tbl.Name)
	assert.Equal(t, "cp1252", tbl.Encoding)
	assert.Equal(t, []string{"wz__pat", "wz_name", "wz__dat", "wz_time", "wz__vpk", "wz__hvm", "wz___bg", "wz_cnt", "wz_gone"}, tbl.FieldNames())
	require.Equal(t, 2, tbl.Len())

	first := tbl.Records[0]
	assert.Equal(t, "7", first[0])
	assert.Equal(t, "Müller", first[1])
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), first[2])
	assert.Equal(t, "10:00", first[3])
	assert.Equal(t, int64(3), first[4])
	assert.Equal(t, 12.5, first[5])
	assert.Equal(t, true, first[6])
	assert.Equal(t, int64(-42), first[7])
	assert.Equal(t, gone, first[8])

	blank := tbl.Records[1]
	assert.Equal(t, "", blank[1])
	assert.Nil(t, blank[2], "blank date")
	assert.Nil(t, blank[4], "blank numeric")
	assert.Nil(t, blank[6], "unknown logical")
	assert.Nil(t, blank[8], "empty datetime")
}

func TestOpen_KeepsNameCaseUnlessLowered(t *testing.T) {
	path := writeTable(t, t.TempDir(), "visits.dbf", visitFields[:1], []dbf.Record{{"1"}}, "")

	tbl, err := dbf.Open(path, dbf.Options{})
	require.NoError(t, err)
	assert.Equal(t, "WZ__PAT", tbl.Fields[0].Name)
	assert.Equal(t, 0, tbl.FieldIndex("WZ__PAT"))
	assert.Equal(t, -1, tbl.FieldIndex("wz__pat"))
}

func TestOpen_SkipsDeletedRecords(t *testing.T) {
	var buf bytes.Buffer
	w, err := dbf.NewWriter(&buf, visitFields[:1], "")
	require.NoError(t, err)
	require.NoError(t, w.Write(dbf.Record{"1"}))
	require.NoError(t, w.WriteDeleted(dbf.Record{"2"}))
	require.NoError(t, w.Write(dbf.Record{"3"}))
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "del.dbf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	tbl, err := dbf.Open(path, dbf.Options{})
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "1", tbl.Records[0][0])
	assert.Equal(t, "3", tbl.Records[1][0])
	assert.Equal(t, 1, tbl.Deleted)
}

func TestOpen_StrictDecodeFailure(t *testing.T) {
	fields := []dbf.Field{{Name: "wz_name", Type: dbf.TypeCharacter, Length: 20}}
	path := writeTable(t, t.TempDir(), "names.dbf", fields, []dbf.Record{{"Meier"}, {"Müller"}}, "cp1252")

	_, err := dbf.Open(path, dbf.Options{Encoding: "ascii"})
	require.Error(t, err)
	assert.True(t, dbf.IsDecodeError(err))

	var de *dbf.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 2, de.Record)
	assert.Equal(t, "wz_name", de.Field)
	assert.Equal(t, 1, de.Position)
	assert.Equal(t, byte(0xFC), de.Byte)
	assert.Contains(t, de.Error(), "can't decode byte 0xfc")
}

func TestOpen_DecodeErrorModes(t *testing.T) {
	fields := []dbf.Field{{Name: "wz_name", Type: dbf.TypeCharacter, Length: 20}}
	path := writeTable(t, t.TempDir(), "names.dbf", fields, []dbf.Record{{"Müller"}}, "cp1252")

	tbl, err := dbf.Open(path, dbf.Options{Encoding: "ascii", DecodeErrors: dbf.Replace})
	require.NoError(t, err)
	assert.Equal(t, "M\uFFFDller", tbl.Records[0][0])

	tbl, err = dbf.Open(path, dbf.Options{Encoding: "ascii", DecodeErrors: dbf.Ignore})
	require.NoError(t, err)
	assert.Equal(t, "Mller", tbl.Records[0][0])

	tbl, err = dbf.Open(path, dbf.Options{Encoding: "latin1"})
	require.NoError(t, err)
	assert.Equal(t, "Müller", tbl.Records[0][0])
}

func TestOpen_UnknownEncoding(t *testing.T) {
	path := writeTable(t, t.TempDir(), "x.dbf", visitFields[:1], []dbf.Record{{"1"}}, "")

	_, err := dbf.Open(path, dbf.Options{Encoding: "klingon"})
	require.Error(t, err)
	assert.False(t, dbf.IsDecodeError(err))
}

func TestParseErrorMode(t *testing.T) {
	m, err := dbf.ParseErrorMode("")
	require.NoError(t, err)
	assert.Equal(t, dbf.Strict, m)

	m, err = dbf.ParseErrorMode("Replace")
	require.NoError(t, err)
	assert.Equal(t, dbf.Replace, m)

	_, err = dbf.ParseErrorMode("surrogateescape")
	assert.Error(t, err)
}

func TestGuessEncoding(t *testing.T) {
	name, err := dbf.GuessEncoding(0x57)
	require.NoError(t, err)
	assert.Equal(t, "cp1252", name)

	name, err = dbf.GuessEncoding(0x02)
	require.NoError(t, err)
	assert.Equal(t, "cp850", name)

	_, err = dbf.GuessEncoding(0xFE)
	assert.Error(t, err)
}

// fptFile builds a FoxPro memo file with 64-byte blocks holding texts
// starting at block 8.
func fptFile(texts ...string) []byte {
	const blockSize = 64
	data := make([]byte, 512)
	binary.BigEndian.PutUint16(data[6:8], blockSize)
	for _, s := range texts {
		block := make([]byte, 8, blockSize)
		binary.BigEndian.PutUint32(block[0:4], 1)
		binary.BigEndian.PutUint32(block[4:8], uint32(len(s)))
		block = append(block, s...)
		for len(block)%blockSize != 0 {
			block = append(block, 0)
		}
		data = append(data, block...)
	}
	return data
}

func TestOpen_ReadsFoxProMemo(t *testing.T) {
	dir := t.TempDir()
	fields := []dbf.Field{
		{Name: "wz__pat", Type: dbf.TypeCharacter, Length: 4},
		{Name: "wz__bem", Type: dbf.TypeMemo},
	}
	path := writeTable(t, dir, "el_pwz.dbf", fields, []dbf.Record{{"1", 8}, {"2", nil}, {"3", 9}}, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "el_pwz.fpt"), fptFile("Kontrolle in 2 Wochen", "Rezept"), 0o644))

	tbl, err := dbf.Open(path, dbf.Options{})
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, "Kontrolle in 2 Wochen", tbl.Records[0][1])
	assert.Nil(t, tbl.Records[1][1])
	assert.Equal(t, "Rezept", tbl.Records[2][1])
}

func TestOpen_MissingMemoFile(t *testing.T) {
	fields := []dbf.Field{{Name: "wz__bem", Type: dbf.TypeMemo}}
	path := writeTable(t, t.TempDir(), "el_pwz.dbf", fields, []dbf.Record{{1}}, "")

	_, err := dbf.Open(path, dbf.Options{})
	assert.ErrorIs(t, err, dbf.ErrMissingMemo)

	tbl, err := dbf.Open(path, dbf.Options{IgnoreMissingMemo: true})
	require.NoError(t, err)
	assert.Nil(t, tbl.Records[0][0])
}

func TestOpen_TruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.dbf")
	require.NoError(t, os.WriteFile(path, []byte{0x03, 0x01}, 0o644))

	_, err := dbf.Open(path, dbf.Options{})
	assert.Error(t, err)
}
