package engine

import (
	"fmt"
	"time"

	"dbf-pump/internal/dbf"

	"github.com/brianvoe/gofakeit/v6"
)

// VisitFields is the field layout of an el_pwz waiting-room table.
func VisitFields() []dbf.Field {
	return []dbf.Field{
		{Name: "WZ__PAT", Type: dbf.TypeCharacter, Length: 8},
		{Name: "WZ_NAME", Type: dbf.TypeCharacter, Length: 40},
		{Name: "WZ__DAT", Type: dbf.TypeDate},
		{Name: "WZ_TIME", Type: dbf.TypeCharacter, Length: 5},
		{Name: "WZ__GEB", Type: dbf.TypeDate},
		{Name: "WZ__SYS", Type: dbf.TypeCharacter, Length: 3},
		{Name: "WZ__GNR", Type: dbf.TypeCharacter, Length: 10},
		{Name: "WZ_TERM", Type: dbf.TypeCharacter, Length: 5},
		{Name: "WZ___BG", Type: dbf.TypeLogical},
		{Name: "WZ__BEM", Type: dbf.TypeCharacter, Length: 60},
		{Name: "WZ_ZIEL", Type: dbf.TypeCharacter, Length: 20},
		{Name: "WZ__VPK", Type: dbf.TypeNumeric, Length: 5},
		{Name: "WZ_KKNR", Type: dbf.TypeCharacter, Length: 9},
		{Name: "WZ_KTGR", Type: dbf.TypeCharacter, Length: 2},
		{Name: "WZ__HVM", Type: dbf.TypeNumeric, Length: 8, Decimals: 2},
		{Name: "WZ_PRXG", Type: dbf.TypeNumeric, Length: 6, Decimals: 2},
		{Name: "WZ_GONE", Type: dbf.TypeDateTime},
	}
}

type GeneratorOptions struct {
	Records        int
	DuplicateRatio float64 // share of records repeating an earlier visit key
	Seed           int64
	From, To       time.Time
	Patients       int // size of the patient pool
}

// GenerateVisits builds synthetic waiting-room records. The same seed gives
// the same records.
func GenerateVisits(opts GeneratorOptions) []dbf.Record {
	if opts.To.IsZero() {
		opts.To = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if opts.From.IsZero() || !opts.From.Before(opts.To) {
		opts.From = opts.To.AddDate(0, -3, 0)
	}
	if opts.Patients <= 0 {
		opts.Patients = max(opts.Records/4, 1)
	}
	f := gofakeit.New(opts.Seed)

	type patient struct {
		id, name string
		born     time.Time
		kknr     string
	}
	pool := make([]patient, opts.Patients)
	for i := range pool {
		pool[i] = patient{
			id:   fmt.Sprintf("%d", 1000+i),
			name: f.RandomString(LastNames) + ", " + f.RandomString(FirstNames),
			born: f.DateRange(time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)).Truncate(24 * time.Hour),
			kknr: f.Numerify("#########"),
		}
	}

	records := make([]dbf.Record, 0, opts.Records)
	for len(records) < opts.Records {
		if len(records) > 0 && f.Float64Range(0, 1) < opts.DuplicateRatio {
			prev := records[f.Number(0, len(records)-1)]
			dup := make(dbf.Record, len(prev))
			copy(dup, prev)
			dup[9] = f.RandomString(Remarks)
			records = append(records, dup)
			continue
		}

		p := pool[f.Number(0, len(pool)-1)]
		day := f.DateRange(opts.From, opts.To).Truncate(24 * time.Hour)
		hour, minute := f.Number(7, 18), f.Number(0, 11)*5
		arrived := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)

		var term any = ""
		if f.Bool() {
			term = fmt.Sprintf("%02d:%02d", hour, minute)
		}
		records = append(records, dbf.Record{
			p.id,
			p.name,
			day,
			fmt.Sprintf("%02d:%02d", hour, minute),
			p.born,
			f.RandomString(Systems),
			f.RandomString(GNRs),
			term,
			f.Number(0, 9) == 0,
			f.RandomString(Remarks),
			f.RandomString(Ziele),
			int64(f.Number(0, 3)),
			p.kknr,
			f.RandomString(KTGRs),
			f.Float64Range(0, 500),
			0.0,
			arrived.Add(time.Duration(f.Number(5, 90)) * time.Minute),
		})
	}
	return records
}

// WriteVisits writes records in the VisitFields layout to path.
func WriteVisits(path string, records []dbf.Record, encoding string) error {
	return dbf.WriteFile(path, VisitFields(), records, encoding)
}
