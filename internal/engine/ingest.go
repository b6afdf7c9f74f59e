package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dbf-pump/internal/dbf"
	"dbf-pump/internal/dialect"
	"dbf-pump/internal/schema"

	"github.com/rs/zerolog"
)

// Tenant is one configured data partition and the directory holding its source file.
type Tenant struct {
	ID   string
	Name string
	Path string
}

type Options struct {
	FileName      string // source file inside each tenant directory
	KeyFields     []string
	DBF           dbf.Options
	ProgressEvery int
	DryRun        bool // run everything, then roll back
}

// TenantResult summarizes one tenant pass.
type TenantResult struct {
	Tenant   string
	Table    string
	Path     string
	Seen     int
	Inserted int
	Existing int // fingerprints in the store before the pass
	Missing  bool
	Duration time.Duration
}

func (r TenantResult) Skipped() int { return r.Seen - r.Inserted }

type RunResult struct {
	Tenants   []TenantResult
	Committed bool
	Duration  time.Duration
}

func (r *RunResult) Inserted() int {
	n := 0
	for _, t := range r.Tenants {
		n += t.Inserted
	}
	return n
}

func (r *RunResult) Skipped() int {
	n := 0
	for _, t := range r.Tenants {
		n += t.Skipped()
	}
	return n
}

// Ingester merges tenant source files into the shared store.
type Ingester struct {
	db       *sql.DB
	d        dialect.Dialect
	opts     Options
	log      zerolog.Logger
	progress Progress
}

func NewIngester(db *sql.DB, d dialect.Dialect, opts Options, log zerolog.Logger, progress Progress) *Ingester {
	if opts.FileName == "" {
		opts.FileName = "el_pwz.dbf"
	}
	if len(opts.KeyFields) == 0 {
		opts.KeyFields = DefaultKeyFields
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 1000
	}
	opts.DBF.LowerNames = true
	if progress == nil {
		progress = NopProgress{}
	}
	return &Ingester{db: db, d: d, opts: opts, log: log, progress: progress}
}

// Run processes tenants in order inside a single transaction that is
// committed once at the end. A tenant without a source file is skipped;
// any other error rolls everything back.
func (in *Ingester) Run(ctx context.Context, tenants []Tenant) (*RunResult, error) {
	start := time.Now()
	res := &RunResult{}

	tx, err := in.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	if err := in.d.BeforeIngest(tx); err != nil {
		return nil, fmt.Errorf("failed to prepare session: %w", err)
	}

	for _, t := range tenants {
		tr, err := in.ingestTenant(ctx, tx, t)
		if errors.Is(err, ErrSourceMissing) {
			in.log.Warn().Str("tenant", t.ID).Str("path", tr.Path).Msg("source file not found, skipping tenant")
			in.progress.TenantMissing(t.ID, tr.Path)
			res.Tenants = append(res.Tenants, tr)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("tenant %s: %w", t.ID, err)
		}
		in.progress.TenantDone(tr)
		res.Tenants = append(res.Tenants, tr)
	}

	if err := in.d.AfterIngest(tx); err != nil {
		return nil, fmt.Errorf("failed to finish session: %w", err)
	}

	if in.opts.DryRun {
		err = tx.Rollback()
		tx = nil
		if err != nil {
			return nil, fmt.Errorf("failed to roll back dry run: %w", err)
		}
		in.log.Info().Int("inserted", res.Inserted()).Msg("dry run, changes rolled back")
	} else {
		err = tx.Commit()
		tx = nil
		if err != nil {
			return nil, fmt.Errorf("failed to commit: %w", err)
		}
		res.Committed = true
	}
	res.Duration = time.Since(start)
	return res, nil
}

// sourcePath finds the source file of a tenant, trying the upper-case
// spelling DOS programs write.
func (in *Ingester) sourcePath(t Tenant) (string, bool) {
	path := filepath.Join(t.Path, in.opts.FileName)
	for _, p := range []string{path, filepath.Join(t.Path, strings.ToUpper(in.opts.FileName))} {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return path, false
}

func (in *Ingester) ingestTenant(ctx context.Context, tx *sql.Tx, t Tenant) (TenantResult, error) {
	start := time.Now()
	path, ok := in.sourcePath(t)
	res := TenantResult{Tenant: t.ID, Path: path}
	if !ok {
		res.Missing = true
		return res, fmt.Errorf("%s: %w", path, ErrSourceMissing)
	}
	log := in.log.With().Str("tenant", t.ID).Str("path", path).Logger()

	// --- Step 1: Parse the whole source before touching the store ---
	src, err := dbf.Open(path, in.opts.DBF)
	if err != nil {
		return res, err
	}
	res.Table = src.Name
	log.Info().Str("table", src.Name).Str("encoding", src.Encoding).Int("records", src.Len()).Msg("processing tenant")

	// --- Step 2: Destination table ---
	tbl, err := schema.FromDBF(src)
	if err != nil {
		return res, err
	}
	synced, err := schema.Sync(ctx, tx, in.d, tbl, log)
	if err != nil {
		return res, err
	}

	// --- Step 3: Existing keys of this tenant ---
	key, err := NewNaturalKey(tbl, in.opts.KeyFields)
	if err != nil {
		return res, err
	}
	index, err := LoadKeyIndex(ctx, tx, in.d, synced, key, t.ID)
	if err != nil {
		return res, err
	}
	res.Existing = index.Len()

	// --- Step 4: Insert novel records in source order ---
	stmt, err := tx.PrepareContext(ctx, in.d.InsertQuery(tbl.Name, tbl.InsertColumns()))
	if err != nil {
		return res, fmt.Errorf("failed to prepare insert into %s: %w", tbl.Name, err)
	}
	defer stmt.Close()

	foreign := tbl.ForeignColumns()
	args := make([]any, len(foreign)+1)
	total := src.Len()
	in.progress.TenantStarted(t.ID, total)

	for i, rec := range src.Records {
		fp := key.Of(rec)
		inserted := false
		if !index.Has(fp) {
			for j, c := range foreign {
				args[j] = bindValue(c, rec[j])
			}
			args[len(foreign)] = t.ID
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return res, fmt.Errorf("failed to insert record %d into %s: %w", i+1, tbl.Name, err)
			}
			index.Add(fp)
			res.Inserted++
			inserted = true
		}
		res.Seen++
		in.progress.RecordProcessed(t.ID, inserted)

		if res.Seen%in.opts.ProgressEvery == 0 || res.Seen == total {
			log.Info().Int("processed", res.Seen).Int("total", total).Int("inserted", res.Inserted).Msg("progress")
		}
	}

	res.Duration = time.Since(start)
	log.Info().
		Int("records", res.Seen).
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped()).
		Dur("elapsed", res.Duration).
		Msg("tenant completed")
	return res, nil
}
