package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"dbf-pump/internal/dbf"
	"dbf-pump/internal/engine"
	"dbf-pump/internal/metrics"
	"dbf-pump/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const decodeGuidance = "Please use --encoding or --char-decode-errors."

var (
	outputFile   string
	tenantFilter []string
	dryRun       bool
	showProgress bool
	metricsFile  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Merge every tenant's DBF file into the shared store",
	Long: `Reads <tenant path>/el_pwz.dbf for each configured tenant and inserts the
records whose natural key (wz__pat, wz__dat, wz_time) is not yet stored for
that tenant. Everything runs in one transaction.

Without --output-file and without an active database the result is kept in
memory and printed to stdout as an SQL dump.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), ingestParams{
			OutputFile:  outputFile,
			Tenants:     tenantFilter,
			DryRun:      dryRun,
			Progress:    showProgress,
			MetricsFile: metricsFile,
		}, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

type ingestParams struct {
	OutputFile  string
	Tenants     []string
	DryRun      bool
	Progress    bool
	MetricsFile string
}

// runIngest runs one ingest. stdout receives the summary, or the SQL dump
// when the store is in memory; the summary then goes to stderr.
func runIngest(ctx context.Context, p ingestParams, stdout, stderr io.Writer) error {
	tenants, err := GetTenants(p.Tenants)
	if err != nil {
		return err
	}
	mode, err := dbf.ParseErrorMode(viper.GetString("source.char_decode_errors"))
	if err != nil {
		return err
	}

	target, err := resolveStore(p.OutputFile, "")
	if err != nil {
		return err
	}
	db, d, err := store.Open(target.Driver, target.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info().Str("driver", d.Name()).Bool("dump", target.Dump).Int("tenants", len(tenants)).Msg("store ready")

	sinks := engine.MultiProgress{}
	var rec *metrics.Recorder
	if p.MetricsFile != "" {
		rec = metrics.NewRecorder()
		sinks = append(sinks, rec)
	}
	var bars *barProgress
	if p.Progress && !target.Dump {
		bars = newBarProgress()
		sinks = append(sinks, bars)
	}

	in := engine.NewIngester(db, d, engine.Options{
		FileName:  viper.GetString("source.file"),
		KeyFields: viper.GetStringSlice("source.key_fields"),
		DBF: dbf.Options{
			Encoding:          viper.GetString("source.encoding"),
			DecodeErrors:      mode,
			IgnoreMissingMemo: viper.GetBool("source.ignore_missing_memo"),
		},
		ProgressEvery: viper.GetInt("ingest.progress_every"),
		DryRun:        p.DryRun,
	}, logger, sinks)

	res, err := in.Run(ctx, tenants)
	if bars != nil {
		bars.Stop()
	}
	if err != nil {
		if dbf.IsDecodeError(err) {
			return fmt.Errorf("%w\n%s", err, decodeGuidance)
		}
		return err
	}

	if rec != nil {
		rec.ObserveRun(res, time.Now())
		if err := rec.WriteTextfile(p.MetricsFile); err != nil {
			logger.Warn().Err(err).Str("path", p.MetricsFile).Msg("failed to write metrics")
		}
	}

	out := stdout
	if target.Dump {
		out = stderr
	}
	printSummary(out, res)

	if target.Dump && res.Committed {
		return store.Dump(ctx, db, stdout)
	}
	return nil
}

func printSummary(w io.Writer, res *engine.RunResult) {
	fmt.Fprintln(w, "\n--- INGEST SUMMARY ---")
	for _, t := range res.Tenants {
		if t.Missing {
			fmt.Fprintf(w, "Mandant %-3s missing (%s)\n", t.Tenant, t.Path)
			continue
		}
		fmt.Fprintf(w, "Mandant %-3s %6d read, %6d inserted, %6d skipped (%s)\n",
			t.Tenant, t.Seen, t.Inserted, t.Skipped(), t.Duration.Round(time.Millisecond))
	}
	status := "committed"
	if !res.Committed {
		status = "rolled back (dry run)"
	}
	fmt.Fprintf(w, "Total: %d inserted, %d skipped, %s in %s\n",
		res.Inserted(), res.Skipped(), status, res.Duration.Round(time.Millisecond))
}

func init() {
	RootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "sqlite file to write (default: active database, else dump to stdout)")
	ingestCmd.Flags().StringP("encoding", "e", "", "character encoding of the DBF files (default: from the file header)")
	ingestCmd.Flags().String("char-decode-errors", "strict", "handling of undecodable bytes (strict, replace, ignore)")
	ingestCmd.Flags().StringSliceVar(&tenantFilter, "tenants", nil, "only ingest these tenant ids")
	ingestCmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the ingest and roll it back")
	ingestCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress bars")
	ingestCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	viper.BindPFlag("source.encoding", ingestCmd.Flags().Lookup("encoding"))
	viper.BindPFlag("source.char_decode_errors", ingestCmd.Flags().Lookup("char-decode-errors"))
}
