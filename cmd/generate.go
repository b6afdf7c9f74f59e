package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dbf-pump/internal/engine"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	genRecords  int
	genDupRatio float64
	genSeed     int64
	genEncoding string
	genTenants  []string
	genFrom     string
	genTo       string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write synthetic el_pwz.dbf files into the tenant directories",
	RunE: func(cmd *cobra.Command, args []string) error {
		tenants, err := GetTenants(genTenants)
		if err != nil {
			return err
		}
		var from, to time.Time
		if genFrom != "" {
			if from, err = time.Parse(reportDateLayout, genFrom); err != nil {
				return fmt.Errorf("invalid --from %q: %w", genFrom, err)
			}
		}
		if genTo != "" {
			if to, err = time.Parse(reportDateLayout, genTo); err != nil {
				return fmt.Errorf("invalid --to %q: %w", genTo, err)
			}
		}
		seed := genSeed
		if !cmd.Flags().Changed("seed") {
			seed = time.Now().UnixNano()
		}

		fileName := viper.GetString("source.file")
		for i, t := range tenants {
			if err := os.MkdirAll(t.Path, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", t.Path, err)
			}
			records := engine.GenerateVisits(engine.GeneratorOptions{
				Records:        genRecords,
				DuplicateRatio: genDupRatio,
				Seed:           seed + int64(i),
				From:           from,
				To:             to,
			})
			path := filepath.Join(t.Path, fileName)
			if err := engine.WriteVisits(path, records, genEncoding); err != nil {
				return err
			}
			logger.Info().Str("tenant", t.ID).Str("path", path).Int("records", len(records)).Msg("generated source file")
		}
		fmt.Printf("Generated %d records for %d tenants (seed %d)\n", genRecords, len(tenants), seed)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(&genRecords, "records", "n", 1000, "records per tenant")
	generateCmd.Flags().Float64Var(&genDupRatio, "duplicates", 0.1, "share of records repeating an earlier visit")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "random seed (default: current time)")
	generateCmd.Flags().StringVarP(&genEncoding, "encoding", "e", "cp1252", "character encoding to write")
	generateCmd.Flags().StringSliceVar(&genTenants, "tenants", nil, "only generate for these tenant ids")
	generateCmd.Flags().StringVar(&genFrom, "from", "", "first visit day (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&genTo, "to", "", "last visit day (YYYY-MM-DD)")
}
