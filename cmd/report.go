package cmd

import (
	"errors"
	"fmt"
	"time"

	"dbf-pump/internal/report"
	"dbf-pump/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const reportDateLayout = "2006-01-02"

var (
	reportFile     string
	reportDatabase string
	reportColumns  []string
	reportFrom     string
	reportTo       string
	reportDate     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the daily Excel report, one sheet per tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, path := reportFrom, reportTo, reportFile
		if reportDate != "" {
			from, to = reportDate, reportDate
			if !cmd.Flags().Changed("output-file") {
				path = fmt.Sprintf("Tagesbericht_%s.xlsx", reportDate)
			}
		}
		for _, v := range []string{from, to} {
			if v == "" {
				continue
			}
			if _, err := time.Parse(reportDateLayout, v); err != nil {
				return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", v)
			}
		}
		if from != "" && to != "" && from > to {
			return fmt.Errorf("--date-from %s is after --date-to %s", from, to)
		}

		tenants, err := reportTenants()
		if err != nil {
			return err
		}

		target, err := resolveStore(reportDatabase, "out.sqlite")
		if err != nil {
			return err
		}
		db, d, err := store.Open(target.Driver, target.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		columns := reportColumns
		if len(columns) == 0 {
			columns = viper.GetStringSlice("report.columns")
		}
		opts := report.Options{
			Table:       viper.GetString("report.table"),
			Columns:     columns,
			DateColumn:  viper.GetString("report.date_column"),
			From:        from,
			To:          to,
			DateColumns: viper.GetStringSlice("report.date_columns"),
			Labels:      viper.GetStringMapString("report.labels"),
		}

		err = report.WriteFile(cmd.Context(), db, d, tenants, opts, path, logger)
		if errors.Is(err, report.ErrNoData) {
			fmt.Println("No data found for the selected tenants and dates, no report written.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
		return nil
	},
}

// reportTenants resolves report.tenants against the tenant list for sheet names.
func reportTenants() ([]report.Tenant, error) {
	configs, err := tenantConfigs()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(configs))
	for _, c := range configs {
		names[c.ID] = c.Name
	}

	ids := viper.GetStringSlice("report.tenants")
	if len(ids) == 0 {
		for _, c := range configs {
			ids = append(ids, c.ID)
		}
	}
	tenants := make([]report.Tenant, 0, len(ids))
	for _, id := range ids {
		tenants = append(tenants, report.Tenant{ID: id, Name: names[id]})
	}
	if len(tenants) == 0 {
		return nil, fmt.Errorf("no report tenants configured")
	}
	return tenants, nil
}

func init() {
	RootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportFile, "output-file", "o", "Tagesbericht.xlsx", "Excel file to write")
	reportCmd.Flags().StringVar(&reportDatabase, "database", "", "sqlite file to read (default: active database, else out.sqlite)")
	reportCmd.Flags().StringSliceVarP(&reportColumns, "columns", "c", nil, "columns to include (default: report.columns)")
	reportCmd.Flags().StringVar(&reportFrom, "date-from", "", "first day to include (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "date-to", "", "last day to include (YYYY-MM-DD)")
	reportCmd.Flags().StringVarP(&reportDate, "date", "d", "", "single day report, names the file Tagesbericht_<date>.xlsx")
}
