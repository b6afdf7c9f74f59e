package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"dbf-pump/internal/dbf"
	"dbf-pump/internal/engine"
	"dbf-pump/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cleanDatabase string
	cleanTable    string
	cleanTenants  []string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete ingested rows, for all tenants or only some",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClean(cmd.Context(), cleanDatabase, cleanTable, cleanTenants, cmd.OutOrStdout())
	},
}

func runClean(ctx context.Context, database, table string, only []string, out io.Writer) error {
	configs, err := tenantConfigs()
	if err != nil {
		return err
	}
	tenants, err := resolveTenantIDs(configs, only)
	if err != nil {
		return err
	}

	target, err := resolveStore(database, "out.sqlite")
	if err != nil {
		return err
	}
	db, d, err := store.Open(target.Driver, target.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(out, "🦅 Connected to %s store\n", d.Name())

	if table == "" {
		table = dbf.TableName(viper.GetString("source.file"))
	}

	deleted, err := engine.Clean(ctx, db, d, table, tenants, logger)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(deleted))
	for k := range deleted {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "Mandant %-3s %d rows deleted\n", k, deleted[k])
	}
	fmt.Fprintln(out, "Table Cleaned Successfully!")
	return nil
}

func init() {
	RootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVar(&cleanDatabase, "database", "", "sqlite file to clean (default: active database, else out.sqlite)")
	cleanCmd.Flags().StringVar(&cleanTable, "table", "", "table to clean (default: from source.file)")
	cleanCmd.Flags().StringSliceVar(&cleanTenants, "tenants", nil, "only delete rows of these tenant ids")
}
