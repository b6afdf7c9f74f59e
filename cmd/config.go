package cmd

import (
	"errors"
	"fmt"
	"strings"

	"dbf-pump/internal/engine"
	"dbf-pump/internal/report"
	"dbf-pump/internal/store"

	"github.com/spf13/viper"
)

// ErrNoActiveDB means no database entry has active: true.
var ErrNoActiveDB = errors.New("no active database found in config (set active: true)")

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Active bool   `mapstructure:"active"`
}

type TenantConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

func setDefaults() {
	tenants := make([]map[string]any, 0, 6)
	names := map[string]string{
		"A": "Allgemeinmedizin",
		"B": "Kinderheilkunde",
		"D": "HNO",
		"E": "Augenheilkunde",
	}
	for _, id := range []string{"A", "B", "C", "D", "E", "F"} {
		tenants = append(tenants, map[string]any{
			"id":   id,
			"name": names[id],
			"path": "TestData/Mandant" + id,
		})
	}
	viper.SetDefault("tenants", tenants)

	viper.SetDefault("source.file", "el_pwz.dbf")
	viper.SetDefault("source.encoding", "")
	viper.SetDefault("source.char_decode_errors", "strict")
	viper.SetDefault("source.key_fields", engine.DefaultKeyFields)
	viper.SetDefault("source.ignore_missing_memo", false)

	viper.SetDefault("ingest.progress_every", 1000)

	viper.SetDefault("report.table", "el_pwz")
	viper.SetDefault("report.tenants", []string{"A", "B", "D", "E"})
	viper.SetDefault("report.columns", report.DefaultColumns)
	viper.SetDefault("report.date_column", "wz__dat")
	viper.SetDefault("report.date_columns", report.DefaultDateColumns)
	viper.SetDefault("report.labels", map[string]string{})
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, ErrNoActiveDB
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

func tenantConfigs() ([]TenantConfig, error) {
	var configs []TenantConfig
	if err := viper.UnmarshalKey("tenants", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse tenants config: %w", err)
	}
	seen := make(map[string]bool)
	for _, c := range configs {
		if c.ID == "" || c.Path == "" {
			return nil, fmt.Errorf("tenant entry needs id and path: %+v", c)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate tenant id %q", c.ID)
		}
		seen[c.ID] = true
	}
	return configs, nil
}

// resolveTenantIDs maps ids typed on the command line to configured tenant
// ids, ignoring case and surrounding space. Unknown ids are an error.
func resolveTenantIDs(configs []TenantConfig, ids []string) ([]string, error) {
	byKey := make(map[string]string, len(configs))
	for _, c := range configs {
		byKey[strings.ToUpper(c.ID)] = c.ID
	}
	resolved := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		known, ok := byKey[strings.ToUpper(id)]
		if !ok {
			return nil, fmt.Errorf("unknown tenant %q", id)
		}
		resolved = append(resolved, known)
	}
	return resolved, nil
}

// GetTenants returns the configured tenants in order, restricted to only
// when it is not empty.
func GetTenants(only []string) ([]engine.Tenant, error) {
	configs, err := tenantConfigs()
	if err != nil {
		return nil, err
	}
	ids, err := resolveTenantIDs(configs, only)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var tenants []engine.Tenant
	for _, c := range configs {
		if len(want) > 0 && !want[c.ID] {
			continue
		}
		tenants = append(tenants, engine.Tenant{ID: c.ID, Name: c.Name, Path: c.Path})
	}
	if len(tenants) == 0 {
		return nil, fmt.Errorf("no tenants selected")
	}
	return tenants, nil
}

// storeTarget is where a command reads or writes.
type storeTarget struct {
	Driver string
	DSN    string
	Dump   bool // in-memory sqlite printed to stdout afterwards
}

// resolveStore picks the destination: an explicit sqlite file, else the
// active database entry, else fallback (an in-memory sqlite when empty).
func resolveStore(sqliteFile, fallback string) (storeTarget, error) {
	if sqliteFile != "" {
		return storeTarget{Driver: "sqlite3", DSN: sqliteFile}, nil
	}
	active, err := GetActiveDBConfig()
	switch {
	case errors.Is(err, ErrNoActiveDB):
		if fallback == "" {
			return storeTarget{Driver: "sqlite3", DSN: store.MemoryDSN, Dump: true}, nil
		}
		return storeTarget{Driver: "sqlite3", DSN: fallback}, nil
	case err != nil:
		return storeTarget{}, err
	}
	return storeTarget{Driver: active.Driver, DSN: active.DSN}, nil
}
