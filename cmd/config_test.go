package cmd

import (
	"testing"

	"dbf-pump/internal/engine"
	"dbf-pump/internal/report"
	"dbf-pump/internal/store"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults()
	t.Cleanup(viper.Reset)
}

func TestGetActiveDBConfig(t *testing.T) {
	resetConfig(t)

	_, err := GetActiveDBConfig()
	assert.ErrorIs(t, err, ErrNoActiveDB)

	viper.Set("databases", []map[string]any{
		{"name": "local", "driver": "sqlite3", "dsn": "a.sqlite", "active": false},
		{"name": "praxis", "driver": "postgres", "dsn": "postgres://u@h/db", "active": true},
	})
	cfg, err := GetActiveDBConfig()
	require.NoError(t, err)
	assert.Equal(t, "praxis", cfg.Name)
	assert.Equal(t, "postgres", cfg.Driver)

	viper.Set("databases", []map[string]any{
		{"name": "one", "driver": "mysql", "dsn": "x", "active": true},
		{"name": "two", "driver": "oracle", "dsn": "y", "active": true},
	})
	_, err = GetActiveDBConfig()
	assert.ErrorContains(t, err, "multiple active databases")
}

func TestGetTenants_Defaults(t *testing.T) {
	resetConfig(t)

	tenants, err := GetTenants(nil)
	require.NoError(t, err)
	require.Len(t, tenants, 6)
	assert.Equal(t, engine.Tenant{ID: "A", Name: "Allgemeinmedizin", Path: "TestData/MandantA"}, tenants[0])
	assert.Equal(t, engine.Tenant{ID: "C", Name: "", Path: "TestData/MandantC"}, tenants[2])
	assert.Equal(t, "F", tenants[5].ID)
}

func TestGetTenants_FilterKeepsConfiguredOrder(t *testing.T) {
	resetConfig(t)

	tenants, err := GetTenants([]string{"e", " B"})
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "B", tenants[0].ID)
	assert.Equal(t, "E", tenants[1].ID)

	_, err = GetTenants([]string{"Z"})
	assert.Error(t, err)

	_, err = GetTenants([]string{"A", "Z"})
	assert.ErrorContains(t, err, `unknown tenant "Z"`)
}

func TestResolveTenantIDs(t *testing.T) {
	resetConfig(t)
	configs, err := tenantConfigs()
	require.NoError(t, err)

	ids, err := resolveTenantIDs(configs, []string{" a", "e ", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "E"}, ids)

	ids, err = resolveTenantIDs(configs, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = resolveTenantIDs(configs, []string{"x"})
	assert.ErrorContains(t, err, `unknown tenant "x"`)
}

func TestGetTenants_RejectsDuplicates(t *testing.T) {
	resetConfig(t)
	viper.Set("tenants", []map[string]any{
		{"id": "A", "path": "a"},
		{"id": "A", "path": "b"},
	})

	_, err := GetTenants(nil)
	assert.ErrorContains(t, err, "duplicate tenant id")
}

func TestResolveStore(t *testing.T) {
	resetConfig(t)

	target, err := resolveStore("out.sqlite", "")
	require.NoError(t, err)
	assert.Equal(t, storeTarget{Driver: "sqlite3", DSN: "out.sqlite"}, target)

	target, err = resolveStore("", "")
	require.NoError(t, err)
	assert.Equal(t, storeTarget{Driver: "sqlite3", DSN: store.MemoryDSN, Dump: true}, target)

	target, err = resolveStore("", "out.sqlite")
	require.NoError(t, err)
	assert.False(t, target.Dump)
	assert.Equal(t, "out.sqlite", target.DSN)

	viper.Set("databases", []map[string]any{
		{"name": "praxis", "driver": "mysql", "dsn": "u:p@/praxis", "active": true},
	})
	target, err = resolveStore("", "")
	require.NoError(t, err)
	assert.Equal(t, storeTarget{Driver: "mysql", DSN: "u:p@/praxis"}, target)
}

func TestReportTenants(t *testing.T) {
	resetConfig(t)

	tenants, err := reportTenants()
	require.NoError(t, err)
	assert.Equal(t, []report.Tenant{
		{ID: "A", Name: "Allgemeinmedizin"},
		{ID: "B", Name: "Kinderheilkunde"},
		{ID: "D", Name: "HNO"},
		{ID: "E", Name: "Augenheilkunde"},
	}, tenants)
}
