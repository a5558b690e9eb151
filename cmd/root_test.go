package cmd

import (
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStores(t *testing.T) {
	c := &Config{
		Source:    DBConfig{Driver: "sqlite3", DSN: ":memory:"},
		Warehouse: DBConfig{Driver: "sqlite3", DSN: ":memory:"},
	}
	source, sd, warehouse, wd, err := openStores(c)
	require.NoError(t, err)
	defer source.Close()
	defer warehouse.Close()

	assert.Equal(t, "sqlite3", sd.Name())
	assert.Equal(t, "sqlite3", wd.Name())
	assert.NoError(t, source.Ping())
	assert.NoError(t, warehouse.Ping())
}

func TestOpenStoresWarehouseFailure(t *testing.T) {
	c := &Config{
		Source: DBConfig{Driver: "sqlite3", DSN: ":memory:"},
		// mode=rw refuses to create the file, so the ping fails.
		Warehouse: DBConfig{Driver: "sqlite3", DSN: "file:/no/such/dir/warehouse.db?mode=rw"},
	}
	source, _, warehouse, _, err := openStores(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warehouse")

	// Nothing leaks to the caller; the source handle was closed internally.
	assert.Nil(t, source)
	assert.Nil(t, warehouse)
}

func TestOpenStoresSourceFailure(t *testing.T) {
	c := &Config{
		Source:    DBConfig{Driver: "sqlite3", DSN: "file:/no/such/dir/source.db?mode=rw"},
		Warehouse: DBConfig{Driver: "sqlite3", DSN: ":memory:"},
	}
	_, _, _, _, err := openStores(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")
}
