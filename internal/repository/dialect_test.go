package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	t.Parallel()

	sqlite, err := dialectFor(DriverSQLite)
	require.NoError(t, err)
	assert.True(t, sqlite.returning)
	assert.False(t, sqlite.dollarParams)

	pg, err := dialectFor(DriverPostgres)
	require.NoError(t, err)
	assert.True(t, pg.returning)
	assert.True(t, pg.dollarParams)

	mysql, err := dialectFor(DriverMySQL)
	require.NoError(t, err)
	assert.False(t, mysql.returning)

	_, err = dialectFor("oracle")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	t.Parallel()

	query := `UPDATE users SET email = ?, phone = ? WHERE id = ?`

	pg, _ := dialectFor(DriverPostgres)
	assert.Equal(t, `UPDATE users SET email = $1, phone = $2 WHERE id = $3`, pg.rebind(query))

	sqlite, _ := dialectFor(DriverSQLite)
	assert.Equal(t, query, sqlite.rebind(query))
}
