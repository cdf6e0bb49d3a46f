package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLConnection_SQLiteCreatesDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "enrolled.db")

	db, err := NewSQLConnection("sqlite", dsn, SQLOpts{})
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.Get(&one, "SELECT 1"))
	assert.Equal(t, 1, one)
}

func TestNewSQLConnection_Errors(t *testing.T) {
	_, err := NewSQLConnection("clickhouse", "x", SQLOpts{})
	assert.ErrorContains(t, err, "unsupported sql driver")

	_, err = NewSQLConnection("mysql", "", SQLOpts{})
	assert.ErrorContains(t, err, "empty mysql DSN")
}
