package database

import (
	"io/fs"
	"strings"
	"testing"

	"cohort-checkin/config"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.Database{Host: "db", Port: "3306", Username: "root", Password: "p@ss", DBName: "checkin"})
	parsed, err := mysqldriver.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db:3306", parsed.Addr)
	assert.Equal(t, "p@ss", parsed.Passwd)
	assert.True(t, parsed.ParseTime)
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.Database{Host: "db", Port: "5432", Username: "postgres", DBName: "checkin"})
	assert.Contains(t, dsn, "host=db")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Equal(t, "postgres", Dialector(config.Database{Driver: "postgres"}).Name())
	assert.Equal(t, "mysql", Dialector(config.Database{Driver: "mysql", Port: "3306"}).Name())
}

func TestMigrationsEmbedded(t *testing.T) {
	up, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	sql := string(up)
	for _, table := range []string{"users", "checkin_schedules", "checkin_records", "assignments", "submissions"} {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.True(t, strings.Contains(sql, "WHERE is_active"))

	_, err = fs.ReadFile(migrationsFS, "migrations/000001_init.down.sql")
	require.NoError(t, err)
}
