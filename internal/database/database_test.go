package database

import (
	"path/filepath"
	"strings"
	"testing"

	"promptvault-backend/config"
	"promptvault-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "test.db")}

	db, err := Connect(cfg)
	require.NoError(t, err)
	assert.Same(t, db, DB)

	require.NoError(t, Migrate(db))
	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestConnectUnknownDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		require.NoError(t, ConnectRedis(&config.Config{}))
		assert.Nil(t, RedisClient)
	})

	t.Run("miniredis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		host, port, _ := strings.Cut(mr.Addr(), ":")
		require.NoError(t, ConnectRedis(&config.Config{RedisAddr: host, RedisPort: port}))
		require.NotNil(t, RedisClient)
		_ = RedisClient.Close()
		RedisClient = nil
	})
}
