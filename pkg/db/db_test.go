package db

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/deck-doctor/pkg/config"
)

func TestConnString(t *testing.T) {
	t.Run("設定値がlibpq形式に展開される", func(t *testing.T) {
		got := connString(config.DatabaseConfig{
			Host:     "db.example.com",
			Port:     5433,
			User:     "deckdoctor",
			Password: "secret",
			DBName:   "deckdoctor_prod",
			SSLMode:  "require",
		})
		assert.Equal(t, "host=db.example.com port=5433 user=deckdoctor password=secret dbname=deckdoctor_prod sslmode=require", got)
	})

	t.Run("接続文字列はpgxpoolのパーサで解釈できる", func(t *testing.T) {
		got := connString(config.DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "deckdoctor",
			DBName:  "deckdoctor",
			SSLMode: "disable",
		})
		poolCfg, err := pgxpool.ParseConfig(got)
		require.NoError(t, err)
		assert.Equal(t, "localhost", poolCfg.ConnConfig.Host)
		assert.Equal(t, uint16(5432), poolCfg.ConnConfig.Port)
		assert.Equal(t, "deckdoctor", poolCfg.ConnConfig.Database)
	})
}
