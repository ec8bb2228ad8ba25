package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Host:     "localhost",
		Port:     5432,
		Database: "stops",
		User:     "postgres",
	}

	t.Run("complete config passes", func(t *testing.T) {
		cfg := valid
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing host", func(t *testing.T) {
		cfg := valid
		cfg.Host = ""
		err := cfg.Validate()
		assert.ErrorContains(t, err, "DB_HOST")
	})

	t.Run("missing database and user reported together", func(t *testing.T) {
		cfg := valid
		cfg.Database = ""
		cfg.User = ""
		err := cfg.Validate()
		assert.ErrorContains(t, err, "DB_NAME")
		assert.ErrorContains(t, err, "DB_USER")
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := valid
		cfg.Port = 0
		assert.ErrorContains(t, cfg.Validate(), "port")
	})
}
