package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSNWithPassword(t *testing.T) {
	assert.Equal(t,
		"gate:secret@tcp(db.local:3306)/campus_gate?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn("gate", "secret", "db.local", "3306", "campus_gate"))
}

func TestDSNWithoutPassword(t *testing.T) {
	assert.Equal(t,
		"gate@tcp(127.0.0.1:3306)/campus_gate?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn("gate", "", "127.0.0.1", "3306", "campus_gate"))
}
