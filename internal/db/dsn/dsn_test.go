package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
)

func TestCreate(t *testing.T) {
	cfg := &config.Config{DB: config.DB{
		User:     "zy",
		Password: "pw",
		Host:     "127.0.0.1",
		Port:     3306,
		Name:     "zhongyue",
		Extras:   "charset=utf8mb4&parseTime=True&loc=Local",
	}}

	assert.Equal(t, "zy:pw@tcp(127.0.0.1:3306)/zhongyue?charset=utf8mb4&parseTime=True&loc=Local", Create(cfg))
}

func TestPostgres(t *testing.T) {
	cfg := &config.Config{DB: config.DB{
		User:     "zy",
		Password: "p@ss",
		Host:     "db",
		Port:     5432,
		Name:     "zhongyue",
		Extras:   "sslmode=disable",
	}}

	assert.Equal(t, "postgres://zy:p%40ss@db:5432/zhongyue?sslmode=disable", Postgres(cfg))
}
