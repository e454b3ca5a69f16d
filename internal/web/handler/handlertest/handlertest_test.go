package handlertest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewDiscardsSQLLog(t *testing.T) {
	env := New(t)

	assert.Equal(t, gormlogger.Discard, env.DB.Config.Logger)
}
