package setting

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
)

type document struct {
	Scopes map[string]string `json:"scopes"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, db.AutoMigrate(&models.Setting{}), "failed to migrate test database")

	return db
}

func TestInvalidArguments(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name string
		db   *gorm.DB
		key  string
		want error
	}{
		{name: "nil database", key: "x", want: ErrDBNil},
		{name: "empty name", db: db, want: ErrSettingNameEmpty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var d document

			require.ErrorIs(t, Load(tc.db, tc.key, &d), tc.want)
			require.ErrorIs(t, Store(tc.db, tc.key, d), tc.want)
			require.ErrorIs(t, Delete(tc.db, tc.key), tc.want)

			_, err := Exists(tc.db, tc.key)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestStoreAndLoad(t *testing.T) {
	db := setupTestDB(t)

	var d document
	require.ErrorIs(t, Load(db, "scopes", &d), ErrSettingNotFound)

	exists, err := Exists(db, "scopes")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, Store(db, "scopes", document{Scopes: map[string]string{"a": "雄安"}}))
	require.NoError(t, Store(db, "scopes", document{Scopes: map[string]string{"b": "保定"}}))

	var count int64
	require.NoError(t, db.Model(&models.Setting{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, Load(db, "scopes", &d))
	assert.Equal(t, map[string]string{"b": "保定"}, d.Scopes)

	exists, err = Exists(db, "scopes")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoadCorrupt(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Setting{Name: "broken", Value: []byte(`"text"`)}).Error)

	var d document
	assert.Error(t, Load(db, "broken", &d))
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)

	require.ErrorIs(t, Delete(db, "scopes"), ErrSettingNotFound)
	require.NoError(t, Store(db, "scopes", document{}))
	require.NoError(t, Delete(db, "scopes"))

	exists, err := Exists(db, "scopes")
	require.NoError(t, err)
	assert.False(t, exists)
}
