package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/kupipodariday-backend/internal/domain/user"
	"github.com/your-org/kupipodariday-backend/internal/domain/wish"
	applog "github.com/your-org/kupipodariday-backend/internal/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrationAndSeedAreRepeatable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migration?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	m := NewMigration(db, applog.Discard())
	for i := 0; i < 2; i++ {
		require.NoError(t, m.RunAutoMigrations())
		require.NoError(t, m.CreateIndexes())
		require.NoError(t, m.SeedInitialData())
	}
	m.GetTableInfo()

	var users, wishes, entries int64
	db.Model(&user.User{}).Count(&users)
	db.Model(&wish.Wish{}).Count(&wishes)
	db.Model(&wish.CollectionEntry{}).Count(&entries)
	assert.Equal(t, int64(2), users)
	assert.Equal(t, int64(2), wishes)
	assert.Equal(t, int64(2), entries)
}
