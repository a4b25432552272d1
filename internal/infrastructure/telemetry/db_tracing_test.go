package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type probe struct {
	ID   uint
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&probe{}))
	return db
}

func TestInstrumentDB_Disabled(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, InstrumentDB(db, DBTracingConfig{}, zap.NewNop()))
	assert.Nil(t, db.Callback().Query().Get("telemetry:after_query"))
}

func TestInstrumentDB_LogsSlowQueries(t *testing.T) {
	db := openSQLite(t)
	core, logs := observer.New(zapcore.WarnLevel)

	require.NoError(t, InstrumentDB(db, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Nanosecond,
	}, zap.New(core)))

	require.NoError(t, db.Create(&probe{Name: "a"}).Error)
	var out []probe
	require.NoError(t, db.Find(&out).Error)

	assert.GreaterOrEqual(t, logs.FilterMessage("Slow query").Len(), 2)
}

func TestSlowQueryWatcher_FastQueryIsQuiet(t *testing.T) {
	db := openSQLite(t)
	core, logs := observer.New(zapcore.WarnLevel)
	require.NoError(t, InstrumentDB(db, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Hour,
	}, zap.New(core)))

	require.NoError(t, db.Create(&probe{Name: "b"}).Error)

	assert.Equal(t, 0, logs.Len())
}
