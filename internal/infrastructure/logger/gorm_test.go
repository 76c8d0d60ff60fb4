package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observedGormLogger(t *testing.T, zapLevel zapcore.Level, gormLevel gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapLevel)
	return NewGormLogger(zap.New(core), gormLevel, opts...), recorded
}

func priceHistoryQuery() (string, int64) {
	return "SELECT * FROM price_changes WHERE sku = ?", 3
}

func TestNewGormLoggerDefaults(t *testing.T) {
	gl, _ := observedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)

	require.NotNil(t, gl)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
	assert.True(t, gl.ignoreRecordNotFoundError)
}

func TestNewGormLoggerOptions(t *testing.T) {
	gl, _ := observedGormLogger(t, zapcore.InfoLevel, gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
}

func TestGormLoggerLogModeClones(t *testing.T) {
	gl, _ := observedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)

	clone, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, clone.logLevel)
	assert.Equal(t, gormlogger.Info, gl.logLevel, "LogMode must not mutate the receiver")
}

func TestGormLoggerLevelMethods(t *testing.T) {
	gl, recorded := observedGormLogger(t, zapcore.DebugLevel, gormlogger.Info)

	gl.Info(context.Background(), "migrated %d tables", 4)
	gl.Warn(context.Background(), "connection pool at %d%%", 90)
	gl.Error(context.Background(), "dial failed")

	logs := recorded.All()
	require.Len(t, logs, 3)
	assert.Contains(t, logs[0].Message, "migrated 4 tables")
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs[2].Level)
}

func TestGormLoggerSilentSuppressesAll(t *testing.T) {
	gl, recorded := observedGormLogger(t, zapcore.DebugLevel, gormlogger.Silent)

	gl.Info(context.Background(), "never seen")
	gl.Trace(context.Background(), time.Now(), priceHistoryQuery, nil)

	assert.Empty(t, recorded.All())
}

func TestGormLoggerTraceError(t *testing.T) {
	gl, recorded := observedGormLogger(t, zapcore.ErrorLevel, gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), priceHistoryQuery, errors.New("relation does not exist"))

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SQL Error")
}

func TestGormLoggerTraceIgnoresRecordNotFound(t *testing.T) {
	gl, recorded := observedGormLogger(t, zapcore.ErrorLevel, gormlogger.Error,
		WithIgnoreRecordNotFoundError(true))

	gl.Trace(context.Background(), time.Now(), priceHistoryQuery, gormlogger.ErrRecordNotFound)

	assert.Empty(t, recorded.All())
}

func TestGormLoggerTraceSlowQuery(t *testing.T) {
	gl, recorded := observedGormLogger(t, zapcore.WarnLevel, gormlogger.Warn,
		WithSlowThreshold(time.Nanosecond))

	gl.Trace(context.Background(), time.Now().Add(-time.Second), priceHistoryQuery, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SLOW SQL")
}

func TestGormLoggerTraceNormalQuery(t *testing.T) {
	gl, recorded := observedGormLogger(t, zapcore.DebugLevel, gormlogger.Info)

	gl.Trace(context.Background(), time.Now(), priceHistoryQuery, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SQL Query")
	assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
}

func TestGormLoggerTraceCarriesRequestID(t *testing.T) {
	gl, recorded := observedGormLogger(t, zapcore.DebugLevel, gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	gl.Trace(ctx, time.Now(), priceHistoryQuery, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)

	var requestID string
	for _, field := range logs[0].Context {
		if field.Key == "request_id" {
			requestID = field.String
		}
	}
	assert.Equal(t, "req-42", requestID)
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	gl, _ := observedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)
	var _ gormlogger.Interface = gl
}
