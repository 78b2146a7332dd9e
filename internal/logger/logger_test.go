package logger_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/config"
	"github.com/pipelinecrm/crm-api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	log, err := logger.NewLogger(
		&config.LoggingConfig{Level: "warn", Format: "json"},
		&config.AppConfig{Name: "crm-api", Environment: "production"},
	)
	require.NoError(t, err)
	defer func() { _ = log.Sync() }()

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, logger.ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, logger.ParseLevel("loud"))
}

func TestRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	r := httptest.NewRequest(http.MethodPost, "/api/opportunities", nil)
	actorID := uuid.New()
	log.Info("request", append(logger.RequestFields(r, "req-1"), logger.Actor(actorID))...)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields[logger.FieldRequestID])
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/opportunities", fields["path"])
	assert.Equal(t, actorID.String(), fields[logger.FieldActorID])
}

func TestActor_Anonymous(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	zap.New(core).Info("request", logger.Actor(uuid.Nil))

	assert.Equal(t, "", logs.All()[0].ContextMap()[logger.FieldActorID])
}
