package logger

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/pipelinecrm/crm-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field keys shared by the HTTP layer and the services
const (
	ServiceName    = "crm-api"
	FieldRequestID = "request_id"
	FieldActorID   = "actor_id"
)

// NewLogger creates a new structured logger. Every entry carries the app,
// environment and service name.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
		"service":     ServiceName,
	}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// ParseLevel falls back to info for an empty or unknown level
func ParseLevel(level string) zapcore.Level {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

// RequestFields describes an incoming request
func RequestFields(r *http.Request, requestID string) []zap.Field {
	return []zap.Field{
		zap.String(FieldRequestID, requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote_addr", r.RemoteAddr),
	}
}

// Actor tags an entry with the acting user. uuid.Nil is logged as an empty
// string so anonymous requests keep the same shape.
func Actor(actorID uuid.UUID) zap.Field {
	if actorID == uuid.Nil {
		return zap.String(FieldActorID, "")
	}
	return zap.String(FieldActorID, actorID.String())
}
