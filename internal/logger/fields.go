package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the classifier provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the classifier model identifier.
	FieldModel = "ai_model"
	// FieldUserID is the structured log field key for the normalized user id.
	FieldUserID = "user_id"
	// FieldChannel is the structured log field key for the session channel.
	FieldChannel = "channel"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ClassifierFields returns standard zap fields describing the intent
// classifier provider and model. Empty values are ignored.
func ClassifierFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// TurnFields returns standard zap fields identifying the user and channel of
// a dialogue turn. Empty values are ignored.
func TurnFields(userID, channel string) []zap.Field {
	return StringFields(
		StringField{Key: FieldUserID, Value: userID},
		StringField{Key: FieldChannel, Value: channel},
	)
}

// WithTurnFields attaches the turn fields to the provided logger.
// If the logger is nil, a no-op logger is created to avoid panics.
func WithTurnFields(logger *zap.Logger, userID, channel string) *zap.Logger {
	return WithFields(logger, TurnFields(userID, channel)...)
}
