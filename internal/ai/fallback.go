package ai

import (
	"context"

	"go.uber.org/zap"
)

// FallbackClassifier asks the primary classifier first and falls back when
// the primary errors or returns an intent outside the vocabulary. A routing
// decision is always produced; a dead model backend degrades the assistant
// to keyword matching instead of taking it down.
type FallbackClassifier struct {
	primary  Classifier
	fallback Classifier
	logger   *zap.Logger
}

func NewFallbackClassifier(primary, fallback Classifier, logger *zap.Logger) *FallbackClassifier {
	return &FallbackClassifier{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FallbackClassifier) Classify(ctx context.Context, message string) (*Classification, error) {
	if f.primary != nil {
		result, err := f.primary.Classify(ctx, message)
		if err == nil && result != nil && result.Intent.Valid() {
			return result, nil
		}
		if err != nil {
			f.logger.Warn("primary classifier failed, falling back", zap.Error(err))
		} else {
			f.logger.Warn("primary classifier returned out-of-vocabulary intent, falling back")
		}
	}

	return f.fallback.Classify(ctx, message)
}
